package main

import (
	"fmt"
	"os"
	"path/filepath"

	"koken-report/internal/logger"
	"koken-report/internal/service"

	"github.com/spf13/cobra"
)

var (
	periodicPerson   string
	periodicTemplate string
	periodicOut      string
)

var periodicCmd = &cobra.Command{
	Use:   "periodic",
	Short: "1名分の定期報告書を作成します",
	RunE:  runPeriodic,
}

func init() {
	rootCmd.AddCommand(periodicCmd)

	periodicCmd.Flags().StringVarP(&periodicPerson, "person", "p", "", "対象者ID (必須)")
	periodicCmd.MarkFlagRequired("person")
	periodicCmd.Flags().StringVarP(&periodicTemplate, "template", "t", "", "テンプレートのパス (省略時は設定ファイルの値)")
	periodicCmd.Flags().StringVarP(&periodicOut, "out", "o", "", "出力ファイルのパス (省略時は出力ディレクトリ)")
}

func runPeriodic(cmd *cobra.Command, args []string) error {
	if periodicTemplate != "" {
		cfg.Template.Path = periodicTemplate
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	path, err := writePeriodic(svc, periodicPerson, periodicOut)
	if err != nil {
		return err
	}
	logger.Info("✅ %s", path)
	return nil
}

// writePeriodic generates one report and saves it. out may be empty to use the output directory.
func writePeriodic(svc *service.Service, personID, out string) (string, error) {
	doc, err := svc.PeriodicReport(personID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", personID, err)
	}

	if out == "" {
		out = filepath.Join(cfg.Output.Dir, doc.FileName)
	}
	if err := os.WriteFile(out, doc.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}

	res := doc.Result
	if res.ReportSheet == "" {
		logger.Warn("%s: 報告書シートが見つかりませんでした", personID)
	}
	if res.BankDropped > 0 {
		logger.Warn("%s: 預貯金 %d 件が欄に収まらず省略されました", personID, res.BankDropped)
	}
	logger.Debug("%s: 預貯金 %d 行, period=%v", personID, res.BankRows, res.Period)
	return out, nil
}
