package main

import (
	"fmt"
	"os"
	"path/filepath"

	"koken-report/internal/logger"

	"github.com/spf13/cobra"
)

var (
	fillTemplate string
	fillPerson   string
	fillOut      string
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "{{項目名}} を差し込んだ書類を作成します (.xlsx / .docx)",
	RunE:  runFill,
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringVarP(&fillTemplate, "template", "t", "", "差し込み元のテンプレート (必須)")
	fillCmd.MarkFlagRequired("template")
	fillCmd.Flags().StringVarP(&fillPerson, "person", "p", "", "対象者ID (必須)")
	fillCmd.MarkFlagRequired("person")
	fillCmd.Flags().StringVarP(&fillOut, "out", "o", "", "出力ファイルのパス")
}

func runFill(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(fillTemplate)
	if err != nil {
		return fmt.Errorf("テンプレートを読み込めません: %w", err)
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := svc.FillTemplate(fillPerson, filepath.Base(fillTemplate), data)
	if err != nil {
		return err
	}

	out := fillOut
	if out == "" {
		out = filepath.Join(cfg.Output.Dir, doc.FileName)
	}
	if err := os.WriteFile(out, doc.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	logger.Info("✅ %s", out)
	return nil
}
