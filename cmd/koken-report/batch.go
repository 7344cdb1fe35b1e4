package main

import (
	"fmt"

	"koken-report/internal/logger"
	"koken-report/internal/model"
	"koken-report/internal/ui"

	"github.com/spf13/cobra"
)

var batchMonth int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "登録されている全員分の定期報告書を作成します",
	Long: `登録されている対象者全員の定期報告書を出力ディレクトリに作成します。
--month を指定すると家裁報告月がその月の対象者だけを作成します。
1名の失敗で全体は止まりません。`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVarP(&batchMonth, "month", "m", 0, "家裁報告月で絞り込みます (1-12)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchMonth < 0 || batchMonth > 12 {
		return fmt.Errorf("--month は 1 から 12 で指定してください: %d", batchMonth)
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	persons, err := svc.Persons()
	if err != nil {
		return err
	}
	targets := filterByMonth(persons, batchMonth)
	if len(targets) == 0 {
		logger.Info("対象者がいません")
		return nil
	}

	pipeline := ui.NewPipeline([]ui.Phase{ui.PhaseGenerating})
	if quiet {
		pipeline.Disable()
	}
	bar := pipeline.NextPhase(len(targets))

	var failed int
	for _, p := range targets {
		bar.Describe(p.Name)
		if _, err := writePeriodic(svc, p.ID, ""); err != nil {
			logger.Error("%v", err)
			failed++
		}
		bar.Increment()
	}
	pipeline.Finish()

	pipeline.PrintSummary("作成 %d 件 / 失敗 %d 件 (%s)", len(targets)-failed, failed, cfg.Output.Dir)
	if failed > 0 {
		return fmt.Errorf("%d 件の作成に失敗しました。ログを確認してください: %s", failed, logger.GetLogFilePath())
	}
	return nil
}

// filterByMonth keeps persons whose report month is month; 0 keeps everyone
func filterByMonth(persons []model.PersonRecord, month int) []model.PersonRecord {
	if month == 0 {
		return persons
	}
	var out []model.PersonRecord
	for _, p := range persons {
		if m, ok := model.ParseReportMonth(p.ReportMonth); ok && m == month {
			out = append(out, p)
		}
	}
	return out
}
