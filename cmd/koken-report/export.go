package main

import (
	"fmt"
	"strings"

	"koken-report/internal/exporter"
	"koken-report/internal/logger"

	"github.com/spf13/cobra"
)

var exportFormats string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "登録内容を台帳 (Excel) と CSV に書き出します",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormats, "format", "f", "excel,csv", "出力形式 (excel,csv)")
}

func runExport(cmd *cobra.Command, args []string) error {
	exporters := exporter.GetExporters(strings.Split(exportFormats, ","))
	if len(exporters) == 0 {
		return fmt.Errorf("対応していない出力形式です: %s", exportFormats)
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	ledger, err := svc.Ledger()
	if err != nil {
		return err
	}

	var failed int
	for _, exp := range exporters {
		files, err := exp.Export(ledger, cfg.Output.Dir)
		if err != nil {
			logger.Error("Export failed: %v", err)
			failed++
			continue
		}
		for _, f := range files {
			logger.Info("✅ %s", f)
		}
	}
	if failed > 0 {
		return fmt.Errorf("one or more exports failed: %d errors", failed)
	}
	return nil
}
