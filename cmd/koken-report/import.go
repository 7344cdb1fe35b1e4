package main

import (
	"fmt"
	"os"
	"strings"

	"koken-report/internal/importer"
	"koken-report/internal/logger"
	"koken-report/internal/store"
	"koken-report/internal/ui"

	"github.com/spf13/cobra"
)

var (
	importPersons    string
	importActivities string
	importAssets     string
	importRelated    string
	importSystem     string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "CSV (UTF-8 / Shift_JIS) を取り込みます",
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importPersons, "persons", "", "対象者CSV")
	importCmd.Flags().StringVar(&importActivities, "activities", "", "活動記録CSV")
	importCmd.Flags().StringVar(&importAssets, "assets", "", "財産CSV")
	importCmd.Flags().StringVar(&importRelated, "related", "", "関係者CSV")
	importCmd.Flags().StringVar(&importSystem, "system", "", "システム利用者CSV")
}

// csvSource is one --flag file and the reader that loads it into the batch
type csvSource struct {
	path string
	read func(f *os.File, batch *store.ImportBatch) error
}

func runImport(cmd *cobra.Command, args []string) error {
	all := []csvSource{
		{importPersons, func(f *os.File, b *store.ImportBatch) (err error) {
			b.Persons, err = importer.ReadPersons(f)
			return err
		}},
		{importActivities, func(f *os.File, b *store.ImportBatch) (err error) {
			b.Activities, err = importer.ReadActivities(f)
			return err
		}},
		{importAssets, func(f *os.File, b *store.ImportBatch) (err error) {
			b.Assets, err = importer.ReadAssets(f)
			return err
		}},
		{importRelated, func(f *os.File, b *store.ImportBatch) (err error) {
			b.RelatedParties, err = importer.ReadRelatedParties(f)
			return err
		}},
		{importSystem, func(f *os.File, b *store.ImportBatch) (err error) {
			b.Guardians, err = importer.ReadGuardians(f)
			return err
		}},
	}

	var sources []csvSource
	var paths []string
	for _, src := range all {
		if src.path != "" {
			sources = append(sources, src)
			paths = append(paths, src.path)
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("--persons, --activities, --assets, --related, --system のいずれかを指定してください")
	}

	pipeline := ui.NewPipeline([]ui.Phase{ui.PhaseLoading, ui.PhaseImporting})
	if quiet {
		pipeline.Disable()
	}

	batch := store.ImportBatch{Source: strings.Join(paths, ",")}
	bar := pipeline.NextPhase(len(sources))
	for _, src := range sources {
		bar.Describe(src.path)
		if err := readCSV(src.path, func(f *os.File) error { return src.read(f, &batch) }); err != nil {
			return err
		}
		bar.Increment()
	}

	pipeline.NextPhase(1)
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("データベースを開けません: %w", err)
	}
	defer st.Close()

	stats, err := st.Import(batch)
	if err != nil {
		return err
	}
	pipeline.Finish()

	runs, err := st.ImportCount()
	if err != nil {
		return err
	}
	logger.Info("✅ 取込 %d 回目 完了 対象者 %d 件 / 活動 %d 件 / 財産 %d 件 / 関係者 %d 件 / システム利用者 %d 件 (run %s)",
		runs, stats.Persons, stats.Activities, stats.Assets, stats.RelatedParties, stats.SystemUsers, stats.RunID)
	return nil
}

func readCSV(path string, read func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("CSVを開けません: %w", err)
	}
	defer f.Close()
	return read(f)
}
