package main

import (
	"fmt"
	"os"
	"path/filepath"

	"koken-report/internal/config"
	"koken-report/internal/logger"
	"koken-report/internal/service"
	"koken-report/internal/store"

	"github.com/spf13/cobra"
)

const (
	appName    = "koken-report"
	appVersion = "1.0.0"
	appDesc    = "成年後見 定期報告書の作成ツール"
)

var (
	configPath string
	verbose    bool
	quiet      bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:               appName,
	Short:             appDesc,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "設定ファイルのパス")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "詳細ログを表示します (DEBUG)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "進捗バーを表示しません")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and starts the log file in the output directory
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("設定ファイルを読み込めません: %w", err)
	}

	logPath := filepath.Join(cfg.Output.Dir, "koken_report.log")
	if err := logger.Init(os.Stdout, logPath, verbose); err != nil {
		return fmt.Errorf("ログを初期化できません: %w", err)
	}
	logger.Debug("config: %s, template: %s, store: %s", configPath, cfg.Template.Path, cfg.Store.Path)
	return nil
}

// openService opens the registry and wraps it in a Service. The caller closes the store.
func openService() (*service.Service, *store.Store, error) {
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("データベースを開けません: %w", err)
	}
	return service.New(cfg, st, nil), st, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "バージョンを表示します",
	// No config or log file needed
	PersistentPreRun:  func(cmd *cobra.Command, args []string) {},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n%s\n", appName, appVersion, appDesc)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
