package main

import (
	"koken-report/internal/server"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTPサーバーを起動します",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "待ち受けアドレス (省略時は設定ファイルの値)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	return server.NewServer(svc, cfg.Server.DevMode).Run(addr)
}
