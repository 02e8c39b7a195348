// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cmdshftateya/ent-research-radar/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the directory read API",
	Long: `Serve starts the HTTP API: /health, /professors, /professors/{id}, and
/professors/{id}/email. It blocks until interrupted and shuts down
gracefully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger()

		st, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := cfg.Server.Addr
		if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
			addr = flagAddr
		}

		srv := &api.Server{Store: st, Log: log, Offline: cfg.Enrich.Offline}
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(serveCmd)
}
