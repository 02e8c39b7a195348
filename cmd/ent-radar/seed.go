// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/cmdshftateya/ent-research-radar/internal/ingest"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample dataset",
	Long: `Seed inserts a small sample payload (one professor with publications,
collaborators, and tags) so the API can be exercised without scraping.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger()

		st, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		pipeline := &ingest.Pipeline{Store: st, Log: log}
		if err := pipeline.Seed(cmd.Context()); err != nil {
			return err
		}
		log.Info().Str("db", cfg.Store.DBPath).Msg("sample data seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
