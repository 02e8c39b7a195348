// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cmdshftateya/ent-research-radar/internal/bio"
	"github.com/cmdshftateya/ent-research-radar/internal/httputil"
	"github.com/cmdshftateya/ent-research-radar/internal/ingest"
	"github.com/cmdshftateya/ent-research-radar/internal/roster"
	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Scrape rosters and enrich the whole directory",
	Long: `Refresh scrapes every configured institution roster, enriches each professor
with publications, biography, and research tags, and persists the result.
With --offline the sample dataset is seeded instead.`,
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

		client := httputil.NewClient(cfg.Enrich.HTTPConfig)
		pipeline := &ingest.Pipeline{
			Store:            st,
			Roster:           &roster.Scraper{Client: client, UserAgent: cfg.Enrich.UserAgent, Offline: cfg.Enrich.Offline},
			Bio:              &bio.Fetcher{Client: client, UserAgent: cfg.Enrich.UserAgent, Offline: cfg.Enrich.Offline},
			Enricher:         newEnricher(cfg.Enrich),
			Tax:              taxonomy.Default(),
			Log:              log,
			Workers:          cfg.Ingest.Workers,
			PublicationLimit: cfg.Enrich.MaxResults,
			Offline:          cfg.Enrich.Offline,
		}

		if err := pipeline.Refresh(ctx, cfg.Ingest.Institutions); err != nil {
			return err
		}
		log.Info().Msg("refresh complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
