// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ent-radar CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cmdshftateya/ent-research-radar/internal/enrich"
	"github.com/cmdshftateya/ent-research-radar/internal/httputil"
	"github.com/cmdshftateya/ent-research-radar/internal/secrets"
	"github.com/cmdshftateya/ent-research-radar/internal/store"
	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// defaultInstitutions is the roster set scraped when the configuration does
// not name one.
var defaultInstitutions = []types.InstitutionConfig{
	{Name: "Northwestern University", Website: "https://www.oto-hns.northwestern.edu/faculty/a-z.html"},
	{Name: "University of Chicago", Website: "https://www.uchicagomedicine.org/conditions-services/ear-nose-throat/physicians"},
	{Name: "University of Illinois Chicago", Website: "https://chicago.medicine.uic.edu/otolaryngology/people/faculty/"},
	{Name: "Rush Medical School", Website: "https://www.rush.edu/locations/rush-otolaryngology-head-and-neck-surgery-chicago"},
}

// rootCmd is the base command for the ent-radar CLI.
var rootCmd = &cobra.Command{
	Use:   "ent-radar",
	Short: "Chicago-area ENT faculty research radar",
	Long: `ent-radar maintains a directory of academic ENT faculty across the configured
Chicago institutions: it scrapes rosters, enriches each professor with
publications from OpenAlex (falling back to Semantic Scholar), derives
research topic tags, and serves the directory over a small read API.

Each stage is a subcommand: refresh, seed, serve, and enrich.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ent-radar.yaml or ~/.config/ent-radar/config.yaml)")
	rootCmd.PersistentFlags().Bool("offline", false, "disable all network calls")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ent-radar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ent-radar"))
		}
	}

	viper.SetDefault("enrich.timeout", "15s")
	viper.SetDefault("enrich.user_agent", "ent-radar/0.1 (+https://example.local; contact=ent-radar@example.local)")
	viper.SetDefault("enrich.max_results", 20)
	viper.SetDefault("store.db_path", filepath.Join("data", "ent-radar.db"))
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("ingest.workers", 4)

	viper.SetEnvPrefix("ENT_RADAR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the full configuration from viper, flags, and the
// secrets directory.
func loadConfig() types.RadarConfig {
	offline, _ := rootCmd.PersistentFlags().GetBool("offline")

	cfg := types.RadarConfig{
		Enrich: types.EnrichConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("enrich.timeout"),
				UserAgent: viper.GetString("enrich.user_agent"),
			},
			Offline:               offline || viper.GetBool("enrich.offline") || viper.GetBool("offline"),
			MaxResults:            viper.GetInt("enrich.max_results"),
			OpenAlexMailto:        viper.GetString("enrich.openalex_mailto"),
			SemanticScholarAPIKey: viper.GetString("enrich.semantic_scholar_api_key"),
		},
		Store:  types.StoreConfig{DBPath: viper.GetString("store.db_path")},
		Server: types.ServerConfig{Addr: viper.GetString("server.addr")},
		Ingest: types.IngestConfig{Workers: viper.GetInt("ingest.workers")},
	}

	if err := viper.UnmarshalKey("ingest.institutions", &cfg.Ingest.Institutions); err != nil || len(cfg.Ingest.Institutions) == 0 {
		cfg.Ingest.Institutions = defaultInstitutions
	}

	secrets.ApplyEnrich(loadedSecrets, &cfg.Enrich)
	return cfg
}

// newLogger builds a console-writer zerolog logger for CLI output.
func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

// newEnricher wires the OpenAlex and Semantic Scholar clients from the
// enrichment configuration.
func newEnricher(cfg types.EnrichConfig) *enrich.Enricher {
	client := httputil.NewClient(cfg.HTTPConfig)
	tax := taxonomy.Default()
	return &enrich.Enricher{
		Primary: &enrich.OpenAlexClient{
			Client:    client,
			UserAgent: cfg.UserAgent,
			Mailto:    cfg.OpenAlexMailto,
			Tax:       tax,
		},
		Fallback: &enrich.SemanticClient{
			Client:    client,
			UserAgent: cfg.UserAgent,
			APIKey:    cfg.SemanticScholarAPIKey,
		},
		Tax:     tax,
		Offline: cfg.Offline,
	}
}

// openStore opens the directory database named by the configuration.
func openStore(cfg types.StoreConfig) (*store.Store, error) {
	s, err := store.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening directory store: %w", err)
	}
	return s, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
