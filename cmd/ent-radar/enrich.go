// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/spf13/cobra"

	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich NAME",
	Short: "Run one-off publication enrichment for a name",
	Long: `Enrich resolves a single person against OpenAlex (falling back to Semantic
Scholar) and prints the publications found, without touching the database.
Useful for debugging source resolution.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		institution, _ := cmd.Flags().GetString("institution")
		limit, _ := cmd.Flags().GetInt("max-results")
		if limit <= 0 {
			limit = cfg.Enrich.MaxResults
		}
		showTrace, _ := cmd.Flags().GetBool("trace")

		enricher := newEnricher(cfg.Enrich)
		person := types.PersonQuery{RawName: args[0], Institution: institution}
		pubs, trace := enricher.FetchPublicationsTraced(cmd.Context(), person, limit)

		if showTrace {
			fmt.Fprintf(os.Stderr, "states: %v\n", trace.States)
			for state, status := range trace.Outcomes {
				fmt.Fprintf(os.Stderr, "outcome %s: %s\n", state, status)
			}
		}

		if len(pubs) == 0 {
			fmt.Fprintln(os.Stderr, "no publications found")
			return nil
		}
		out, err := yaml.Marshal(pubs)
		if err != nil {
			return fmt.Errorf("rendering publications: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	enrichCmd.Flags().String("institution", "", "institution hint for disambiguation")
	enrichCmd.Flags().Int("max-results", 0, "maximum publications to print (default from config)")
	enrichCmd.Flags().Bool("trace", false, "print the source resolution trace to stderr")

	rootCmd.AddCommand(enrichCmd)
}
