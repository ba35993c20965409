// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/ingest"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <query>",
	Short: "Fetch arXiv papers into the user's corpus",
	Long: `Fetch queries the arXiv API for papers matching the given terms,
stores their metadata in the user's corpus, and embeds each new
abstract into the vector index. Re-fetching is idempotent: papers
already present are updated in place and not re-embedded.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("max", 0, "maximum papers to fetch (default from config)")
	fetchCmd.Flags().Bool("json", false, "emit the report as JSON")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sc, err := currentScope(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	maxResults, _ := cmd.Flags().GetInt("max")
	if maxResults <= 0 {
		maxResults = a.cfg.Ingest.MaxResults
	}

	source := ingest.NewArxivSource(a.cfg.Ingest)
	ingestor := ingest.New(a.store, a.index, source, a.cfg.Ingest, a.log)

	report, err := ingestor.FetchAndStore(ctx, sc, args[0], maxResults)
	if err != nil {
		return fmt.Errorf("fetching papers: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(report)
	}

	fmt.Printf("Processed %d papers, embedded %d new abstracts.\n", report.Processed, report.Embedded)
	for _, title := range report.Titles {
		fmt.Printf("  - %s\n", title)
	}
	return nil
}
