// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/corpus"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List papers in the user's corpus",
	RunE:  runPapers,
}

func init() {
	papersCmd.Flags().String("match", "", "filter by keyword in title or abstract")
	papersCmd.Flags().Int("limit", 0, "maximum papers to list (0 for all)")
	papersCmd.Flags().Bool("json", false, "emit papers as JSON")
	papersCmd.Flags().Bool("yaml", false, "emit papers as YAML")
	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sc, err := currentScope(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	match, _ := cmd.Flags().GetString("match")
	limit, _ := cmd.Flags().GetInt("limit")

	papers, err := a.store.QueryPapers(ctx, sc, corpus.PaperFilter{Match: match}, limit)
	if err != nil {
		return fmt.Errorf("listing papers: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(papers)
	}
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return printYAML(papers)
	}

	if len(papers) == 0 {
		fmt.Println("No papers in corpus.")
		return nil
	}

	fmt.Printf("%-6s %-14s %-10s %-8s %s\n", "ID", "ARXIV", "PUBLISHED", "SOURCE", "TITLE")
	for _, p := range papers {
		arxivID := p.ArxivID
		if arxivID == "" {
			arxivID = "-"
		}
		published := "-"
		if p.PublishedAt != nil {
			published = p.PublishedAt.Format("2006-01-02")
		}
		fmt.Printf("%-6d %-14s %-10s %-8s %s\n", p.ID, arxivID, published, p.Source, p.Title)
	}
	return nil
}
