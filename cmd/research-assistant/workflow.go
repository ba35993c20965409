// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/agents"
	"github.com/pdiddy/research-assistant/internal/ingest"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow <topic>",
	Short: "Run the full research pipeline for a topic",
	Long: `Workflow runs the four-stage pipeline over the user's corpus:
cluster the papers into research themes, summarize each cluster,
generate hypotheses from the summaries, and draft an experiment plan
for each hypothesis. When the corpus holds fewer papers than the run
needs, matching papers are fetched from arXiv first. All artifacts are
persisted under a fresh run id.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflow,
}

func init() {
	workflowCmd.Flags().Int("papers", 0, "corpus size the run works over (default from config)")
	workflowCmd.Flags().Bool("json", false, "emit the full run result as JSON")
	workflowCmd.Flags().Bool("yaml", false, "emit the full run result as YAML")
	rootCmd.AddCommand(workflowCmd)
}

func runWorkflow(cmd *cobra.Command, args []string) error {
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

	k, _ := cmd.Flags().GetInt("papers")
	if k <= 0 {
		k = a.cfg.Workflow.PaperLimit
	}

	source := ingest.NewArxivSource(a.cfg.Ingest)
	ingestor := ingest.New(a.store, a.index, source, a.cfg.Ingest, a.log)

	workflow := agents.NewWorkflow(
		a.store,
		ingestor,
		agents.NewClusterer(a.store, a.index, a.chat, a.log),
		agents.NewSummarizer(a.store, a.chat, a.log),
		agents.NewHypothesizer(a.chat, a.log),
		agents.NewPlanner(a.chat, a.log),
		a.log,
	)

	result, err := workflow.Run(ctx, sc, args[0], k)
	if err != nil {
		return fmt.Errorf("running workflow: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(result)
	}
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return printYAML(result)
	}

	fmt.Printf("Run %s\n\n", result.RunID)

	fmt.Printf("Clusters (%d):\n", len(result.Clusters))
	for _, c := range result.Clusters {
		fmt.Printf("  - %s (%d papers)\n", c.Label, len(c.PaperIDs))
	}

	fmt.Printf("\nHypotheses (%d):\n", len(result.Hypotheses))
	for _, h := range result.Hypotheses {
		fmt.Printf("  - %s\n", h.Text)
	}

	fmt.Printf("\nPlans (%d):\n", len(result.Plans))
	for _, p := range result.Plans {
		fmt.Printf("  - For: %s\n", p.HypothesisText)
		for _, step := range p.Steps {
			fmt.Printf("      * %s\n", step)
		}
	}

	if len(result.Logs) > 0 {
		fmt.Println("\nRun log:")
		for _, line := range result.Logs {
			fmt.Printf("  %s\n", line)
		}
	}
	return nil
}
