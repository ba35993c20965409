// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and vector index sizes for the user",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "emit stats as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	papers, err := a.store.CountPapers(ctx, sc)
	if err != nil {
		return fmt.Errorf("counting papers: %w", err)
	}
	vec, err := a.index.ScopeStats(ctx, sc)
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(map[string]any{
			"papers":    papers,
			"vectors":   vec.Records,
			"namespace": vec.Namespace,
		})
	}

	fmt.Printf("Papers:    %d\n", papers)
	fmt.Printf("Vectors:   %d\n", vec.Records)
	fmt.Printf("Namespace: %s\n", vec.Namespace)
	return nil
}
