// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/admin"
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete user data from the corpus store and vector index",
	Long: `Wipe removes one user's papers, chunks, run artifacts, and vector
namespace. With --all it removes every user's data across both
backends. Both backends are attempted even when one fails, and the
per-backend outcome is reported.`,
	RunE: runWipe,
}

func init() {
	wipeCmd.Flags().Bool("all", false, "wipe every user's data")
	wipeCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(wipeCmd)
}

func runWipe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	all, _ := cmd.Flags().GetBool("all")
	yes, _ := cmd.Flags().GetBool("yes")

	if !yes {
		target := "the current user's data"
		if all {
			target = "ALL users' data"
		}
		fmt.Printf("This permanently deletes %s. Continue? [y/N]: ", target)
		var reply string
		fmt.Scanln(&reply)
		if reply != "y" && reply != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	a, err := newApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	wiper := admin.New(a.store, a.index, a.log)

	var report admin.Report
	if all {
		report, err = wiper.WipeAll(ctx)
	} else {
		sc, scErr := currentScope(cmd)
		if scErr != nil {
			return scErr
		}
		report, err = wiper.Wipe(ctx, sc)
	}
	if err != nil {
		return fmt.Errorf("wiping data: %w", err)
	}

	if report.CorpusErr != nil {
		fmt.Printf("Corpus store: FAILED (%v)\n", report.CorpusErr)
	} else {
		fmt.Println("Corpus store: wiped")
	}
	if report.VectorErr != nil {
		fmt.Printf("Vector index: FAILED (%v)\n", report.VectorErr)
	} else if !all {
		fmt.Println("Vector index: wiped")
	}
	for _, ns := range report.Namespaces {
		if ns.Err != nil {
			fmt.Printf("Namespace %s: FAILED (%v)\n", ns.Namespace, ns.Err)
		} else {
			fmt.Printf("Namespace %s: wiped\n", ns.Namespace)
		}
	}

	if !report.OK() {
		return fmt.Errorf("wipe incomplete")
	}
	return nil
}
