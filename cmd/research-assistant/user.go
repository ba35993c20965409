// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/scope"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user scopes",
}

var userNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Mint a fresh user scope id",
	Long: `New prints a fresh random scope id. Pass it as --user (or export
RESEARCH_ASSISTANT_USER) to keep a corpus separate from every other
user's. With --save the id also becomes the default scope for later
invocations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session := scope.NewSession()
		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := os.WriteFile(userStateFile, []byte(session.Scope().String()+"\n"), 0o600); err != nil {
				return fmt.Errorf("persisting user scope: %w", err)
			}
		}
		fmt.Println(session.Scope())
		return nil
	},
}

func init() {
	userNewCmd.Flags().Bool("save", false, "make this the default scope for later invocations")
	userCmd.AddCommand(userNewCmd)
	rootCmd.AddCommand(userCmd)
}
