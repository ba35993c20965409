// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/rag"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question over the user's corpus",
	Long: `Ask retrieves the chunks most relevant to the question from the
user's vector index and answers using only that retrieved context,
citing sources as [1], [2], ... in the answer text.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Int("k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().Bool("json", false, "emit the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	k, _ := cmd.Flags().GetInt("k")

	answerer := rag.New(a.index, a.chat, a.cfg.Answer, a.log)

	answer, err := answerer.Ask(ctx, sc, args[0], k)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(answer)
	}

	fmt.Println(answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range answer.Citations {
			if c.Link != "" {
				fmt.Printf("  [%d] %s <%s>\n", c.Index, c.Title, c.Link)
			} else {
				fmt.Printf("  [%d] %s\n", c.Index, c.Title)
			}
		}
	}
	return nil
}
