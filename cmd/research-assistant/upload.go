// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/ingest"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a paper's full text into the user's corpus",
	Long: `Upload stores a paper's full text in the user's corpus, splits it
into overlapping chunks, and embeds every chunk into the vector index
so it is retrievable by ask and workflow. Plain-text and markdown
files are read directly; PDFs are converted through the markitdown
container image, which requires docker or podman.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().String("title", "", "paper title (default: file name)")
	uploadCmd.Flags().String("authors", "", "comma-separated author list")
	uploadCmd.Flags().Bool("json", false, "emit the stored paper as JSON")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sc, err := currentScope(cmd)
	if err != nil {
		return err
	}

	var text string
	if strings.EqualFold(filepath.Ext(args[0]), ".pdf") {
		converter, err := ingest.NewPDFConverter()
		if err != nil {
			return err
		}
		text, err = converter.ExtractText(args[0])
		if err != nil {
			return fmt.Errorf("reading upload: %w", err)
		}
	} else {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading upload: %w", err)
		}
		text = string(data)
	}

	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		base := filepath.Base(args[0])
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	authors, _ := cmd.Flags().GetString("authors")

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ingestor := ingest.New(a.store, a.index, nil, a.cfg.Ingest, a.log)

	paper, chunks, err := ingestor.UploadText(ctx, sc, title, authors, text)
	if err != nil {
		return fmt.Errorf("uploading paper: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(paper)
	}

	fmt.Printf("Stored %q as paper %d, embedded %d chunks.\n", paper.Title, paper.ID, chunks)
	return nil
}
