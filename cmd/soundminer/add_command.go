package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"soundminer/internal/ingest"
	"soundminer/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "add [urls...]",
		Short: "Queue URLs for processing",
		Long: "Queue URLs for processing. URLs can be passed directly or extracted from a\n" +
			"text file (chat exports work fine); anything that is not a supported platform\n" +
			"link is ignored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			text := strings.Join(args, "\n")
			if path := strings.TrimSpace(filePath); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read url file: %w", err)
				}
				text = text + "\n" + string(data)
			}

			urls := ingest.ExtractURLs(text)
			if len(urls) == 0 {
				return errors.New("no supported platform URLs found")
			}

			out := cmd.OutOrStdout()
			added := 0
			duplicates := 0
			for _, url := range urls {
				item, err := store.NewURL(cmd.Context(), url)
				if err != nil {
					if errors.Is(err, queue.ErrDuplicateURL) {
						duplicates++
						fmt.Fprintf(out, "skipped (already queued): %s\n", url)
						continue
					}
					return fmt.Errorf("queue %s: %w", url, err)
				}
				added++
				fmt.Fprintf(out, "queued #%d: %s\n", item.ID, url)
			}
			fmt.Fprintf(out, "Added %d URL(s), skipped %d duplicate(s)\n", added, duplicates)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Extract URLs from a text file")
	return cmd
}
