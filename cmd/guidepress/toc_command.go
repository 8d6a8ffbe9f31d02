package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"guidepress/internal/pipeline"
	"guidepress/internal/scrape"
)

func newTOCCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toc URL",
		Short: "Show the table of contents a conversion would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}
			client, cleanup, err := ctx.buildClient(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			conv := pipeline.New(cfg, client, logger)
			title, entries, err := conv.TOC(signalCtx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Guide: %s\n", title)
			if len(entries) == 0 {
				fmt.Fprintln(out, "No sidebar navigation found; conversion would include the landing page only.")
				return nil
			}

			rows := tocRows(entries, 0)
			fmt.Fprintln(out, renderTable([]string{"Title", "URL"}, rows))
			fmt.Fprintf(out, "%d pages\n", len(scrape.Flatten(entries)))
			return nil
		},
	}
}

func tocRows(entries []scrape.TOCEntry, depth int) [][]string {
	var rows [][]string
	indent := strings.Repeat("  ", depth)
	for _, entry := range entries {
		url := entry.URL
		if url == "" {
			url = "(section)"
		}
		rows = append(rows, []string{indent + entry.Title, url})
		rows = append(rows, tocRows(entry.Children, depth+1)...)
	}
	return rows
}
