package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"guidepress/internal/pipeline"
)

const summaryDurationUnit = 100 * time.Millisecond

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var delayFlag float64
	var maxPagesFlag int

	cmd := &cobra.Command{
		Use:   "convert URL",
		Short: "Convert a guide to an EPUB book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("delay") {
				if delayFlag < 0 {
					return fmt.Errorf("delay must not be negative")
				}
				cfg.Fetch.RequestDelayMS = int(delayFlag * 1000)
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

			var opts []pipeline.Option
			if isatty.IsTerminal(os.Stderr.Fd()) {
				opts = append(opts, pipeline.WithProgress(os.Stderr))
			}
			conv := pipeline.New(cfg, client, logger, opts...)

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, err := conv.Run(signalCtx, args[0], pipeline.Options{
				OutputPath: strings.TrimSpace(outputFlag),
				MaxPages:   maxPagesFlag,
			})
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output EPUB path")
	cmd.Flags().Float64VarP(&delayFlag, "delay", "d", 0, "Delay between page requests in seconds")
	cmd.Flags().IntVarP(&maxPagesFlag, "max-pages", "m", 0, "Maximum number of pages to convert")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *pipeline.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Converted %q\n", summary.Title)

	rows := [][]string{
		{"Output", summary.OutputPath},
		{"Size", humanize.Bytes(uint64(summary.OutputSize))},
		{"Chapters", fmt.Sprintf("%d", summary.Chapters)},
		{"Section pages", fmt.Sprintf("%d", summary.Sections)},
		{"Images", fmt.Sprintf("%d (%s)", summary.Images, humanize.Bytes(uint64(summary.ImageBytes)))},
		{"Duration", summary.Duration.Round(summaryDurationUnit).String()},
	}
	if len(summary.Skipped) > 0 {
		rows = append(rows, []string{"Skipped pages", fmt.Sprintf("%d", len(summary.Skipped))})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))

	for _, url := range summary.Skipped {
		fmt.Fprintf(out, "skipped: %s\n", url)
	}
}
