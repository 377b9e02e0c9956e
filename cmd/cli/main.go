package main

import (
	"fmt"
	"io"
	"os"

	"balloonsum/adapters/excel"
	"balloonsum/adapters/jsonlog"
	"balloonsum/domain/summary"
	"balloonsum/internal/aggregate"
	"balloonsum/internal/config"
	"balloonsum/internal/report"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "balloonsum",
		Short: "Summarize balloon-navigation evaluation episode logs",
	}

	rootCmd.AddCommand(newSummarizeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSummarizeCmd() *cobra.Command {
	var output string
	var asXLSX bool
	var title string

	cmd := &cobra.Command{
		Use:   "summarize [log.json...]",
		Short: "Aggregate episode logs into one summary table",
		Long: `Aggregate one or more JSON episode logs into a summary table,
one row per file in argument order, written as an HTML document
(or an Excel workbook with --xlsx).

Example: balloonsum summarize runA.json runB.json -o summary.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := jsonlog.NewReader()
			aggregator := aggregate.New()

			inputs := make([]aggregate.Input, 0, len(args))
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				dataset := summary.BaseName(path)
				logData, err := reader.Read(dataset, raw)
				if err != nil {
					return err
				}
				inputs = append(inputs, aggregate.Input{Dataset: dataset, Log: logData})
			}

			table, err := aggregator.SummarizeAll(inputs)
			if err != nil {
				return err
			}
			profiles := aggregator.ProfileAll(inputs)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if asXLSX {
				return excel.NewExporter().Export(w, table, profiles)
			}

			renderer, err := report.NewRenderer(config.ReportConfig{
				Title:           title,
				HeaderCellWidth: 150,
			})
			if err != nil {
				return err
			}
			return renderer.RenderSummary(w, table, profiles)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&asXLSX, "xlsx", false, "write an Excel workbook instead of HTML")
	cmd.Flags().StringVar(&title, "title", "Evaluation summary", "report title")

	return cmd
}
