package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"instviz/adapters/excel"
	"instviz/internal/aggregate"
	"instviz/internal/charts"
	"instviz/internal/config"
	"instviz/internal/container"
	"instviz/internal/report"
	"instviz/internal/sample"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var out string
	var cols, width, height int

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render every chart of a spreadsheet into one PNG grid",
		Long: `Render the institution chart battery for a spreadsheet and save the composite grid.

Charts whose columns are missing are drawn as placeholder tiles and reported as warnings.

Example: instviz render scrd-data.xlsx -o Institution_Charts_1_Plots.png --cols 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.offline(func(cfg *config.Config) {
				cfg.Render.Columns = cols
				cfg.Render.Width = width
				cfg.Render.Height = height
			})
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			rep, err := buildReport(cmd, c, inputPath(args))
			if err != nil {
				return err
			}
			printWarnings(cmd, rep)

			if err := os.WriteFile(out, rep.Composite, 0o644); err != nil {
				return fmt.Errorf("failed to save %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d of %d charts drawn)\n",
				out, len(rep.Charts)-len(rep.MissingCharts()), len(rep.Charts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", defaultOutput, "PNG file to write")
	cmd.Flags().IntVar(&cols, "cols", 4, "Charts per row in the grid")
	cmd.Flags().IntVar(&width, "width", 800, "Width of one chart tile in pixels")
	cmd.Flags().IntVar(&height, "height", 600, "Height of one chart tile in pixels")

	return cmd
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary [file]",
		Short: "Print the preview, column statistics and chart aggregates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.offline(nil)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			rep, err := buildReport(cmd, c, inputPath(args))
			if err != nil {
				return err
			}

			if asJSON {
				body, err := json.MarshalIndent(rep, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode summary: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return err
			}

			printWarnings(cmd, rep)
			printSummary(cmd, rep)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func printSummary(cmd *cobra.Command, rep *report.Report) {
	w := cmd.OutOrStdout()
	heading := color.New(color.FgYellow)

	fmt.Fprintf(w, "%s: %d rows, %d columns\n", rep.Source, rep.RowCount, len(rep.Headers))

	heading.Fprintln(w, "\nPreview of Uploaded Data")
	preview := tablewriter.NewWriter(w)
	preview.SetHeader(rep.Headers)
	preview.SetAutoWrapText(false)
	preview.AppendBulk(rep.Preview)
	preview.Render()

	if len(rep.Summaries) > 0 {
		heading.Fprintln(w, "\nColumn Statistics")
		stats := tablewriter.NewWriter(w)
		stats.SetHeader([]string{"Column", "Count", "Skipped", "Mean", "Median", "Min", "Max", "Std Dev"})
		for _, s := range rep.Summaries {
			stats.Append([]string{
				s.Column,
				strconv.Itoa(s.Count),
				strconv.Itoa(s.Skipped),
				formatNumber(s.Mean),
				formatNumber(s.Median),
				formatNumber(s.Min),
				formatNumber(s.Max),
				formatNumber(s.StdDev),
			})
		}
		stats.Render()
	}

	heading.Fprintln(w, "\nCharts")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Chart", "Kind", "Status", "Leading Value"})
	table.SetAutoWrapText(false)
	for _, ch := range rep.Charts {
		status := "ok"
		if ch.IsMissing() {
			status = "missing " + strings.Join(ch.Missing, ", ")
		} else if ch.Aggregate.Empty() {
			status = "no data"
		}
		table.Append([]string{ch.Title, string(ch.Kind), status, leadingValue(ch)})
	}
	table.Render()
}

// leadingValue describes the first bucket, or the correlation of a scatter
func leadingValue(ch report.ChartResult) string {
	if ch.IsMissing() {
		return "-"
	}
	if ch.Kind == charts.KindScatter {
		r, ok := aggregate.Correlation(ch.Aggregate.Points)
		if !ok {
			return fmt.Sprintf("%d points", len(ch.Aggregate.Points))
		}
		return fmt.Sprintf("%d points, r=%.2f", len(ch.Aggregate.Points), r)
	}
	if len(ch.Aggregate.Buckets) == 0 {
		return "-"
	}
	b := ch.Aggregate.Buckets[0]
	return fmt.Sprintf("%s (%s)", b.Label, formatNumber(b.Value))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write every chart's aggregate to an Excel workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.offline(nil)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			rep, err := buildReport(cmd, c, inputPath(args))
			if err != nil {
				return err
			}
			printWarnings(cmd, rep)

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := report.WriteWorkbook(rep, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d sheets)\n", out, len(rep.Charts)+1)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "aggregates.xlsx", "Workbook to write")

	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload dashboard",
		Long: `Run the web dashboard. Settings come from the environment (and .env):
PORT, GIN_MODE, MAX_UPLOAD_MB, REPORT_CACHE_MB, REPORT_TTL, RENDER_WORKERS,
CHART_WIDTH, CHART_HEIGHT, CHART_COLUMNS, METRICS_ENABLED, LOG_LEVEL,
DASHBOARD_TITLE and DASHBOARD_INTRO.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = strings.ToUpper(opts.logLevel)
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			c, err := container.New(cfg, nil)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())
			return c.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides PORT)")

	return cmd
}

func newSampleCmd() *cobra.Command {
	var out string
	cfg := sample.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a synthetic institution spreadsheet",
		Long: `Generate a deterministic institution dataset for trying the charts.

The format follows the output extension: .xlsx or .csv.

Example: instviz sample -o scrd-data.xlsx --rows 200 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := sample.Generate(cfg)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			switch excel.DetectFormat(out) {
			case excel.FormatCSV:
				err = sample.WriteCSV(&buf, ds)
			case excel.FormatXLSX:
				err = sample.WriteXLSX(&buf, ds)
			default:
				return fmt.Errorf("unsupported output %q: use .xlsx or .csv", out)
			}
			if err != nil {
				return fmt.Errorf("failed to write sample: %w", err)
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(ds.Rows), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", defaultInput, "File to write (.xlsx or .csv)")
	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "Number of institutions")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	cmd.Flags().Float64Var(&cfg.BlankRate, "blank-rate", cfg.BlankRate, "Share of numeric cells left empty")

	return cmd
}
