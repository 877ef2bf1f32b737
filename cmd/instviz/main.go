package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"instviz/adapters/excel"
	"instviz/internal/config"
	"instviz/internal/container"
	"instviz/internal/logging"
	"instviz/internal/report"
)

const (
	defaultInput  = "scrd-data.xlsx"
	defaultOutput = "Institution_Charts_1_Plots.png"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "instviz",
		Short:         "Institution Visual Analysis: charts and summaries from institution spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "WARN", "Log level (ERROR, WARN, INFO, DEBUG, TRACE)")

	rootCmd.AddCommand(
		newRenderCmd(opts),
		newSummaryCmd(opts),
		newExportCmd(opts),
		newServeCmd(opts),
		newSampleCmd(),
	)
	return rootCmd
}

func (o *rootOptions) logger() *logging.Logger {
	return logging.NewLogger(logging.ParseLevel(o.logLevel))
}

// offline tweaks a loaded config for one-shot commands: nothing is kept
// between runs so the report store is switched off
func (o *rootOptions) offline(tweak func(cfg *config.Config)) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Report.CacheMB = 0
	cfg.Metrics.Enabled = false
	cfg.Log.Level = strings.ToUpper(o.logLevel)
	if tweak != nil {
		tweak(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return container.New(cfg, o.logger())
}

func inputPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultInput
}

// buildReport loads path and builds its full report
func buildReport(cmd *cobra.Command, c *container.Container, path string) (*report.Report, error) {
	wb, err := excel.NewDataReader(path).WithLogger(c.Logger).ReadData()
	if err != nil {
		return nil, fmt.Errorf("error loading file: %w", err)
	}
	rep, err := c.Builder.Build(cmd.Context(), wb.Table, wb.Source)
	if err != nil {
		return nil, err
	}
	rep.Warnings = append(rep.Warnings, wb.Warnings...)
	return rep, nil
}

func printWarnings(cmd *cobra.Command, rep *report.Report) {
	warn := color.New(color.FgYellow)
	for _, ch := range rep.MissingCharts() {
		warn.Fprintf(cmd.ErrOrStderr(), "Warning: %s: %s\n", ch.Title, ch.Message)
	}
	for _, w := range rep.Warnings {
		warn.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
}
