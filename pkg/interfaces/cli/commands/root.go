// Package commands implements the blend command-line interface.
package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/blend/pkg/interfaces/cli/output"
)

// Options holds the persistent flags shared by every subcommand
type Options struct {
	ConfigFile  string
	Format      string
	OutputFile  string
	MetricsFile string
}

// NewRootCommand builds the blend command tree
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:   "blend",
		Short: "Find the cheapest blend of ingredients that meets a recipe",
		Long: `blend solves mixed-integer blending problems: pick quantities of
ingredients so the batch size, the property windows and the limit on distinct
ingredients are met at minimum cost.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !output.ValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: use text, json or csv", opts.Format)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "Path to a YAML configuration file")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Duration("time-limit", 60*time.Second, "Time limit per solve")
	flags.Int("max-nodes", 100000, "Branch-and-bound node limit per solve")
	flags.StringVarP(&opts.Format, "format", "f", output.FormatText, "Output format: text, json, csv")
	flags.StringVarP(&opts.OutputFile, "output", "o", "", "Write results to this file instead of stdout")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write solve metrics in Prometheus text format to this file")

	root.AddCommand(
		newSolveCommand(opts),
		newDiagnoseCommand(opts),
		newSweepCommand(opts),
		newValidateCommand(opts),
	)
	return root
}

// writer returns the destination for results and a function that closes it
func (o *Options) writer(cmd *cobra.Command) (io.Writer, func() error, error) {
	if o.OutputFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(o.OutputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, file.Close, nil
}
