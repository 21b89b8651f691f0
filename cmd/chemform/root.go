package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jreel/js-chem/pkg/elements"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
	DataFile string

	logger *slog.Logger
}

// ValidLogLevels defines the accepted --log-level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// NewRootCommand creates the root command of the chemform CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chemform",
		Short: "Chemistry formula formatting and periodic table tools",
		Long: `chemform turns plain ASCII chemistry such as "[Fe(CN)6]3-" or
"2 H2 + O2 --> 2 H2O" into HTML, and renders periodic tables, Lewis
atoms and property trends from the bundled element data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(opts.LogLevel)
			if err != nil {
				return err
			}
			// Logs go to stderr so they never mix with generated output.
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.DataFile, "data", "", "element data YAML file (default: bundled data)")

	cmd.AddCommand(NewFormatCommand(opts))
	cmd.AddCommand(NewTableCommand(opts))
	cmd.AddCommand(NewAtomCommand(opts))
	cmd.AddCommand(NewMarkdownCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewTrendCommand(opts))

	return cmd
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q: must be one of %v", s, ValidLogLevels)
}

// dataset loads the element data selected by --data.
func (o *RootOptions) dataset() (*elements.Dataset, error) {
	if o.DataFile == "" {
		return elements.Load()
	}
	f, err := os.Open(o.DataFile)
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	ds, err := elements.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.DataFile, err)
	}
	o.logger.Debug("Loaded element data", "file", o.DataFile, "elements", ds.Len())
	return ds, nil
}
