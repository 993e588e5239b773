// Package main provides the CLI entry point for storebench, a latency and
// allocation benchmark for embedded record stores.
package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/weiihann/storebench/harness"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	root := newRootCmd(logger, level)
	if err := root.Execute(); err != nil {
		logFailure(logger, err)
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var verbose bool

	opts := defaultOptions()

	root := &cobra.Command{
		Use:   "storebench",
		Short: "Benchmark embedded SQL and document stores",
		Long: `Storebench seeds an embedded SQL store and an embedded document store
with generated user records, then measures insert, read-by-id, read-all and
update latency and allocations against each of them.

Running storebench without a subcommand is the same as "storebench run".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd, logger, opts)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	bindRunFlags(root.Flags(), opts)

	root.AddCommand(
		newRunCmd(logger),
		newVerifyCmd(logger),
		newBackendsCmd(),
	)

	return root
}

// logFailure logs a fatal error with the phase and backend it came from.
func logFailure(logger *slog.Logger, err error) {
	attrs := []any{slog.String("error", err.Error())}

	var phaseErr *harness.PhaseError
	if errors.As(err, &phaseErr) {
		attrs = append(attrs, slog.String("phase", phaseErr.Phase))
		if phaseErr.Backend != "" {
			attrs = append(attrs, slog.String("backend", phaseErr.Backend))
		}
	}

	logger.Error("storebench failed", attrs...)
}
