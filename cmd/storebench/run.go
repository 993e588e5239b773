package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/harness"
	"github.com/weiihann/storebench/report"
)

func newRunCmd(logger *slog.Logger) *cobra.Command {
	opts := defaultOptions()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Seed every backend and measure each operation",
		Long: `Recreate each backend's database under --db-dir, seed it with generated
records and measure every selected operation for --warmup untimed and
--iterations timed calls. The report is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd, logger, opts)
		},
	}

	bindRunFlags(cmd.Flags(), opts)

	return cmd
}

func runBenchmark(cmd *cobra.Command, logger *slog.Logger, opts *options) error {
	ctx := cmd.Context()

	if err := applyConfigFile(cmd.Flags(), opts.configPath); err != nil {
		return err
	}

	drivers, err := opts.drivers()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.Int("records", opts.records),
		slog.Int("iterations", opts.iterations),
		slog.Int("warmup", opts.warmup),
		slog.Any("backends", opts.backends),
		slog.String("db_dir", opts.dbDir),
	)

	runner := harness.NewRunner(drivers, logger)
	res, runErr := runner.Run(ctx, opts.runConfig(cmd.ErrOrStderr()))

	// A fatal measurement error still carries the operations measured so far.
	if res != nil {
		w := cmd.OutOrStdout()
		if opts.outputJSON {
			err = report.GenerateJSON(w, res)
		} else {
			err = report.Generate(w, res)
		}
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}

func newVerifyCmd(logger *slog.Logger) *cobra.Command {
	opts := defaultOptions()

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Seed every backend and check the workload once",
		Long: `Seed each backend and run the workload scenario once against it: read
--target-id, read every record, update the target's phone and read it back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, logger, opts)
		},
	}

	bindStoreFlags(cmd.Flags(), opts)

	return cmd
}

func runVerify(cmd *cobra.Command, logger *slog.Logger, opts *options) error {
	if err := applyConfigFile(cmd.Flags(), opts.configPath); err != nil {
		return err
	}

	drivers, err := opts.drivers()
	if err != nil {
		return err
	}

	opCfg := opts.operationConfig()
	if opCfg.TargetID < 1 || opCfg.TargetID > int64(opts.records) {
		return &harness.PhaseError{
			Phase: "validate",
			Err: fmt.Errorf("target id %d outside seeded range [1, %d]",
				opCfg.TargetID, opts.records),
		}
	}

	for i, d := range drivers {
		if err := verifyBackend(cmd, logger, opts, d, int64(i)); err != nil {
			return err
		}
	}

	return nil
}

func verifyBackend(
	cmd *cobra.Command,
	logger *slog.Logger,
	opts *options,
	d backend.Driver,
	offset int64,
) (err error) {
	ctx := cmd.Context()

	seed := opts.seed
	if seed != 0 {
		seed += offset
	}

	s, err := harness.Seed(ctx, logger, harness.SeedConfig{
		Driver:    d,
		Path:      harness.ResolvePath(opts.dbDir, d.Name()),
		Records:   opts.records,
		BatchSize: opts.batchSize,
		Seed:      seed,
		Progress:  opts.progressWriter(cmd.ErrOrStderr()),
	})
	if err != nil {
		return &harness.PhaseError{Phase: "seed", Backend: d.Name(), Err: err}
	}

	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = &harness.PhaseError{Phase: "cleanup", Backend: d.Name(), Err: cerr}
		}
	}()

	if err := harness.Verify(ctx, s.Store, opts.operationConfig()); err != nil {
		return &harness.PhaseError{Phase: "verify", Backend: d.Name(), Err: err}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d records, fingerprint %s)\n",
		d.Name(), s.Info.Records, s.Info.Fingerprint)

	return nil
}

func newBackendsCmd() *cobra.Command {
	var dbDir string

	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List supported backends and their database files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			for _, name := range harness.KnownBackends() {
				d, err := harness.NewDriver(name, harness.DriverOptions{})
				if err != nil {
					return err
				}

				fmt.Fprintln(w, name)
				for _, f := range d.Files(harness.ResolvePath(dbDir, name)) {
					fmt.Fprintf(w, "  %s\n", f)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dbDir, "db-dir", defaultDBDir,
		"Directory holding the benchmark databases")

	return cmd
}
