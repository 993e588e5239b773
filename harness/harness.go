package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/weiihann/storebench/backend"
)

// RunConfig holds parameters for a benchmark run.
type RunConfig struct {
	DBDir      string
	Records    int
	Iterations int
	Warmup     int
	BatchSize  int
	// Seed is the base generator seed; zero derives one from the clock.
	Seed int64
	// SameDataset seeds every backend with identical records. Otherwise
	// each backend gets its own derived seed.
	SameDataset    bool
	Operations     OperationConfig
	OperationNames []string
	// Progress receives seeding progress bars when non-nil.
	Progress io.Writer
}

func (cfg RunConfig) validate(ops []Operation) error {
	if cfg.Records < 0 {
		return fmt.Errorf("records must not be negative, got %d", cfg.Records)
	}
	if cfg.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", cfg.Iterations)
	}
	if cfg.Warmup < 0 {
		return fmt.Errorf("warmup must not be negative, got %d", cfg.Warmup)
	}

	for _, op := range ops {
		switch op.Name {
		case OpReadByID, OpUpdate:
			id := cfg.Operations.TargetID
			if id < 1 || id > int64(cfg.Records) {
				return fmt.Errorf("target id %d outside seeded range [1, %d]",
					id, cfg.Records)
			}
		case OpReadAll:
			if cfg.Operations.MinRecords > cfg.Records {
				return fmt.Errorf("min records %d exceeds seeded records %d",
					cfg.Operations.MinRecords, cfg.Records)
			}
		}
	}

	return nil
}

// Runner seeds every backend, measures each operation against each of
// them and releases the stores.
type Runner struct {
	Drivers []backend.Driver
	Logger  *slog.Logger
}

// NewRunner creates a Runner over the given drivers.
func NewRunner(drivers []backend.Driver, logger *slog.Logger) *Runner {
	return &Runner{
		Drivers: drivers,
		Logger:  logger,
	}
}

// Run executes the benchmark. Operation failures are recorded in the
// result and do not stop the run; storage and integrity failures do. Every
// opened store is closed before Run returns, whatever the outcome. The
// result is nil only if nothing was measured.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (_ *Result, err error) {
	ops, err := Operations(cfg.Operations, cfg.OperationNames...)
	if err != nil {
		return nil, &PhaseError{Phase: "validate", Err: err}
	}
	if err := cfg.validate(ops); err != nil {
		return nil, &PhaseError{Phase: "validate", Err: err}
	}

	baseSeed := cfg.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	res := &Result{
		RunID:       uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		Records:     cfg.Records,
		Iterations:  cfg.Iterations,
		Warmup:      cfg.Warmup,
		SameDataset: cfg.SameDataset,
	}

	seeded := make([]*Seeded, 0, len(r.Drivers))

	defer func() {
		if cerr := r.cleanup(ctx, seeded, res); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	// Step 1: Seed every backend before any measurement.
	for i, d := range r.Drivers {
		seed := baseSeed
		if !cfg.SameDataset {
			seed += int64(i)
		}

		s, seedErr := Seed(ctx, r.Logger, SeedConfig{
			Driver:    d,
			Path:      ResolvePath(cfg.DBDir, d.Name()),
			Records:   cfg.Records,
			BatchSize: cfg.BatchSize,
			Seed:      seed,
			Progress:  cfg.Progress,
		})
		if seedErr != nil {
			return nil, &PhaseError{Phase: "seed", Backend: d.Name(), Err: seedErr}
		}

		seeded = append(seeded, s)
		res.Datasets = append(res.Datasets, s.Info)
	}

	// Step 2: Measure each operation, one backend at a time.
	for _, s := range seeded {
		for _, op := range ops {
			opResult, measureErr := Measure(ctx, r.Logger, s.Name, s.Store, op,
				cfg.Warmup, cfg.Iterations)
			res.Operations = append(res.Operations, opResult)

			if measureErr == nil {
				continue
			}

			if errors.Is(measureErr, backend.ErrIntegrityViolation) {
				return res, &PhaseError{Phase: "measure", Backend: s.Name, Err: measureErr}
			}

			r.Logger.WarnContext(ctx, "operation aborted",
				slog.String("backend", s.Name),
				slog.String("operation", op.Name),
				slog.String("error", measureErr.Error()),
			)
		}
	}

	return res, nil
}

// cleanup closes every seeded store once and records on-disk sizes.
func (r *Runner) cleanup(ctx context.Context, seeded []*Seeded, res *Result) error {
	var errs []error

	for i, s := range seeded {
		if err := s.Close(); err != nil {
			r.Logger.WarnContext(ctx, "failed to close backend",
				slog.String("backend", s.Name),
				slog.String("error", err.Error()),
			)
			errs = append(errs, &PhaseError{Phase: "cleanup", Backend: s.Name, Err: err})
		}

		size, err := filesSize(s.files)
		if err != nil {
			r.Logger.WarnContext(ctx, "failed to measure db size",
				slog.String("backend", s.Name),
				slog.String("error", err.Error()),
			)
		}
		if i < len(res.Datasets) {
			res.Datasets[i].DBSizeBytes = size
		}
	}

	return errors.Join(errs...)
}

// Measure runs warmup untimed iterations of op followed by iterations
// measured ones, and summarizes time and allocations of the measured
// calls. A failing call stops the measurement and is returned as a
// *BenchmarkAbortedError; the returned result is then marked failed.
func Measure(
	ctx context.Context,
	logger *slog.Logger,
	name string,
	store backend.Store,
	op Operation,
	warmup, iterations int,
) (OperationResult, error) {
	result := OperationResult{
		Backend:   name,
		Operation: op.Name,
	}

	abort := func(phase Phase, i int, err error) (OperationResult, error) {
		aborted := &BenchmarkAbortedError{
			Backend:   name,
			Operation: op.Name,
			Phase:     phase,
			Iteration: i,
			Err:       err,
		}
		result.Failed = true
		result.Error = aborted.Error()

		return result, aborted
	}

	logger = logger.With(
		slog.String("backend", name),
		slog.String("operation", op.Name),
	)

	// Start every operation from a collected heap.
	runtime.GC()

	logger.DebugContext(ctx, "phase", slog.String("phase", PhaseWarmup.String()))

	for i := 0; i < warmup; i++ {
		if err := op.Run(ctx, store); err != nil {
			return abort(PhaseWarmup, i, err)
		}
	}

	logger.DebugContext(ctx, "phase", slog.String("phase", PhaseMeasuring.String()))

	var (
		times  = make([]float64, iterations)
		bytes  = make([]float64, iterations)
		allocs = make([]float64, iterations)

		before, after runtime.MemStats
	)

	for i := 0; i < iterations; i++ {
		runtime.ReadMemStats(&before)
		start := time.Now()

		err := op.Run(ctx, store)

		elapsed := time.Since(start)
		runtime.ReadMemStats(&after)

		if err != nil {
			return abort(PhaseMeasuring, i, err)
		}

		times[i] = float64(elapsed.Nanoseconds())
		bytes[i] = float64(after.TotalAlloc - before.TotalAlloc)
		allocs[i] = float64(after.Mallocs - before.Mallocs)
	}

	result.Iterations = iterations
	result.Time = Summarize(times)
	result.AllocBytes = Summarize(bytes)
	result.Allocs = Summarize(allocs)

	logger.InfoContext(ctx, "operation measured",
		slog.Duration("mean", time.Duration(result.Time.Mean)),
		slog.Duration("stddev", time.Duration(result.Time.StdDev)),
		slog.Int("iterations", iterations),
	)
	logger.DebugContext(ctx, "phase", slog.String("phase", PhaseReported.String()))

	return result, nil
}
