package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/workload"
)

// DefaultBatchSize is the number of records committed per bulk load.
const DefaultBatchSize = 10000

// SeedConfig describes how to build one backend's dataset.
type SeedConfig struct {
	Driver  backend.Driver
	Path    string
	Records int
	// BatchSize caps records per BulkLoad call. Zero or negative loads
	// everything in one call.
	BatchSize int
	// Seed for the record generator; zero derives one from the clock.
	Seed int64
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// Seeded is a freshly created and populated backend instance.
type Seeded struct {
	Name  string
	Store backend.Store
	Info  DatasetInfo

	files  []string
	closed bool
}

// Close releases the store. Only the first call closes it.
func (s *Seeded) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	return s.Store.Close()
}

// Seed deletes any previous files at cfg.Path, opens a new store and
// bulk-loads cfg.Records generated records into it. On failure nothing is
// left open.
func Seed(ctx context.Context, logger *slog.Logger, cfg SeedConfig) (*Seeded, error) {
	name := cfg.Driver.Name()
	files := cfg.Driver.Files(cfg.Path)

	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: remove stale %s: %w",
				backend.ErrStorageUnavailable, f, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db dir: %w",
			backend.ErrStorageUnavailable, err)
	}

	store, err := cfg.Driver.Open(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}

	gen := workload.NewGenerator(workload.Config{Seed: cfg.Seed})
	fingerprint := workload.NewFingerprint()

	logger.InfoContext(ctx, "seeding backend",
		slog.String("backend", name),
		slog.String("path", cfg.Path),
		slog.Int("records", cfg.Records),
		slog.Int64("seed", gen.Seed()),
	)

	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > cfg.Records {
		batchSize = cfg.Records
	}

	var bar *pb.ProgressBar
	if cfg.Progress != nil {
		bar = pb.New(cfg.Records).SetWriter(cfg.Progress).Set("prefix", name+" ").Start()
	}

	start := time.Now()

	for loaded := 0; loaded < cfg.Records; loaded += batchSize {
		n := min(batchSize, cfg.Records-loaded)

		records := gen.Batch(n)
		fingerprint.Add(records...)

		if err := store.BulkLoad(ctx, records); err != nil {
			if bar != nil {
				bar.Finish()
			}
			store.Close()

			return nil, fmt.Errorf("bulk load records %d-%d: %w",
				loaded+1, loaded+n, err)
		}

		if bar != nil {
			bar.Add(n)
		}
	}

	elapsed := time.Since(start)

	if bar != nil {
		bar.Finish()
	}

	logger.InfoContext(ctx, "backend seeded",
		slog.String("backend", name),
		slog.Duration("elapsed", elapsed),
		slog.String("fingerprint", fingerprint.Sum()),
	)

	return &Seeded{
		Name:  name,
		Store: store,
		Info: DatasetInfo{
			Backend:     name,
			Path:        cfg.Path,
			Records:     fingerprint.Count(),
			Seed:        gen.Seed(),
			Fingerprint: fingerprint.Sum(),
			SeedTimeMs:  elapsed.Milliseconds(),
		},
		files: files,
	}, nil
}
