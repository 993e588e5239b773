package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/harness"
	"golang.org/x/term"
)

const defaultDBDir = "tmp"

// options holds every flag of the run and verify commands.
type options struct {
	configPath string

	records    int
	iterations int
	warmup     int
	targetID   int64
	minRecords int
	backends   []string
	operations []string
	seed       int64
	sameData   bool
	batchSize  int
	dbDir      string
	outputJSON bool
	progress   bool

	sqliteJournalMode string
	sqliteSynchronous string
	sqliteCacheSize   int
	boltCompression   string
	boltNoSync        bool
	boltLockTimeout   time.Duration
}

func defaultOptions() *options {
	return &options{
		records:         150000,
		iterations:      20,
		warmup:          3,
		targetID:        50000,
		minRecords:      5,
		backends:        harness.KnownBackends(),
		batchSize:       harness.DefaultBatchSize,
		dbDir:           defaultDBDir,
		progress:        term.IsTerminal(int(os.Stderr.Fd())),
		boltCompression: "none",
		boltLockTimeout: time.Second,
	}
}

// bindStoreFlags registers the flags shared by every command that seeds
// backends.
func bindStoreFlags(flags *pflag.FlagSet, o *options) {
	flags.StringVar(&o.configPath, "config", "",
		"YAML file with flag values; flags given on the command line win")

	flags.IntVar(&o.records, "records", o.records,
		"Number of records seeded into each backend")
	flags.Int64Var(&o.targetID, "target-id", o.targetID,
		"Record id read and updated by the workload")
	flags.IntVar(&o.minRecords, "min-records", o.minRecords,
		"Fewest records read-all may return")
	flags.StringSliceVar(&o.backends, "backends", o.backends,
		"Backends to benchmark (sqlite, bolt)")
	flags.Int64Var(&o.seed, "seed", o.seed,
		"Record generator seed (0 = use current time)")
	flags.IntVar(&o.batchSize, "batch-size", o.batchSize,
		"Records committed per seeding transaction (0 = one transaction)")
	flags.StringVar(&o.dbDir, "db-dir", o.dbDir,
		"Directory holding the benchmark databases")
	flags.BoolVar(&o.progress, "progress", o.progress,
		"Show seeding progress bars on stderr")

	flags.StringVar(&o.sqliteJournalMode, "sqlite-journal-mode", o.sqliteJournalMode,
		"SQLite journal_mode pragma (e.g. WAL, DELETE)")
	flags.StringVar(&o.sqliteSynchronous, "sqlite-synchronous", o.sqliteSynchronous,
		"SQLite synchronous pragma (e.g. NORMAL, OFF)")
	flags.IntVar(&o.sqliteCacheSize, "sqlite-cache-size", o.sqliteCacheSize,
		"SQLite cache_size pragma (0 = driver default)")
	flags.StringVar(&o.boltCompression, "bolt-compression", o.boltCompression,
		"Document compression: none, snappy, lz4, zstd")
	flags.BoolVar(&o.boltNoSync, "bolt-no-sync", o.boltNoSync,
		"Skip fsync after each bolt commit")
	flags.DurationVar(&o.boltLockTimeout, "bolt-lock-timeout", o.boltLockTimeout,
		"How long to wait for the bolt file lock")
}

// bindRunFlags registers the run command's flags.
func bindRunFlags(flags *pflag.FlagSet, o *options) {
	bindStoreFlags(flags, o)

	flags.IntVar(&o.iterations, "iterations", o.iterations,
		"Measured iterations per operation")
	flags.IntVar(&o.warmup, "warmup", o.warmup,
		"Untimed iterations before measuring each operation")
	flags.StringSliceVar(&o.operations, "operations", o.operations,
		"Operations to measure (insert, read-by-id, read-all, update; default all)")
	flags.BoolVar(&o.sameData, "same-dataset", o.sameData,
		"Seed every backend with the same records")
	flags.BoolVar(&o.outputJSON, "json", o.outputJSON,
		"Output results as JSON instead of table")
}

func (o *options) drivers() ([]backend.Driver, error) {
	opts := harness.DriverOptions{
		SQLiteJournalMode: o.sqliteJournalMode,
		SQLiteSynchronous: o.sqliteSynchronous,
		SQLiteCacheSize:   o.sqliteCacheSize,
		BoltCompression:   o.boltCompression,
		BoltNoSync:        o.boltNoSync,
		BoltLockTimeout:   o.boltLockTimeout,
	}

	drivers := make([]backend.Driver, 0, len(o.backends))
	seen := make(map[string]bool, len(o.backends))

	for _, name := range o.backends {
		if seen[name] {
			continue
		}
		seen[name] = true

		d, err := harness.NewDriver(name, opts)
		if err != nil {
			return nil, &harness.PhaseError{Phase: "validate", Err: err}
		}
		drivers = append(drivers, d)
	}

	return drivers, nil
}

func (o *options) operationConfig() harness.OperationConfig {
	return harness.OperationConfig{
		TargetID:   o.targetID,
		MinRecords: o.minRecords,
	}
}

func (o *options) runConfig(stderr io.Writer) harness.RunConfig {
	return harness.RunConfig{
		DBDir:          o.dbDir,
		Records:        o.records,
		Iterations:     o.iterations,
		Warmup:         o.warmup,
		BatchSize:      o.batchSize,
		Seed:           o.seed,
		SameDataset:    o.sameData,
		Operations:     o.operationConfig(),
		OperationNames: o.operations,
		Progress:       o.progressWriter(stderr),
	}
}

func (o *options) progressWriter(stderr io.Writer) io.Writer {
	if !o.progress {
		return nil
	}
	return stderr
}
