package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/backend/boltdb"
	"github.com/weiihann/storebench/backend/sqlitedb"
)

// DriverOptions holds backend specific settings. Zero values keep each
// backend's defaults.
type DriverOptions struct {
	SQLiteJournalMode string
	SQLiteSynchronous string
	SQLiteCacheSize   int
	SQLiteBusyTimeout int

	BoltCompression string
	BoltNoSync      bool
	BoltLockTimeout time.Duration
}

// KnownBackends returns the list of supported backend names.
func KnownBackends() []string {
	return []string{sqlitedb.Name, boltdb.Name}
}

// ResolvePath returns the database file for a backend given the base
// database directory.
func ResolvePath(dbDir, name string) string {
	return filepath.Join(dbDir, "bench."+name)
}

// NewDriver returns the driver for the named backend.
func NewDriver(name string, opts DriverOptions) (backend.Driver, error) {
	switch name {
	case sqlitedb.Name:
		var mods []sqlitedb.Modifier
		if opts.SQLiteJournalMode != "" {
			mods = append(mods, sqlitedb.WithJournalMode(opts.SQLiteJournalMode))
		}
		if opts.SQLiteSynchronous != "" {
			mods = append(mods, sqlitedb.WithSynchronous(opts.SQLiteSynchronous))
		}
		if opts.SQLiteCacheSize != 0 {
			mods = append(mods, sqlitedb.WithCacheSize(opts.SQLiteCacheSize))
		}
		if opts.SQLiteBusyTimeout != 0 {
			mods = append(mods, sqlitedb.WithBusyTimeout(opts.SQLiteBusyTimeout))
		}
		return sqlitedb.NewDriver(mods...), nil

	case boltdb.Name:
		compression, err := boltdb.ParseCompression(opts.BoltCompression)
		if err != nil {
			return nil, fmt.Errorf("bolt: %w", err)
		}
		mods := []boltdb.Modifier{
			boltdb.WithCompression(compression),
			boltdb.WithNoSync(opts.BoltNoSync),
		}
		if opts.BoltLockTimeout > 0 {
			mods = append(mods, boltdb.WithTimeout(opts.BoltLockTimeout))
		}
		return boltdb.NewDriver(mods...), nil

	default:
		return nil, fmt.Errorf("unknown backend %q (known: %v)", name, KnownBackends())
	}
}

// filesSize sums the sizes of the files that exist.
func filesSize(paths []string) (uint64, error) {
	var size uint64

	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return size, err
		}
		if !info.IsDir() {
			size += uint64(info.Size())
		}
	}

	return size, nil
}
