package sqlitedb

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/backend/backendtest"
)

func TestConformance(t *testing.T) {
	backendtest.Run(t, NewDriver())
}

func TestConformanceWAL(t *testing.T) {
	backendtest.Run(t, NewDriver(
		WithJournalMode("WAL"),
		WithSynchronous("NORMAL"),
	))
}

func TestPragmasApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pragmas.sqlite")

	store, err := Open(context.Background(), path,
		WithJournalMode("WAL"),
		WithSynchronous("OFF"),
		WithCacheSize(-4096),
		WithBusyTimeout(2500),
	)
	require.NoError(t, err)
	defer store.Close()

	var journalMode string
	require.NoError(t, store.db.QueryRow(`PRAGMA journal_mode`).Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))

	var synchronous int
	require.NoError(t, store.db.QueryRow(`PRAGMA synchronous`).Scan(&synchronous))
	assert.Equal(t, 0, synchronous)

	var cacheSize int
	require.NoError(t, store.db.QueryRow(`PRAGMA cache_size`).Scan(&cacheSize))
	assert.Equal(t, -4096, cacheSize)

	var busyTimeout int
	require.NoError(t, store.db.QueryRow(`PRAGMA busy_timeout`).Scan(&busyTimeout))
	assert.Equal(t, 2500, busyTimeout)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		opts options
		want string
	}{
		{
			name: "plain",
			want: "/tmp/x.db",
		},
		{
			name: "journal mode",
			opts: options{journalMode: "WAL"},
			want: "/tmp/x.db?_pragma=journal_mode%28WAL%29",
		},
		{
			name: "cache size",
			opts: options{cacheSize: -2000},
			want: "/tmp/x.db?_pragma=cache_size%28-2000%29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.dsn("/tmp/x.db"))
		})
	}
}

func TestOpenUnavailable(t *testing.T) {
	dir := t.TempDir()

	// A regular file where a directory is expected fails even for root.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "file as parent", path: filepath.Join(blocker, "bench.sqlite")},
		{name: "missing parent", path: filepath.Join(dir, "missing", "bench.sqlite")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, backend.ErrStorageUnavailable)
		})
	}
}

func TestFiles(t *testing.T) {
	files := NewDriver().Files("/data/bench.sqlite")
	assert.Equal(t, []string{
		"/data/bench.sqlite",
		"/data/bench.sqlite-wal",
		"/data/bench.sqlite-shm",
		"/data/bench.sqlite-journal",
	}, files)
}
