package harness

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/workload"
)

func realDrivers(t *testing.T) []backend.Driver {
	t.Helper()

	drivers := make([]backend.Driver, 0, len(KnownBackends()))
	for _, name := range KnownBackends() {
		d, err := NewDriver(name, DriverOptions{BoltNoSync: true, SQLiteSynchronous: "OFF"})
		require.NoError(t, err)
		drivers = append(drivers, d)
	}

	return drivers
}

func TestSeedCounts(t *testing.T) {
	for _, d := range realDrivers(t) {
		for _, n := range []int{0, 1, 1000} {
			t.Run(d.Name(), func(t *testing.T) {
				ctx := context.Background()

				s, err := Seed(ctx, discardLogger(), SeedConfig{
					Driver:    d,
					Path:      ResolvePath(t.TempDir(), d.Name()),
					Records:   n,
					BatchSize: 300,
					Seed:      7,
				})
				require.NoError(t, err)
				defer s.Close()

				records, err := s.Store.ReadAll(ctx)
				require.NoError(t, err)
				assert.Len(t, records, n)
				assert.Equal(t, n, s.Info.Records)
				assert.Equal(t, int64(7), s.Info.Seed)

				want := workload.NewFingerprint()
				want.Add(workload.NewGenerator(workload.Config{Seed: 7}).Batch(n)...)
				assert.Equal(t, want.Sum(), s.Info.Fingerprint)
			})
		}
	}
}

func TestSeedRemovesStaleFiles(t *testing.T) {
	for _, d := range realDrivers(t) {
		t.Run(d.Name(), func(t *testing.T) {
			ctx := context.Background()
			path := ResolvePath(t.TempDir(), d.Name())

			// Leftovers that neither backend could open.
			for _, f := range d.Files(path) {
				require.NoError(t, os.WriteFile(f, []byte("not a database"), 0o600))
			}

			s, err := Seed(ctx, discardLogger(), SeedConfig{
				Driver:  d,
				Path:    path,
				Records: 20,
				Seed:    3,
			})
			require.NoError(t, err)
			defer s.Close()

			records, err := s.Store.ReadAll(ctx)
			require.NoError(t, err)
			assert.Len(t, records, 20)
		})
	}
}

func TestSeedReplacesPreviousDataset(t *testing.T) {
	for _, d := range realDrivers(t) {
		t.Run(d.Name(), func(t *testing.T) {
			ctx := context.Background()
			path := ResolvePath(t.TempDir(), d.Name())

			first, err := Seed(ctx, discardLogger(), SeedConfig{Driver: d, Path: path, Records: 50, Seed: 1})
			require.NoError(t, err)
			require.NoError(t, first.Close())

			second, err := Seed(ctx, discardLogger(), SeedConfig{Driver: d, Path: path, Records: 10, Seed: 2})
			require.NoError(t, err)
			defer second.Close()

			records, err := second.Store.ReadAll(ctx)
			require.NoError(t, err)
			require.Len(t, records, 10)
			assert.Equal(t, int64(1), records[0].ID)
		})
	}
}

func TestSeedProgress(t *testing.T) {
	d := realDrivers(t)[0]

	var buf bytes.Buffer
	s, err := Seed(context.Background(), discardLogger(), SeedConfig{
		Driver:    d,
		Path:      ResolvePath(t.TempDir(), d.Name()),
		Records:   100,
		BatchSize: 10,
		Progress:  &buf,
	})
	require.NoError(t, err)
	defer s.Close()

	assert.Contains(t, buf.String(), d.Name())
}

func TestSeedUnavailableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	for _, d := range realDrivers(t) {
		t.Run(d.Name(), func(t *testing.T) {
			s, err := Seed(context.Background(), discardLogger(), SeedConfig{
				Driver:  d,
				Path:    ResolvePath(filepath.Join(file, "db"), d.Name()),
				Records: 10,
			})
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, backend.ErrStorageUnavailable)
		})
	}
}

func TestSeededCloseOnce(t *testing.T) {
	store := &memStore{calls: make(map[string]int)}
	s := &Seeded{Name: "mem", Store: store}

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, store.closes)
}

func TestRunRealBackendsSeedFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	cfg := smallRunConfig(t)
	cfg.DBDir = filepath.Join(file, "db")

	res, err := NewRunner(realDrivers(t), discardLogger()).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsFatal(err))

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, "seed", phaseErr.Phase)
	assert.Equal(t, KnownBackends()[0], phaseErr.Backend)
}
