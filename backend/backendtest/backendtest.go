// Package backendtest provides a conformance suite every backend.Driver
// must pass.
package backendtest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/workload"
)

// OpenStore opens a fresh store from d in a test temp dir. The store is
// closed when the test ends.
func OpenStore(t testing.TB, d backend.Driver) backend.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store."+d.Name())
	store, err := d.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

// Run runs the conformance suite against d.
func Run(t *testing.T, d backend.Driver) {
	t.Run("BulkLoadCount", func(t *testing.T) { testBulkLoadCount(t, d) })
	t.Run("InsertThenRead", func(t *testing.T) { testInsertThenRead(t, d) })
	t.Run("ReadMissing", func(t *testing.T) { testReadMissing(t, d) })
	t.Run("ReadAllOrdered", func(t *testing.T) { testReadAllOrdered(t, d) })
	t.Run("UpdateRoundTrip", func(t *testing.T) { testUpdateRoundTrip(t, d) })
	t.Run("UpdateIdempotent", func(t *testing.T) { testUpdateIdempotent(t, d) })
	t.Run("UpdateKeepsID", func(t *testing.T) { testUpdateKeepsID(t, d) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, d) })
	t.Run("Reopen", func(t *testing.T) { testReopen(t, d) })
}

func testBulkLoadCount(t *testing.T, d backend.Driver) {
	ctx := context.Background()

	for _, n := range []int{0, 1, 100, 1000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			store := OpenStore(t, d)

			records := workload.NewGenerator(workload.Config{Seed: int64(n) + 1}).Batch(n)
			require.NoError(t, store.BulkLoad(ctx, records))

			all, err := store.ReadAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, n)
		})
	}
}

func testInsertThenRead(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	store := OpenStore(t, d)
	gen := workload.NewGenerator(workload.Config{Seed: 5})

	require.NoError(t, store.BulkLoad(ctx, gen.Batch(10)))

	for i := 0; i < 5; i++ {
		want := gen.Generate()

		id, err := store.InsertOne(ctx, want)
		require.NoError(t, err)
		assert.Equal(t, int64(11+i), id)

		got, found, err := store.ReadByID(ctx, id)
		require.NoError(t, err)
		require.True(t, found)

		want.ID = id
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("record %d mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func testReadMissing(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	store := OpenStore(t, d)

	require.NoError(t, store.BulkLoad(ctx, workload.NewGenerator(workload.Config{Seed: 1}).Batch(3)))

	for _, id := range []int64{-1, 0, 4, 1 << 40} {
		got, found, err := store.ReadByID(ctx, id)
		require.NoError(t, err, "id %d", id)
		assert.False(t, found, "id %d", id)
		assert.Equal(t, workload.Record{}, got, "id %d", id)
	}
}

func testReadAllOrdered(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	store := OpenStore(t, d)

	records := workload.NewGenerator(workload.Config{Seed: 9}).Batch(300)
	require.NoError(t, store.BulkLoad(ctx, records))

	all, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(records))

	for i, got := range all {
		want := records[i]
		want.ID = int64(i + 1)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("record %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func testUpdateRoundTrip(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	store := OpenStore(t, d)

	id, err := store.InsertOne(ctx, workload.Record{
		Username: "newuser",
		FullName: "New User",
		Phone:    "123-456-7890",
	})
	require.NoError(t, err)

	err = store.UpdateByID(ctx, id, func(r *workload.Record) {
		r.Username = "renamed"
		r.FullName = "Renamed User"
		r.Phone = "987-654-3210"
	})
	require.NoError(t, err)

	got, found, err := store.ReadByID(ctx, id)
	require.NoError(t, err)
	require.True(t, found)

	want := workload.Record{
		ID:       id,
		Username: "renamed",
		FullName: "Renamed User",
		Phone:    "987-654-3210",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("updated record mismatch (-want +got):\n%s", diff)
	}
}

func testUpdateIdempotent(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	once := OpenStore(t, d)
	twice := OpenStore(t, d)

	records := workload.NewGenerator(workload.Config{Seed: 21}).Batch(5)
	require.NoError(t, once.BulkLoad(ctx, records))
	require.NoError(t, twice.BulkLoad(ctx, records))

	setPhone := func(r *workload.Record) { r.Phone = "987-654-3210" }

	require.NoError(t, once.UpdateByID(ctx, 3, setPhone))
	require.NoError(t, twice.UpdateByID(ctx, 3, setPhone))
	require.NoError(t, twice.UpdateByID(ctx, 3, setPhone))

	got1, _, err := once.ReadByID(ctx, 3)
	require.NoError(t, err)
	got2, _, err := twice.ReadByID(ctx, 3)
	require.NoError(t, err)

	if diff := cmp.Diff(got1, got2); diff != "" {
		t.Errorf("repeated update diverged (-once +twice):\n%s", diff)
	}
	assert.Equal(t, "987-654-3210", got2.Phone)
}

func testUpdateKeepsID(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	store := OpenStore(t, d)

	require.NoError(t, store.BulkLoad(ctx, workload.NewGenerator(workload.Config{Seed: 2}).Batch(2)))

	require.NoError(t, store.UpdateByID(ctx, 1, func(r *workload.Record) {
		r.ID = 2
		r.Phone = "555-0100"
	}))

	first, found, err := store.ReadByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "555-0100", first.Phone)

	second, found, err := store.ReadByID(ctx, 2)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEqual(t, "555-0100", second.Phone)
}

func testUpdateMissing(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	store := OpenStore(t, d)

	called := false
	err := store.UpdateByID(ctx, 42, func(*workload.Record) { called = true })
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrWriteFailed)
	assert.False(t, called, "mutator ran for a missing record")
}

func testReopen(t *testing.T, d backend.Driver) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen."+d.Name())

	store, err := d.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.BulkLoad(ctx, workload.NewGenerator(workload.Config{Seed: 4}).Batch(7)))
	require.NoError(t, store.Close())

	store, err = d.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	all, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	id, err := store.InsertOne(ctx, workload.Record{Username: "after"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
}
