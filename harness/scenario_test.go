package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullScaleScenario seeds the default dataset size into every real
// backend and checks the measured workload against it.
func TestFullScaleScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("seeds 150000 records per backend")
	}

	const records = 150000

	cfg := OperationConfig{TargetID: 50000, MinRecords: 5}

	for _, d := range realDrivers(t) {
		t.Run(d.Name(), func(t *testing.T) {
			ctx := context.Background()

			s, err := Seed(ctx, discardLogger(), SeedConfig{
				Driver:    d,
				Path:      ResolvePath(t.TempDir(), d.Name()),
				Records:   records,
				BatchSize: DefaultBatchSize,
				Seed:      2024,
			})
			require.NoError(t, err)
			defer s.Close()

			assert.Equal(t, records, s.Info.Records)

			target, found, err := s.Store.ReadByID(ctx, cfg.TargetID)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, cfg.TargetID, target.ID)
			assert.NotEmpty(t, target.Username)

			all, err := s.Store.ReadAll(ctx)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(all), cfg.MinRecords)
			assert.Len(t, all, records)

			require.NoError(t, Verify(ctx, s.Store, cfg))

			updated, _, err := s.Store.ReadByID(ctx, cfg.TargetID)
			require.NoError(t, err)
			assert.Equal(t, UpdatedPhone, updated.Phone)
			assert.Equal(t, target.Username, updated.Username)
		})
	}
}

func TestRunRealBackends(t *testing.T) {
	cfg := smallRunConfig(t)
	cfg.Records = 500
	cfg.BatchSize = 100

	res, err := NewRunner(realDrivers(t), discardLogger()).Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, res.Datasets, 2)
	require.Len(t, res.Operations, 8)

	for _, op := range res.Operations {
		assert.False(t, op.Failed, "%s %s: %s", op.Backend, op.Operation, op.Error)
		assert.Equal(t, cfg.Iterations, op.Iterations)
		assert.Positive(t, op.Time.Mean)
	}
	for _, d := range res.Datasets {
		assert.Positive(t, d.DBSizeBytes, d.Backend)
	}
}
