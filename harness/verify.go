package harness

import (
	"context"
	"fmt"

	"github.com/weiihann/storebench/backend"
)

// Verify checks that a seeded store serves the benchmark workload: the
// target record exists, ReadAll returns enough records, and an update of
// the target's phone is visible to the next read.
func Verify(ctx context.Context, store backend.Store, cfg OperationConfig) error {
	if _, err := readExpected(ctx, store, cfg.TargetID); err != nil {
		return fmt.Errorf("read target: %w", err)
	}

	records, err := store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read all: %w", err)
	}
	if len(records) < cfg.MinRecords {
		return fmt.Errorf("%w: read %d records, want at least %d",
			backend.ErrIntegrityViolation, len(records), cfg.MinRecords)
	}

	if err := store.UpdateByID(ctx, cfg.TargetID, setUpdatedPhone); err != nil {
		return fmt.Errorf("update target: %w", err)
	}

	updated, err := readExpected(ctx, store, cfg.TargetID)
	if err != nil {
		return fmt.Errorf("read updated target: %w", err)
	}
	if updated.Phone != UpdatedPhone {
		return fmt.Errorf("%w: record %d phone = %q after update, want %q",
			backend.ErrIntegrityViolation, cfg.TargetID, updated.Phone, UpdatedPhone)
	}

	return nil
}
