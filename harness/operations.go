package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/workload"
)

// Operation names.
const (
	OpInsert   = "insert"
	OpReadByID = "read-by-id"
	OpReadAll  = "read-all"
	OpUpdate   = "update"
)

// Values written by the insert and update operations.
var (
	InsertedRecord = workload.Record{
		Username: "newuser",
		FullName: "New User",
		Phone:    "123-456-7890",
	}
	UpdatedPhone = "987-654-3210"
)

// Operation is one named call measured against a store.
type Operation struct {
	Name string
	Run  func(ctx context.Context, store backend.Store) error
}

// OperationConfig parameterizes the measured operations.
type OperationConfig struct {
	// TargetID is read and updated; seeding must have created it.
	TargetID int64
	// MinRecords is the least ReadAll may return.
	MinRecords int
}

// KnownOperations returns every operation name in run order.
func KnownOperations() []string {
	return []string{OpInsert, OpReadByID, OpReadAll, OpUpdate}
}

// Operations returns the named operations in the order given. An empty
// names list selects every known operation.
func Operations(cfg OperationConfig, names ...string) ([]Operation, error) {
	if len(names) == 0 {
		names = KnownOperations()
	}

	ops := make([]Operation, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if seen[name] {
			continue
		}
		seen[name] = true

		op, err := operation(cfg, name)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	return ops, nil
}

func operation(cfg OperationConfig, name string) (Operation, error) {
	switch name {
	case OpInsert:
		return Operation{Name: name, Run: func(ctx context.Context, store backend.Store) error {
			_, err := store.InsertOne(ctx, InsertedRecord)
			return err
		}}, nil

	case OpReadByID:
		return Operation{Name: name, Run: func(ctx context.Context, store backend.Store) error {
			_, err := readExpected(ctx, store, cfg.TargetID)
			return err
		}}, nil

	case OpReadAll:
		return Operation{Name: name, Run: func(ctx context.Context, store backend.Store) error {
			records, err := store.ReadAll(ctx)
			if err != nil {
				return err
			}
			if len(records) < cfg.MinRecords {
				return fmt.Errorf("%w: read %d records, want at least %d",
					backend.ErrIntegrityViolation, len(records), cfg.MinRecords)
			}
			return nil
		}}, nil

	case OpUpdate:
		return Operation{Name: name, Run: func(ctx context.Context, store backend.Store) error {
			return store.UpdateByID(ctx, cfg.TargetID, setUpdatedPhone)
		}}, nil

	default:
		return Operation{}, fmt.Errorf("unknown operation %q (known: %v)",
			name, KnownOperations())
	}
}

func setUpdatedPhone(r *workload.Record) {
	r.Phone = UpdatedPhone
}

// readExpected reads a record seeding guarantees to exist.
func readExpected(ctx context.Context, store backend.Store, id int64) (workload.Record, error) {
	record, found, err := store.ReadByID(ctx, id)
	if err != nil {
		return workload.Record{}, err
	}
	if !found {
		return workload.Record{}, fmt.Errorf("%w: record %d not found",
			backend.ErrIntegrityViolation, id)
	}
	return record, nil
}
