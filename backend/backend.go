// Package backend defines the contract every benchmarked datastore
// implements and the errors adapters report through it.
package backend

import (
	"context"
	"errors"

	"github.com/weiihann/storebench/workload"
)

var (
	// ErrStorageUnavailable means the backing file could not be created
	// or opened.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrWriteFailed means a single write was rejected by the backend or
	// targeted a record that does not exist.
	ErrWriteFailed = errors.New("write failed")

	// ErrIntegrityViolation means data that seeding guarantees was missing
	// or short at read time.
	ErrIntegrityViolation = errors.New("integrity violation")
)

// Driver opens stores of one backend kind.
type Driver interface {
	// Name identifies the backend in logs and reports.
	Name() string

	// Open creates or opens the store at path.
	Open(ctx context.Context, path string) (Store, error)

	// Files lists every on-disk file a store at path may own, including
	// side files such as journals.
	Files(path string) []string
}

// Store is an opened backend instance.
type Store interface {
	// BulkLoad inserts records in a single transaction.
	BulkLoad(ctx context.Context, records []workload.Record) error

	// InsertOne inserts a record and returns its assigned id.
	InsertOne(ctx context.Context, record workload.Record) (int64, error)

	// ReadByID returns the record with the given id. A missing id is
	// reported as found == false with a nil error.
	ReadByID(ctx context.Context, id int64) (record workload.Record, found bool, err error)

	// ReadAll returns every record ordered by id.
	ReadAll(ctx context.Context) ([]workload.Record, error)

	// UpdateByID reads the record, applies mutate and writes it back. The
	// id cannot be changed by mutate.
	UpdateByID(ctx context.Context, id int64, mutate func(*workload.Record)) error

	// Close releases every resource held by the store.
	Close() error
}
