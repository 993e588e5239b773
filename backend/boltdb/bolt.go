// Package boltdb implements the document backend on top of bbolt. Records
// are stored as JSON documents keyed by a big-endian sequence id.
package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/workload"
	bolt "go.etcd.io/bbolt"
)

// Name is the backend name reported by the driver.
const Name = "bolt"

var usersBucket = []byte("users")

type options struct {
	compression Compression
	noSync      bool
	timeout     time.Duration
}

// Modifier customizes how stores are opened.
type Modifier func(*options)

// WithCompression sets the compression applied to new documents.
func WithCompression(c Compression) Modifier {
	return func(o *options) {
		o.compression = c
	}
}

// WithNoSync skips fsync on commit.
func WithNoSync(noSync bool) Modifier {
	return func(o *options) {
		o.noSync = noSync
	}
}

// WithTimeout sets how long Open waits for the file lock.
func WithTimeout(timeout time.Duration) Modifier {
	return func(o *options) {
		o.timeout = timeout
	}
}

// Driver opens bbolt stores.
type Driver struct {
	mods []Modifier
}

// NewDriver returns a Driver applying mods to every store it opens.
func NewDriver(mods ...Modifier) *Driver {
	return &Driver{mods: mods}
}

// Name implements backend.Driver.
func (d *Driver) Name() string {
	return Name
}

// Files implements backend.Driver.
func (d *Driver) Files(path string) []string {
	return []string{path}
}

// Open implements backend.Driver.
func (d *Driver) Open(ctx context.Context, path string) (backend.Store, error) {
	s, err := Open(ctx, path, d.mods...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Store is a bbolt backed backend.Store.
type Store struct {
	db    *bolt.DB
	codec *codec
}

// Open opens the database at path and makes sure the users bucket exists.
func Open(_ context.Context, path string, mods ...Modifier) (*Store, error) {
	opts := options{timeout: time.Second}
	for _, m := range mods {
		m(&opts)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: bolt path is required", backend.ErrStorageUnavailable)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: opts.timeout,
		NoSync:  opts.noSync,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", backend.ErrStorageUnavailable, path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create bucket in %s: %w", backend.ErrStorageUnavailable, path, err)
	}

	cd, err := newCodec(opts.compression)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, codec: cd}, nil
}

// BulkLoad implements backend.Store.
func (s *Store) BulkLoad(_ context.Context, records []workload.Record) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(usersBucket)
		// Sequence keys only ever append.
		bucket.FillPercent = 1.0

		for _, r := range records {
			if _, err := s.put(bucket, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: bulk load: %w", backend.ErrWriteFailed, err)
	}
	return nil
}

// InsertOne implements backend.Store.
func (s *Store) InsertOne(_ context.Context, record workload.Record) (int64, error) {
	var id uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		id, err = s.put(tx.Bucket(usersBucket), record)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: insert: %w", backend.ErrWriteFailed, err)
	}
	return int64(id), nil
}

func (s *Store) put(bucket *bolt.Bucket, r workload.Record) (uint64, error) {
	id, err := bucket.NextSequence()
	if err != nil {
		return 0, err
	}
	value, err := s.codec.encode(toDocument(id, r))
	if err != nil {
		return 0, err
	}
	return id, bucket.Put(encodeKey(id), value)
}

// ReadByID implements backend.Store.
func (s *Store) ReadByID(_ context.Context, id int64) (workload.Record, bool, error) {
	if id <= 0 {
		return workload.Record{}, false, nil
	}

	var (
		doc   document
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(usersBucket).Get(encodeKey(uint64(id)))
		if value == nil {
			return nil
		}
		found = true

		var err error
		doc, err = s.codec.decode(value)
		return err
	})
	if err != nil {
		return workload.Record{}, false, fmt.Errorf("read %d: %w", id, err)
	}
	if !found {
		return workload.Record{}, false, nil
	}
	return doc.record(), true, nil
}

// ReadAll implements backend.Store.
func (s *Store) ReadAll(_ context.Context) ([]workload.Record, error) {
	var records []workload.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(usersBucket).ForEach(func(_, value []byte) error {
			doc, err := s.codec.decode(value)
			if err != nil {
				return err
			}
			records = append(records, doc.record())
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read all: %w", err)
	}
	return records, nil
}

// UpdateByID implements backend.Store.
func (s *Store) UpdateByID(_ context.Context, id int64, mutate func(*workload.Record)) error {
	if id <= 0 {
		return fmt.Errorf("%w: update %d: record not found", backend.ErrWriteFailed, id)
	}

	key := encodeKey(uint64(id))
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(usersBucket)
		value := bucket.Get(key)
		if value == nil {
			return os.ErrNotExist
		}

		doc, err := s.codec.decode(value)
		if err != nil {
			return err
		}

		record := doc.record()
		mutate(&record)

		updated, err := s.codec.encode(toDocument(doc.ID, record))
		if err != nil {
			return err
		}
		return bucket.Put(key, updated)
	})
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: update %d: record not found", backend.ErrWriteFailed, id)
	}
	if err != nil {
		return fmt.Errorf("%w: update %d: %w", backend.ErrWriteFailed, id, err)
	}
	return nil
}

// Close implements backend.Store.
func (s *Store) Close() error {
	s.codec.close()
	return s.db.Close()
}

func encodeKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}
