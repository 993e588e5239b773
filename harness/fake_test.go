package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/workload"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memDriver opens memStores and remembers them.
type memDriver struct {
	name    string
	openErr error
	setup   func(*memStore)
	opened  []*memStore
}

func (d *memDriver) Name() string { return d.name }

func (d *memDriver) Files(path string) []string { return []string{path} }

func (d *memDriver) Open(_ context.Context, _ string) (backend.Store, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}

	s := &memStore{calls: make(map[string]int)}
	if d.setup != nil {
		d.setup(s)
	}
	d.opened = append(d.opened, s)

	return s, nil
}

// memStore is an in-memory backend.Store with failure hooks.
type memStore struct {
	records []workload.Record
	calls   map[string]int
	closes  int

	// failInsertAt fails the n-th InsertOne call (1-based) when positive.
	failInsertAt int
	// slowFirstRead sleeps in the first ReadByID call.
	slowFirstRead time.Duration
	// shortReadAll drops all but one record from ReadAll.
	shortReadAll bool
}

func (s *memStore) BulkLoad(_ context.Context, records []workload.Record) error {
	s.calls["bulk-load"]++
	for _, r := range records {
		r.ID = int64(len(s.records) + 1)
		s.records = append(s.records, r)
	}
	return nil
}

func (s *memStore) InsertOne(_ context.Context, r workload.Record) (int64, error) {
	s.calls[OpInsert]++
	if s.failInsertAt > 0 && s.calls[OpInsert] == s.failInsertAt {
		return 0, fmt.Errorf("%w: injected", backend.ErrWriteFailed)
	}
	r.ID = int64(len(s.records) + 1)
	s.records = append(s.records, r)
	return r.ID, nil
}

func (s *memStore) ReadByID(_ context.Context, id int64) (workload.Record, bool, error) {
	s.calls[OpReadByID]++
	if s.calls[OpReadByID] == 1 && s.slowFirstRead > 0 {
		time.Sleep(s.slowFirstRead)
	}
	if id < 1 || id > int64(len(s.records)) {
		return workload.Record{}, false, nil
	}
	return s.records[id-1], true, nil
}

func (s *memStore) ReadAll(_ context.Context) ([]workload.Record, error) {
	s.calls[OpReadAll]++
	if s.shortReadAll {
		return s.records[:min(1, len(s.records))], nil
	}
	return append([]workload.Record(nil), s.records...), nil
}

func (s *memStore) UpdateByID(_ context.Context, id int64, mutate func(*workload.Record)) error {
	s.calls[OpUpdate]++
	if id < 1 || id > int64(len(s.records)) {
		return fmt.Errorf("%w: update %d: record not found", backend.ErrWriteFailed, id)
	}
	r := s.records[id-1]
	mutate(&r)
	r.ID = id
	s.records[id-1] = r
	return nil
}

func (s *memStore) Close() error {
	s.closes++
	return nil
}

func (s *memStore) measuredCalls() int {
	return s.calls[OpInsert] + s.calls[OpReadByID] + s.calls[OpReadAll] + s.calls[OpUpdate]
}
