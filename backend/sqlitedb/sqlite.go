// Package sqlitedb implements the SQL backend on top of SQLite.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/weiihann/storebench/backend"
	"github.com/weiihann/storebench/workload"
	_ "modernc.org/sqlite"
)

// Name is the backend name reported by the driver.
const Name = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone TEXT NOT NULL
);
`

const (
	insertQuery     = `INSERT INTO users (username, full_name, phone) VALUES (?, ?, ?)`
	selectByIDQuery = `SELECT id, username, full_name, phone FROM users WHERE id = ?`
	selectAllQuery  = `SELECT id, username, full_name, phone FROM users ORDER BY id`
	updateQuery     = `UPDATE users SET username = ?, full_name = ?, phone = ? WHERE id = ?`
)

type options struct {
	journalMode string
	synchronous string
	cacheSize   int
	busyTimeout int
}

// Modifier customizes how stores are opened.
type Modifier func(*options)

// WithJournalMode sets PRAGMA journal_mode (e.g. WAL, DELETE, MEMORY).
func WithJournalMode(mode string) Modifier {
	return func(o *options) {
		o.journalMode = mode
	}
}

// WithSynchronous sets PRAGMA synchronous (e.g. OFF, NORMAL, FULL).
func WithSynchronous(mode string) Modifier {
	return func(o *options) {
		o.synchronous = mode
	}
}

// WithCacheSize sets PRAGMA cache_size. Negative values are KiB, positive
// values are pages.
func WithCacheSize(size int) Modifier {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds.
func WithBusyTimeout(ms int) Modifier {
	return func(o *options) {
		o.busyTimeout = ms
	}
}

// Driver opens SQLite stores.
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
	return []string{path, path + "-wal", path + "-shm", path + "-journal"}
}

// Open implements backend.Driver.
func (d *Driver) Open(ctx context.Context, path string) (backend.Store, error) {
	s, err := Open(ctx, path, d.mods...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// dsn encodes pragmas as _pragma query parameters understood by the
// modernc driver.
func (o options) dsn(path string) string {
	params := url.Values{}
	if o.journalMode != "" {
		params.Add("_pragma", "journal_mode("+o.journalMode+")")
	}
	if o.synchronous != "" {
		params.Add("_pragma", "synchronous("+o.synchronous+")")
	}
	if o.cacheSize != 0 {
		params.Add("_pragma", "cache_size("+strconv.Itoa(o.cacheSize)+")")
	}
	if o.busyTimeout != 0 {
		params.Add("_pragma", "busy_timeout("+strconv.Itoa(o.busyTimeout)+")")
	}
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

// Store is a SQLite backed backend.Store.
type Store struct {
	db         *sql.DB
	insert     *sql.Stmt
	selectByID *sql.Stmt
	update     *sql.Stmt
}

// Open opens the database at path, creates the schema and prepares the
// statements used by every operation.
func Open(ctx context.Context, path string, mods ...Modifier) (*Store, error) {
	opts := options{}
	for _, m := range mods {
		m(&opts)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", backend.ErrStorageUnavailable)
	}

	db, err := sql.Open("sqlite", opts.dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", backend.ErrStorageUnavailable, path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema in %s: %w", backend.ErrStorageUnavailable, path, err)
	}

	s := &Store{db: db}
	if err := s.prepare(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: prepare statements for %s: %w", backend.ErrStorageUnavailable, path, err)
	}
	return s, nil
}

func (s *Store) prepare(ctx context.Context) error {
	var err error
	if s.insert, err = s.db.PrepareContext(ctx, insertQuery); err != nil {
		return err
	}
	if s.selectByID, err = s.db.PrepareContext(ctx, selectByIDQuery); err != nil {
		return err
	}
	if s.update, err = s.db.PrepareContext(ctx, updateQuery); err != nil {
		return err
	}
	return nil
}

// BulkLoad implements backend.Store.
func (s *Store) BulkLoad(ctx context.Context, records []workload.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin bulk load: %w", backend.ErrWriteFailed, err)
	}
	defer tx.Rollback()

	stmt := tx.StmtContext(ctx, s.insert)
	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Username, r.FullName, r.Phone); err != nil {
			return fmt.Errorf("%w: bulk insert record %d: %w", backend.ErrWriteFailed, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit bulk load: %w", backend.ErrWriteFailed, err)
	}
	return nil
}

// InsertOne implements backend.Store.
func (s *Store) InsertOne(ctx context.Context, record workload.Record) (int64, error) {
	result, err := s.insert.ExecContext(ctx, record.Username, record.FullName, record.Phone)
	if err != nil {
		return 0, fmt.Errorf("%w: insert: %w", backend.ErrWriteFailed, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: insert id: %w", backend.ErrWriteFailed, err)
	}
	return id, nil
}

// ReadByID implements backend.Store.
func (s *Store) ReadByID(ctx context.Context, id int64) (workload.Record, bool, error) {
	record, err := scanRecord(s.selectByID.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return workload.Record{}, false, nil
	}
	if err != nil {
		return workload.Record{}, false, fmt.Errorf("read %d: %w", id, err)
	}
	return record, true, nil
}

// ReadAll implements backend.Store.
func (s *Store) ReadAll(ctx context.Context) ([]workload.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectAllQuery)
	if err != nil {
		return nil, fmt.Errorf("read all: %w", err)
	}
	defer rows.Close()

	var records []workload.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("read all: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read all: %w", err)
	}
	return records, nil
}

// UpdateByID implements backend.Store.
func (s *Store) UpdateByID(ctx context.Context, id int64, mutate func(*workload.Record)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin update %d: %w", backend.ErrWriteFailed, id, err)
	}
	defer tx.Rollback()

	record, err := scanRecord(tx.StmtContext(ctx, s.selectByID).QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: update %d: record not found", backend.ErrWriteFailed, id)
	}
	if err != nil {
		return fmt.Errorf("%w: update %d: %w", backend.ErrWriteFailed, id, err)
	}

	mutate(&record)

	if _, err := tx.StmtContext(ctx, s.update).ExecContext(
		ctx, record.Username, record.FullName, record.Phone, id,
	); err != nil {
		return fmt.Errorf("%w: update %d: %w", backend.ErrWriteFailed, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit update %d: %w", backend.ErrWriteFailed, id, err)
	}
	return nil
}

// Close implements backend.Store.
func (s *Store) Close() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{s.insert, s.selectByID, s.update} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (workload.Record, error) {
	var r workload.Record
	err := row.Scan(&r.ID, &r.Username, &r.FullName, &r.Phone)
	return r, err
}
