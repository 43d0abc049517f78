// Package store persists collected inventory tables in a SQLite database.
//
// The schema mirrors the collector tables with declared primary and foreign
// keys. Save replaces the content of every table in one transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/dvp2015/xpypact/internal/logging"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// ErrReadOnly is returned by mutating calls on a store opened read-only.
var ErrReadOnly = errors.New("store is read-only")

// schema contains the DDL. Using IF NOT EXISTS makes it safe to run repeatedly.
const schema = `
CREATE TABLE IF NOT EXISTS rundata (
    material_id        INTEGER NOT NULL,
    case_id            INTEGER NOT NULL,
    timestamp          TEXT NOT NULL,
    run_name           TEXT NOT NULL,
    flux_name          TEXT NOT NULL,
    dose_rate_type     TEXT NOT NULL CHECK (dose_rate_type IN ('', 'Point source', 'Plane source')),
    dose_rate_distance REAL NOT NULL,
    PRIMARY KEY (material_id, case_id)
);

CREATE TABLE IF NOT EXISTS time_step_times (
    time_step_number INTEGER PRIMARY KEY,
    elapsed_time     REAL NOT NULL,
    irradiation_time REAL NOT NULL,
    cooling_time     REAL NOT NULL,
    duration         REAL NOT NULL,
    with_flux        BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS timestep (
    material_id      INTEGER NOT NULL,
    case_id          INTEGER NOT NULL,
    time_step_number INTEGER NOT NULL,
    irradiation_time REAL NOT NULL,
    cooling_time     REAL NOT NULL,
    duration         REAL NOT NULL,
    elapsed_time     REAL NOT NULL,
    flux             REAL NOT NULL,
    atoms            REAL NOT NULL,
    activity         REAL NOT NULL,
    alpha_activity   REAL NOT NULL,
    beta_activity    REAL NOT NULL,
    gamma_activity   REAL NOT NULL,
    mass             REAL NOT NULL,
    heat             REAL NOT NULL,
    alpha_heat       REAL NOT NULL,
    beta_heat        REAL NOT NULL,
    gamma_heat       REAL NOT NULL,
    ingestion        REAL NOT NULL,
    inhalation       REAL NOT NULL,
    dose             REAL NOT NULL,
    PRIMARY KEY (material_id, case_id, time_step_number),
    FOREIGN KEY (material_id, case_id) REFERENCES rundata (material_id, case_id)
);

CREATE TABLE IF NOT EXISTS nuclide (
    zai         INTEGER PRIMARY KEY,
    element     TEXT NOT NULL,
    mass_number INTEGER NOT NULL,
    state       INTEGER NOT NULL,
    half_life   REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS timestep_nuclide (
    material_id      INTEGER NOT NULL,
    case_id          INTEGER NOT NULL,
    time_step_number INTEGER NOT NULL,
    zai              INTEGER NOT NULL REFERENCES nuclide (zai),
    atoms            REAL NOT NULL,
    grams            REAL NOT NULL,
    activity         REAL NOT NULL,
    alpha_activity   REAL NOT NULL,
    beta_activity    REAL NOT NULL,
    gamma_activity   REAL NOT NULL,
    heat             REAL NOT NULL,
    alpha_heat       REAL NOT NULL,
    beta_heat        REAL NOT NULL,
    gamma_heat       REAL NOT NULL,
    dose             REAL NOT NULL,
    ingestion        REAL NOT NULL,
    inhalation       REAL NOT NULL,
    PRIMARY KEY (material_id, case_id, time_step_number, zai),
    FOREIGN KEY (material_id, case_id, time_step_number)
        REFERENCES timestep (material_id, case_id, time_step_number)
);

CREATE TABLE IF NOT EXISTS gbins (
    g        INTEGER PRIMARY KEY,
    boundary REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS timestep_gamma (
    material_id      INTEGER NOT NULL,
    case_id          INTEGER NOT NULL,
    time_step_number INTEGER NOT NULL,
    g                INTEGER NOT NULL REFERENCES gbins (g),
    rate             REAL NOT NULL,
    PRIMARY KEY (material_id, case_id, time_step_number, g),
    FOREIGN KEY (material_id, case_id, time_step_number)
        REFERENCES timestep (material_id, case_id, time_step_number)
);
`

// coreTables are the tables HasSchema requires.
var coreTables = []string{"rundata", "timestep", "nuclide", "timestep_nuclide", "timestep_gamma"}

// dropOrder lists all the tables, dependents first.
var dropOrder = []string{
	"timestep_nuclide",
	"timestep_gamma",
	"gbins",
	"timestep",
	"nuclide",
	"time_step_times",
	"rundata",
}

// indices are unique indexes over the table keys. They are redundant with the
// primary keys and serve only to validate data loaded by other tools.
var indices = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS rundata_pk ON rundata (material_id, case_id)",
	"CREATE UNIQUE INDEX IF NOT EXISTS time_step_times_pk ON time_step_times (time_step_number)",
	"CREATE UNIQUE INDEX IF NOT EXISTS timestep_pk ON timestep (material_id, case_id, time_step_number)",
	"CREATE UNIQUE INDEX IF NOT EXISTS timestep_nuclide_pk ON timestep_nuclide (material_id, case_id, time_step_number, zai)",
	"CREATE UNIQUE INDEX IF NOT EXISTS timestep_gamma_pk ON timestep_gamma (material_id, case_id, time_step_number, g)",
}

type options struct {
	readOnly bool
	log      *logging.Logger
}

// Option configures Open.
type Option func(*options)

// WithReadOnly rejects schema changes and saves with ErrReadOnly.
func WithReadOnly() Option {
	return func(o *options) { o.readOnly = true }
}

// WithLogger sets the logger for save progress.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// Store is a SQLite database holding collected tables.
type Store struct {
	db       *sql.DB
	readOnly bool
	log      *logging.Logger
}

// Open opens (or creates) the SQLite database at path, or a private
// in-memory one for MemoryPath. It does not create the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// One connection: SQLite has a single writer, and an in-memory database
	// lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	if o.readOnly {
		pragmas = append(pragmas, "PRAGMA query_only=ON")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	return &Store{db: db, readOnly: o.readOnly, log: o.log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReadOnly reports whether the store rejects writes.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

func (s *Store) checkWritable(action string) error {
	if s.readOnly {
		return fmt.Errorf("store: %s: %w", action, ErrReadOnly)
	}
	return nil
}

// tableNames returns the names of the existing tables.
func (s *Store) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("store: list tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate tables: %w", err)
	}
	return names, nil
}

// HasSchema reports whether all the core tables exist.
func (s *Store) HasSchema(ctx context.Context) (bool, error) {
	names, err := s.tableNames(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range coreTables {
		if !slices.Contains(names, t) {
			return false, nil
		}
	}
	return true, nil
}

// CreateSchema creates the missing tables.
func (s *Store) CreateSchema(ctx context.Context) error {
	if err := s.checkWritable("create schema"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// DropSchema drops all the tables.
func (s *Store) DropSchema(ctx context.Context) error {
	if err := s.checkWritable("drop schema"); err != nil {
		return err
	}
	for _, t := range dropOrder {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+t); err != nil {
			return fmt.Errorf("store: drop %s: %w", t, err)
		}
	}
	return nil
}

// CreateIndices adds unique indexes over the table keys. It fails if the
// stored data has duplicate keys.
func (s *Store) CreateIndices(ctx context.Context) error {
	if err := s.checkWritable("create indices"); err != nil {
		return err
	}
	for _, q := range indices {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("store: create indices: %w", err)
		}
	}
	return nil
}

// TableInfo is a table name with its row count.
type TableInfo struct {
	Name string
	Rows int64
}

// TablesInfo returns the existing tables with their row counts.
func (s *Store) TablesInfo(ctx context.Context) ([]TableInfo, error) {
	names, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]TableInfo, 0, len(names))
	for _, name := range names {
		var n int64
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM "`+name+`"`).Scan(&n); err != nil {
			return nil, fmt.Errorf("store: count %s: %w", name, err)
		}
		infos = append(infos, TableInfo{Name: name, Rows: n})
	}
	return infos, nil
}
