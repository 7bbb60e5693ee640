package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Register the modernc sqlite driver under the name "sqlite".
	_ "modernc.org/sqlite"
)

// SQLiteStore persists entries in a SQLite database. It satisfies Store with
// the same semantics as InMemoryStore.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the catalog database at path and applies the
// schema. WAL mode allows concurrent reads during writes.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: ping %q: %w", path, err)
	}

	const ddl = `
	CREATE TABLE IF NOT EXISTS schemas (
		program    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		version    TEXT NOT NULL,
		tools      INTEGER NOT NULL,
		raw        BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put inserts or replaces the entry for its program address.
func (s *SQLiteStore) Put(ctx context.Context, entry Entry) error {
	if entry.Program == "" {
		return ErrInvalidProgram
	}
	if len(entry.Raw) == 0 {
		return ErrInvalidEntry
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schemas (program, name, version, tools, raw, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(program) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			tools = excluded.tools,
			raw = excluded.raw,
			updated_at = excluded.updated_at`,
		entry.Program, entry.Name, entry.Version, entry.Tools, entry.Raw,
		entry.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("catalog: put %q: %w", entry.Program, err)
	}
	return nil
}

// Get returns the entry for a program address.
func (s *SQLiteStore) Get(ctx context.Context, program string) (Entry, error) {
	if program == "" {
		return Entry{}, ErrInvalidProgram
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT program, name, version, tools, raw, updated_at
		FROM schemas WHERE program = ?`, program)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("catalog: get %q: %w", program, err)
	}
	return entry, nil
}

// List returns all entries ordered by program address.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT program, name, version, tools, raw, updated_at
		FROM schemas ORDER BY program`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: list: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return entries, nil
}

// Delete removes the entry for a program address.
func (s *SQLiteStore) Delete(ctx context.Context, program string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schemas WHERE program = ?`, program)
	if err != nil {
		return fmt.Errorf("catalog: delete %q: %w", program, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog: delete %q: %w", program, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var entry Entry
	var updated string
	if err := row.Scan(&entry.Program, &entry.Name, &entry.Version, &entry.Tools, &entry.Raw, &updated); err != nil {
		return Entry{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		entry.UpdatedAt = ts
	}
	return entry, nil
}
