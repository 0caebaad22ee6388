package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mavwarf/webshell/internal/paths"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) a SQLite database at path and performs
// a one-time import of a flat journal file found in the same directory.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: the window's event goroutines all write here.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	ddl := `
CREATE TABLE IF NOT EXISTS entries (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT    NOT NULL,
    session   TEXT    NOT NULL DEFAULT '',
    kind      INTEGER NOT NULL,
    subject   TEXT    NOT NULL DEFAULT '',
    url       TEXT    NOT NULL DEFAULT '',
    detail    TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_entries_session   ON entries(session);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}

	flat := filepath.Join(filepath.Dir(path), paths.JournalFileName)
	if _, err := os.Stat(flat); err == nil {
		if err := s.migrateFromFile(flat); err != nil {
			slog.Warn("journal migration failed", "component", "journal", "path", flat, "err", err)
		}
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Record(e Entry) error {
	return s.insert(s.db, e)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insert(x execer, e Entry) error {
	_, err := x.Exec(
		`INSERT INTO entries (timestamp, session, kind, subject, url, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		formatTime(e.Time), e.Session, int(e.Kind), e.Subject, e.URL, e.Detail,
	)
	return err
}

func (s *SQLiteStore) Entries(limit int) ([]Entry, error) {
	query := `SELECT timestamp, session, kind, subject, url, detail FROM entries ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var ts string
		var kind int
		var e Entry
		if err := rows.Scan(&ts, &e.Session, &kind, &e.Subject, &e.URL, &e.Detail); err != nil {
			return nil, err
		}
		t, err := time.Parse(timeLayout, ts)
		if err != nil {
			continue
		}
		e.Time = t
		e.Kind = Kind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Newest first from the query; callers want oldest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (s *SQLiteStore) Clean(days int) (int, error) {
	cutoff := formatTime(DayCutoff(days))
	res, err := s.db.Exec(`DELETE FROM entries WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM entries`)
	return err
}

func (s *SQLiteStore) Path() string {
	return s.path
}

// migrateFromFile imports a flat journal file and renames it to
// <name>.migrated on success.
func (s *SQLiteStore) migrateFromFile(flat string) error {
	data, err := os.ReadFile(flat)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, line := range strings.Split(string(data), "\n") {
		e, ok := ParseLine(line)
		if !ok {
			continue
		}
		if err := s.insert(tx, e); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return os.Rename(flat, flat+".migrated")
}
