// Package journal keeps an append-only record of navigation decisions and
// connectivity transitions, tagged with the run session that produced them.
package journal

import (
	"fmt"
	"path/filepath"

	"github.com/Mavwarf/webshell/internal/config"
	"github.com/Mavwarf/webshell/internal/paths"
)

// Store abstracts journal storage: FileStore (flat text) or SQLiteStore.
type Store interface {
	Record(e Entry) error
	Entries(limit int) ([]Entry, error) // most recent limit entries, oldest first; 0 = all
	Clean(days int) (int, error)        // remove entries older than days, return removed count
	Clear() error
	Path() string
	Close() error
}

// Open returns the store for backend in dir, or nil when the journal is off.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case config.JournalOff:
		return nil, nil
	case config.JournalFile:
		return NewFileStore(filepath.Join(dir, paths.JournalFileName)), nil
	case config.JournalSQLite:
		return NewSQLiteStore(filepath.Join(dir, paths.JournalDBName))
	default:
		return nil, fmt.Errorf("journal: unknown backend %q", backend)
	}
}
