package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mavwarf/webshell/internal/config"
	"github.com/Mavwarf/webshell/internal/paths"
)

// Compile-time interface checks.
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

func tempFileStore(t *testing.T) Store {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), paths.JournalFileName))
}

func tempSQLiteStore(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), paths.JournalDBName))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var backends = []struct {
	name string
	open func(t *testing.T) Store
}{
	{"file", tempFileStore},
	{"sqlite", tempSQLiteStore},
}

func entryAt(ts time.Time, subject string) Entry {
	return Entry{Time: ts, Session: "s1", Kind: KindNavigation, Subject: subject, URL: "https://example.com/" + subject}
}

func TestStoreRecordAndEntries(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			now := time.Now().Truncate(time.Millisecond)
			for i, sub := range []string{"a", "b", "c"} {
				if err := s.Record(entryAt(now.Add(time.Duration(i)*time.Second), sub)); err != nil {
					t.Fatal(err)
				}
			}

			all, err := s.Entries(0)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 3 || all[0].Subject != "a" || all[2].Subject != "c" {
				t.Fatalf("Entries(0) = %+v", all)
			}
			if !all[0].Time.Equal(now) || all[0].URL != "https://example.com/a" || all[0].Session != "s1" {
				t.Errorf("first entry = %+v", all[0])
			}

			last, err := s.Entries(2)
			if err != nil {
				t.Fatal(err)
			}
			if len(last) != 2 || last[0].Subject != "b" || last[1].Subject != "c" {
				t.Errorf("Entries(2) = %+v", last)
			}
		})
	}
}

func TestStoreEntriesEmpty(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			got, err := b.open(t).Entries(0)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 0 {
				t.Errorf("Entries = %+v, want none", got)
			}
		})
	}
}

func TestStoreClean(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			old := time.Now().AddDate(0, 0, -10)
			if err := s.Record(entryAt(old, "old")); err != nil {
				t.Fatal(err)
			}
			if err := s.Record(entryAt(time.Now(), "new")); err != nil {
				t.Fatal(err)
			}

			n, err := s.Clean(3)
			if err != nil {
				t.Fatal(err)
			}
			if n != 1 {
				t.Errorf("Clean removed %d, want 1", n)
			}
			got, _ := s.Entries(0)
			if len(got) != 1 || got[0].Subject != "new" {
				t.Errorf("after Clean = %+v", got)
			}
		})
	}
}

func TestStoreClear(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			if err := s.Record(entryAt(time.Now(), "x")); err != nil {
				t.Fatal(err)
			}
			if err := s.Clear(); err != nil {
				t.Fatal(err)
			}
			if err := s.Clear(); err != nil {
				t.Errorf("second Clear: %v", err)
			}
			got, _ := s.Entries(0)
			if len(got) != 0 {
				t.Errorf("after Clear = %+v", got)
			}
		})
	}
}

func TestFileStoreSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "j.log")
	good := entryAt(time.Now(), "ok").Line()
	if err := os.WriteFile(path, []byte("junk\n"+good+"\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewFileStore(path).Entries(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Subject != "ok" {
		t.Errorf("Entries = %+v", got)
	}
}

func TestSQLiteStoreMigratesFlatFile(t *testing.T) {
	dir := t.TempDir()
	flat := NewFileStore(filepath.Join(dir, paths.JournalFileName))
	if err := flat.Record(entryAt(time.Now(), "before")); err != nil {
		t.Fatal(err)
	}

	s, err := NewSQLiteStore(filepath.Join(dir, paths.JournalDBName))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, err := s.Entries(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Subject != "before" {
		t.Errorf("migrated entries = %+v", got)
	}
	if _, err := os.Stat(flat.Path()); !os.IsNotExist(err) {
		t.Errorf("flat journal still present: %v", err)
	}
	if _, err := os.Stat(flat.Path() + ".migrated"); err != nil {
		t.Errorf("migrated file missing: %v", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.JournalOff, dir)
	if err != nil || s != nil {
		t.Errorf("Open(off) = %v, %v", s, err)
	}

	s, err = Open(config.JournalFile, dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != filepath.Join(dir, paths.JournalFileName) {
		t.Errorf("file path = %s", s.Path())
	}

	s, err = Open(config.JournalSQLite, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Path() != filepath.Join(dir, paths.JournalDBName) {
		t.Errorf("sqlite path = %s", s.Path())
	}

	if _, err := Open("postgres", dir); err == nil {
		t.Error("Open(postgres) succeeded")
	}
}
