package journal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Mavwarf/webshell/internal/paths"
)

// FileStore implements Store using a flat text file, one line per entry.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a FileStore that reads and writes the given file.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Record(e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), paths.DirPerm); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, paths.FilePerm)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(file, e.Line()); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (f *FileStore) Entries(limit int) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.read()
	if err != nil {
		return nil, err
	}
	return tail(entries, limit), nil
}

func (f *FileStore) read() ([]Entry, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if e, ok := ParseLine(sc.Text()); ok {
			entries = append(entries, e)
		}
	}
	return entries, sc.Err()
}

func (f *FileStore) Clean(days int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil || len(entries) == 0 {
		return 0, err
	}
	cutoff := DayCutoff(days)
	var b strings.Builder
	kept := 0
	for _, e := range entries {
		if e.Time.Before(cutoff) {
			continue
		}
		b.WriteString(e.Line())
		b.WriteByte('\n')
		kept++
	}
	removed := len(entries) - kept
	if removed == 0 {
		return 0, nil
	}
	if kept == 0 {
		_ = os.Remove(f.path)
		return removed, nil
	}
	if err := paths.AtomicWrite(f.path, []byte(b.String())); err != nil {
		return 0, err
	}
	return removed, nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Close() error { return nil }
