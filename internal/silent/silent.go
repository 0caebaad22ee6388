// Package silent pauses desktop notifications for a while. The pause is
// stored in the data directory so the CLI and the running app share it.
package silent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Mavwarf/webshell/internal/paths"
)

type state struct {
	Until string `json:"silent_until"`
}

// Active reports whether notifications are paused. A missing, unreadable
// or corrupt state file means not paused (fail-open).
func Active() bool {
	_, ok := Until()
	return ok
}

// Until returns the end of the pause and true if one is active.
func Until() (time.Time, bool) {
	return until(statePath(), time.Now())
}

// Enable pauses notifications for d from now.
func Enable(d time.Duration) (time.Time, error) {
	return enable(statePath(), time.Now(), d)
}

// Disable ends the pause.
func Disable() error {
	return disable(statePath())
}

func until(path string, now time.Time) (time.Time, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, false
	}
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s.Until)
	if err != nil || !now.Before(t) {
		return time.Time{}, false
	}
	return t, true
}

func enable(path string, now time.Time, d time.Duration) (time.Time, error) {
	if d <= 0 {
		return time.Time{}, fmt.Errorf("silent: duration must be positive, got %s", d)
	}
	end := now.Add(d).Truncate(time.Second)
	data, err := json.MarshalIndent(state{Until: end.Format(time.RFC3339)}, "", "  ")
	if err != nil {
		return time.Time{}, fmt.Errorf("silent: marshal: %w", err)
	}
	if err := paths.AtomicWrite(path, data); err != nil {
		return time.Time{}, fmt.Errorf("silent: write: %w", err)
	}
	return end, nil
}

func disable(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("silent: remove %s: %w", path, err)
	}
	return nil
}

func statePath() string {
	return filepath.Join(paths.DataDir(), paths.SilentFileName)
}
