// Package cooldown throttles repeated desktop notifications across runs.
// State lives in a small JSON file in the data directory so a crash loop
// or a quick restart does not re-notify.
package cooldown

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Mavwarf/webshell/internal/paths"
)

// stateTTL bounds how long an entry is kept once written.
const stateTTL = 24 * time.Hour

// Throttle answers "may this notification fire now?" for one app URL.
type Throttle struct {
	mu     sync.Mutex
	path   string
	appURL string
	window time.Duration
	now    func() time.Time
}

// New returns a throttle persisted in the data directory. seconds <= 0
// disables throttling.
func New(appURL string, seconds int) *Throttle {
	return newThrottle(filepath.Join(paths.DataDir(), paths.CooldownFileName), appURL, seconds)
}

func newThrottle(path, appURL string, seconds int) *Throttle {
	return &Throttle{
		path:   path,
		appURL: appURL,
		window: time.Duration(seconds) * time.Second,
		now:    time.Now,
	}
}

// Allow reports whether kind is outside its cooldown window and, if so,
// records the current time for it. A missing or corrupt state file allows
// (fail-open).
func (t *Throttle) Allow(kind string) bool {
	if t.window <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.load()
	key := paths.CooldownKey(t.appURL, kind)
	now := t.now()
	if ts, ok := state[key]; ok {
		if last, err := time.Parse(time.RFC3339, ts); err == nil && now.Sub(last) < t.window {
			return false
		}
	}

	for k, v := range state {
		last, err := time.Parse(time.RFC3339, v)
		if err != nil || now.Sub(last) > stateTTL {
			delete(state, k)
		}
	}
	state[key] = now.UTC().Format(time.RFC3339)
	if err := t.save(state); err != nil {
		slog.Warn("cooldown state not saved", "component", "cooldown", "err", err)
	}
	return true
}

func (t *Throttle) load() map[string]string {
	state := make(map[string]string)
	data, err := os.ReadFile(t.path)
	if err != nil {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return make(map[string]string)
	}
	return state
}

func (t *Throttle) save(state map[string]string) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return paths.AtomicWrite(t.path, data)
}
