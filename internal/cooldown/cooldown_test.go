package cooldown

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mavwarf/webshell/internal/paths"
)

const testApp = "https://gemini.google.com"

func newTest(t *testing.T, seconds int) (*Throttle, *time.Time) {
	t.Helper()
	th := newThrottle(filepath.Join(t.TempDir(), "cooldown.json"), testApp, seconds)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return now }
	return th, &now
}

func TestAllowDisabled(t *testing.T) {
	th, _ := newTest(t, 0)
	for i := 0; i < 3; i++ {
		if !th.Allow("offline") {
			t.Fatalf("call %d: expected allow with cooldown disabled", i)
		}
	}
	if _, err := os.Stat(th.path); !os.IsNotExist(err) {
		t.Errorf("disabled throttle should not write state, stat err = %v", err)
	}
}

func TestAllowWithinWindow(t *testing.T) {
	th, now := newTest(t, 300)
	if !th.Allow("offline") {
		t.Fatal("first call should be allowed")
	}
	*now = now.Add(299 * time.Second)
	if th.Allow("offline") {
		t.Error("expected cooldown within window")
	}
	*now = now.Add(2 * time.Second)
	if !th.Allow("offline") {
		t.Error("expected allow after window")
	}
}

func TestAllowDifferentKind(t *testing.T) {
	th, _ := newTest(t, 300)
	th.Allow("offline")
	if !th.Allow("online") {
		t.Error("kinds should not share a cooldown")
	}
}

func TestAllowPersistsAcrossInstances(t *testing.T) {
	th, now := newTest(t, 300)
	th.Allow("offline")

	again := newThrottle(th.path, testApp, 300)
	again.now = func() time.Time { return now.Add(10 * time.Second) }
	if again.Allow("offline") {
		t.Error("a new throttle on the same file should see the earlier record")
	}

	other := newThrottle(th.path, "https://example.com", 300)
	other.now = again.now
	if !other.Allow("offline") {
		t.Error("another app URL should not share the cooldown")
	}
}

func TestAllowCorruptState(t *testing.T) {
	th, _ := newTest(t, 300)
	os.WriteFile(th.path, []byte("{not json"), 0644)
	if !th.Allow("offline") {
		t.Error("corrupt state should fail open")
	}
	data, err := os.ReadFile(th.path)
	if err != nil {
		t.Fatal(err)
	}
	var state map[string]string
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("state not rewritten as JSON: %v", err)
	}
}

func TestAllowPrunesOldEntries(t *testing.T) {
	th, now := newTest(t, 300)
	stale := map[string]string{
		"https://old.example|offline": now.Add(-48 * time.Hour).Format(time.RFC3339),
		"garbage":                     "not a time",
	}
	data, _ := json.Marshal(stale)
	os.WriteFile(th.path, data, 0644)

	th.Allow("offline")

	data, _ = os.ReadFile(th.path)
	var state map[string]string
	json.Unmarshal(data, &state)
	if len(state) != 1 {
		t.Fatalf("state = %v, want only the fresh entry", state)
	}
	if _, ok := state[paths.CooldownKey(testApp, "offline")]; !ok {
		t.Errorf("fresh entry missing: %v", state)
	}
}
