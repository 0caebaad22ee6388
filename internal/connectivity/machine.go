// Package connectivity tracks whether the window shows the live remote
// application or the local offline page.
//
// The machine has two states. A network-class failure of the top-level
// document of the app host moves it to Offline; only an explicit retry
// moves it back. Browser online/offline reports never change the state:
// they are unreliable behind captive portals and during DNS failures, and
// acting on them causes reload loops.
package connectivity

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// State is the connectivity state of the window.
type State int

const (
	Online State = iota
	Offline
)

func (s State) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cause names the event behind a transition.
type Cause string

const (
	CauseLoadFailed Cause = "load-failed"
	CauseRetry      Cause = "retry"
)

// Effects are the outbound requests the machine makes of the window.
type Effects interface {
	// ShowOffline swaps the displayed document for the offline page.
	ShowOffline()
	// LoadApp (re)loads the remote application URL.
	LoadApp()
}

// Transition describes a state change, delivered to listeners after the
// effect has been requested.
type Transition struct {
	From  State
	To    State
	Cause Cause
	Code  int    // load-failed only
	URL   string // load-failed only
	At    time.Time
}

// Machine is the connectivity state machine for one window. It is not safe
// for concurrent use; callers serialize events.
type Machine struct {
	scheme   string
	hostname string
	state    State
	fx       Effects

	reported    bool // a network-status report has been received
	reportedNet bool // last reported navigator.onLine

	listeners []func(Transition)
	now       func() time.Time
	log       *slog.Logger
}

// NewMachine returns a machine in the Online state for the application at
// appURL.
func NewMachine(appURL string, fx Effects) (*Machine, error) {
	u, err := url.Parse(appURL)
	if err != nil {
		return nil, fmt.Errorf("app url %q: %w", appURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("app url %q: missing scheme or host", appURL)
	}
	return &Machine{
		scheme:   strings.ToLower(u.Scheme),
		hostname: strings.ToLower(u.Hostname()),
		state:    Online,
		fx:       fx,
		now:      time.Now,
		log:      slog.Default().With("component", "connectivity"),
	}, nil
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// LastReport returns the last browser-reported network status and whether
// any report has been received.
func (m *Machine) LastReport() (online, ok bool) { return m.reportedNet, m.reported }

// OnTransition registers fn to be called after every state change.
func (m *Machine) OnTransition(fn func(Transition)) {
	m.listeners = append(m.listeners, fn)
}

// LoadFailed handles a load failure reported by the window. It returns
// true when the failure moved the machine to Offline.
func (m *Machine) LoadFailed(code int, failedURL string, mainFrame bool) bool {
	if !mainFrame {
		m.log.Debug("ignoring sub-frame load failure", "code", code, "url", failedURL)
		return false
	}
	if !IsNetworkError(code) {
		m.log.Info("ignoring non-network load failure", "code", code, "url", failedURL)
		return false
	}
	if !m.isApp(failedURL) {
		m.log.Info("ignoring load failure outside app host", "code", code, "url", failedURL)
		return false
	}
	if m.state == Offline {
		// Already showing the placeholder.
		return false
	}

	m.log.Warn("app unreachable, showing offline page", "code", code, "url", failedURL)
	m.state = Offline
	m.fx.ShowOffline()
	m.emit(Transition{From: Online, To: Offline, Cause: CauseLoadFailed, Code: code, URL: failedURL})
	return true
}

// Retry handles an explicit user retry (offline page button or forced
// reload). It is the only way back to Online and always reloads the app.
func (m *Machine) Retry() {
	prev := m.state
	m.state = Online
	m.log.Info("retrying connection", "from", prev)
	m.fx.LoadApp()
	if prev != Online {
		m.emit(Transition{From: prev, To: Online, Cause: CauseRetry})
	}
}

// NetworkStatus records a browser-reported online/offline status. It never
// changes state and never reloads.
func (m *Machine) NetworkStatus(online bool) {
	changed := !m.reported || m.reportedNet != online
	m.reported = true
	m.reportedNet = online
	if changed {
		m.log.Info("network status reported", "online", online, "state", m.state)
	}
}

// isApp reports whether raw has the app's scheme and hostname. Path,
// query and fragment are ignored.
func (m *Machine) isApp(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, m.scheme) && strings.EqualFold(u.Hostname(), m.hostname)
}

func (m *Machine) emit(t Transition) {
	t.At = m.now()
	for _, fn := range m.listeners {
		fn(t)
	}
}
