// Package shell is the application context of the desktop shell: it owns
// the navigation guard, the connectivity machine and the window, and turns
// every inbound event into a decision before any effect is applied.
package shell

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mavwarf/webshell/internal/connectivity"
	"github.com/Mavwarf/webshell/internal/navguard"
	"github.com/Mavwarf/webshell/internal/zoom"
	"golang.org/x/time/rate"
)

// Window is the managed window as seen by the shell.
type Window interface {
	// LoadURL displays url in the window.
	LoadURL(url string)
	// ShowOffline displays the local offline page.
	ShowOffline()
	// SetZoom applies a zoom factor to the displayed document.
	SetZoom(factor float64)
}

// Opener hands URLs to the operating system's default browser.
type Opener interface {
	Open(url string) error
}

// NavigationEvent reports one classified navigation attempt.
type NavigationEvent struct {
	URL      string
	Origin   navguard.Origin
	Decision navguard.Decision
	At       time.Time
}

// Shell serializes stateful events with a mutex. Classification is pure
// and takes no lock, so a navigation started by an effect (LoadApp) can be
// classified while that effect is still running.
type Shell struct {
	guard  atomic.Pointer[navguard.Guard]
	win    Window
	opener Opener
	appURL string

	pageLog *rate.Limiter
	dropped atomic.Int64

	mu      sync.Mutex
	machine *connectivity.Machine
	zoom    *zoom.Level

	navListeners []func(NavigationEvent)
	now          func() time.Time
	log          *slog.Logger
}

// New wires a shell for guard's application URL.
func New(guard *navguard.Guard, win Window, opener Opener, z *zoom.Level) (*Shell, error) {
	if z == nil {
		z = &zoom.Level{}
	}
	s := &Shell{
		win:     win,
		opener:  opener,
		appURL:  guard.AppURL(),
		pageLog: rate.NewLimiter(pageLogRate, pageLogBurst),
		zoom:    z,
		now:     time.Now,
		log:     slog.Default().With("component", "shell"),
	}
	s.guard.Store(guard)
	m, err := connectivity.NewMachine(guard.AppURL(), effects{s})
	if err != nil {
		return nil, fmt.Errorf("connectivity: %w", err)
	}
	s.machine = m
	return s, nil
}

// Page log messages are forwarded to the log at this sustained rate.
const (
	pageLogRate  = rate.Limit(5)
	pageLogBurst = 20
)

// SetGuard replaces the navigation guard, for example after the allowlist
// was edited. The application URL cannot change while running.
func (s *Shell) SetGuard(g *navguard.Guard) error {
	if g.AppURL() != s.appURL {
		return fmt.Errorf("app URL changed from %s to %s: restart required", s.appURL, g.AppURL())
	}
	s.guard.Store(g)
	s.log.Info("allowlist updated", "hosts", g.Allowlist().Hosts())
	return nil
}

// effects adapts the window to connectivity.Effects.
type effects struct{ s *Shell }

func (e effects) ShowOffline() { e.s.win.ShowOffline() }
func (e effects) LoadApp()     { e.s.win.LoadURL(e.s.appURL) }

// AppURL returns the remote application URL.
func (s *Shell) AppURL() string { return s.appURL }

// OnNavigation registers fn to be called for every classified navigation.
// Register listeners before events start flowing.
func (s *Shell) OnNavigation(fn func(NavigationEvent)) {
	s.navListeners = append(s.navListeners, fn)
}

// OnTransition registers fn to be called after every connectivity change.
// Register listeners before events start flowing.
func (s *Shell) OnTransition(fn func(connectivity.Transition)) {
	s.machine.OnTransition(fn)
}

// Start displays the remote application.
func (s *Shell) Start() {
	s.win.LoadURL(s.appURL)
}

// Navigate classifies a navigation attempt and applies the decision. It
// reports whether the caller may let the pending navigation proceed; on
// false the caller cancels it. A NewWindow origin always yields false: the
// caller never opens a window, and an allowed target has already been
// loaded into the existing window.
func (s *Shell) Navigate(url string, origin navguard.Origin) bool {
	d := s.guard.Load().Classify(url, origin)
	s.notifyNavigation(NavigationEvent{URL: url, Origin: origin, Decision: d, At: s.now()})

	switch d.Action {
	case navguard.AllowInApp:
		if origin == navguard.NewWindow {
			s.win.LoadURL(url)
			return false
		}
		return true
	case navguard.OpenExternally:
		s.openExternal(d.URL)
	}
	return false
}

// OpenExternalLink handles a link click surfaced by the displayed content.
// It reports whether the URL was handed to the browser.
func (s *Shell) OpenExternalLink(url string) bool {
	if !s.guard.Load().ClassifyExternalLink(url) {
		return false
	}
	s.openExternal(url)
	return true
}

// LoadFailed feeds a load failure into the connectivity machine.
func (s *Shell) LoadFailed(code int, url string, mainFrame bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.LoadFailed(code, url, mainFrame)
}

// Retry is the explicit user retry: back to Online and reload the app.
func (s *Shell) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Retry()
}

// NetworkStatus records a renderer-reported network status.
func (s *Shell) NetworkStatus(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.NetworkStatus(online)
}

// State returns the connectivity state.
func (s *Shell) State() connectivity.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// AllowedHosts answers the content side's allowlist query.
func (s *Shell) AllowedHosts() []string {
	return s.guard.Load().Allowlist().Hosts()
}

// ZoomIn, ZoomOut and ZoomReset change the zoom level and apply it.
func (s *Shell) ZoomIn() float64    { return s.changeZoom((*zoom.Level).In) }
func (s *Shell) ZoomOut() float64   { return s.changeZoom((*zoom.Level).Out) }
func (s *Shell) ZoomReset() float64 { return s.changeZoom((*zoom.Level).Reset) }

// ZoomFactor returns the current zoom factor.
func (s *Shell) ZoomFactor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom.Factor()
}

func (s *Shell) changeZoom(step func(*zoom.Level) bool) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step(s.zoom) {
		s.log.Debug("zoom changed", "level", s.zoom.Current())
		s.win.SetZoom(s.zoom.Factor())
	}
	return s.zoom.Factor()
}

func (s *Shell) openExternal(url string) {
	if s.opener == nil {
		return
	}
	if err := s.opener.Open(url); err != nil {
		s.log.Error("open in browser failed", "url", url, "err", err)
	}
}

// logFromPage forwards a log line from the displayed content, dropping lines
// beyond the rate limit.
func (s *Shell) logFromPage(msg string) {
	if !s.pageLog.Allow() {
		s.dropped.Add(1)
		return
	}
	if n := s.dropped.Swap(0); n > 0 {
		s.log.Warn("page log lines dropped", "count", n)
	}
	s.log.Info("log from page", "message", msg)
}

func (s *Shell) notifyNavigation(ev NavigationEvent) {
	for _, fn := range s.navListeners {
		fn(ev)
	}
}
