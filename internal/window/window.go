// Package window drives the managed Chromium app window over the DevTools
// protocol. Every main-frame document request is held until the Handler
// has classified it, so no navigation commits before a decision.
package window

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Mavwarf/webshell/internal/navguard"
	"github.com/Mavwarf/webshell/internal/pages"
	"github.com/Mavwarf/webshell/internal/shell"
)

const (
	launchTimeout = 30 * time.Second
	navTimeout    = 60 * time.Second
	evalTimeout   = 5 * time.Second
)

// Handler receives the window's inbound events. *shell.Shell implements it.
type Handler interface {
	Navigate(url string, origin navguard.Origin) bool
	OpenExternalLink(url string) bool
	LoadFailed(code int, url string, mainFrame bool)
	Dispatch(m shell.Message) (any, error)
}

// Options configures the window.
type Options struct {
	AppURL      string
	Title       string
	Pages       pages.Set
	Bridge      string // script injected into every document
	ChromePath  string // empty: let the launcher find or fetch a browser
	ProfileDir  string
	WidthRatio  float64
	HeightRatio float64
	StartHidden bool
}

// Manager owns the browser session. The user closing the window ends the
// session; the next Show launches a new one at the last URL.
type Manager struct {
	opts    Options
	handler Handler

	nav chan string

	mu        sync.Mutex
	cur       *session
	lastURL   string
	visible   bool
	closed    bool
	listeners []func(visible bool)

	wg  sync.WaitGroup
	log *slog.Logger
}

// New returns a Manager. Nothing is launched until Start.
func New(opts Options) *Manager {
	return &Manager{
		opts:    opts,
		nav:     make(chan string, 1),
		lastURL: opts.AppURL,
		log:     slog.Default().With("component", "window"),
	}
}

// OnVisibility registers fn to be called when the window is shown or
// hidden. Register listeners before Start.
func (m *Manager) OnVisibility(fn func(visible bool)) {
	m.listeners = append(m.listeners, fn)
}

// Start launches the browser and begins serving navigations for h.
func (m *Manager) Start(h Handler) error {
	m.handler = h
	m.wg.Add(1)
	go m.navigator()

	s, err := m.launch()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cur = s
	m.mu.Unlock()
	if m.opts.StartHidden {
		m.Hide()
	} else {
		m.setVisible(true)
	}
	return nil
}

// LoadURL displays url. Navigations are applied in order by a single
// goroutine; a pending navigation is replaced by a newer one.
func (m *Manager) LoadURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastURL = url
	if !m.closed {
		m.enqueueLocked(url)
	}
}

// ShowOffline displays the local offline page.
func (m *Manager) ShowOffline() {
	m.LoadURL(m.opts.Pages.Offline)
}

// SetZoom applies factor to the current document.
func (m *Manager) SetZoom(factor float64) {
	s := m.current()
	if s == nil {
		return
	}
	if err := s.applyZoom(factor); err != nil {
		m.log.Debug("apply zoom failed", "err", err)
	}
}

// Visible reports whether the window is shown.
func (m *Manager) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Show restores and focuses the window, relaunching it if the user closed
// it.
func (m *Manager) Show() {
	s, err := m.ensureSession()
	if err != nil {
		m.log.Error("relaunch failed", "err", err)
		return
	}
	if err := s.show(); err != nil {
		m.log.Warn("show failed", "err", err)
	}
	m.setVisible(true)
}

// Hide minimizes the window. The DevTools protocol has no way to remove
// a window from the taskbar.
func (m *Manager) Hide() {
	if s := m.current(); s != nil {
		if err := s.minimize(); err != nil {
			m.log.Warn("hide failed", "err", err)
		}
	}
	m.setVisible(false)
}

// Toggle shows a hidden window and hides a visible one.
func (m *Manager) Toggle() {
	if m.Visible() {
		m.Hide()
	} else {
		m.Show()
	}
}

// ShowAbout opens the about page in its own window.
func (m *Manager) ShowAbout() {
	s, err := m.ensureSession()
	if err != nil {
		m.log.Error("relaunch failed", "err", err)
		return
	}
	if err := s.openAbout(); err != nil {
		m.log.Error("about window failed", "err", err)
	}
}

// Close shuts the browser down. The Manager cannot be restarted.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	s := m.cur
	m.cur = nil
	close(m.nav)
	m.mu.Unlock()

	m.wg.Wait()
	if s != nil {
		return s.close()
	}
	return nil
}

func (m *Manager) current() *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

func (m *Manager) ensureSession() (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("window closed")
	}
	if m.cur != nil {
		return m.cur, nil
	}
	s, err := m.launch()
	if err != nil {
		return nil, err
	}
	m.cur = s
	m.enqueueLocked(m.lastURL)
	return s, nil
}

// enqueueLocked replaces any pending navigation with url. Only holders
// of mu send on nav, so the send after the drain cannot block.
func (m *Manager) enqueueLocked(url string) {
	select {
	case <-m.nav:
	default:
	}
	select {
	case m.nav <- url:
	default:
	}
}

// ended is called by a session when its page target is destroyed.
func (m *Manager) ended(s *session) {
	m.mu.Lock()
	if m.cur != s {
		m.mu.Unlock()
		return
	}
	m.cur = nil
	m.mu.Unlock()

	m.log.Info("window session ended; staying in tray")
	go func() {
		if err := s.close(); err != nil {
			m.log.Debug("browser shutdown", "err", err)
		}
	}()
	m.setVisible(false)
}

func (m *Manager) setVisible(v bool) {
	m.mu.Lock()
	changed := m.visible != v
	m.visible = v
	m.mu.Unlock()
	if !changed {
		return
	}
	for _, fn := range m.listeners {
		fn(v)
	}
}

func (m *Manager) navigator() {
	defer m.wg.Done()
	for url := range m.nav {
		s := m.current()
		if s == nil {
			continue
		}
		if err := s.navigate(url); err != nil {
			m.navigationFailed(url, err)
		}
	}
}
