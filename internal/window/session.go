package window

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/Mavwarf/webshell/internal/connectivity"
	"github.com/Mavwarf/webshell/internal/navguard"
	"github.com/Mavwarf/webshell/internal/procwait"
	"github.com/Mavwarf/webshell/internal/shell"
)

// session is one browser process with its app window.
type session struct {
	m        *Manager
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	router   *rod.HijackRouter
	requests *requestTable

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	about *rod.Page
	once  sync.Once
}

func (m *Manager) launch() (*session, error) {
	l := launcher.New().
		Headless(false).
		UserDataDir(m.opts.ProfileDir).
		Delete("no-startup-window").
		Delete("enable-automation").
		Set("app", m.opts.Pages.Loading)
	if m.opts.ChromePath != "" {
		l = l.Bin(m.opts.ChromePath)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := firstPage(browser)
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		m:        m,
		launcher: l,
		browser:  browser,
		page:     page,
		requests: newRequestTable(),
		ctx:      ctx,
		cancel:   cancel,
	}
	if err := s.wire(); err != nil {
		_ = s.close()
		return nil, err
	}
	if err := s.place(); err != nil {
		m.log.Debug("window placement failed", "err", err)
	}
	go s.watch(l.PID())
	m.log.Info("browser launched", "pid", l.PID(), "profile", m.opts.ProfileDir)
	return s, nil
}

// watch ends the session when the browser process goes away without
// a target event, for example after a crash.
func (s *session) watch(pid int) {
	err := procwait.Wait(s.ctx, pid)
	if s.ctx.Err() != nil {
		return
	}
	if err != nil {
		s.m.log.Debug("browser process not watchable", "pid", pid, "err", err)
		return
	}
	s.m.log.Warn("browser process exited", "pid", pid)
	s.m.ended(s)
}

// firstPage waits for the app window's page target.
func firstPage(b *rod.Browser) (*rod.Page, error) {
	deadline := time.Now().Add(launchTimeout)
	for time.Now().Before(deadline) {
		pages, err := b.Pages()
		if err == nil && len(pages) > 0 {
			return pages[0], nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil, errors.New("app window did not appear")
}

// wire installs the bridge, the navigation gate and the event listeners.
func (s *session) wire() error {
	if _, err := s.page.Expose(shell.BindingName, s.binding(s.m.handler.Dispatch)); err != nil {
		return fmt.Errorf("expose bridge: %w", err)
	}
	if _, err := s.page.EvalOnNewDocument(s.m.opts.Bridge); err != nil {
		return fmt.Errorf("inject bridge: %w", err)
	}

	s.router = s.page.HijackRequests()
	if err := s.router.Add("*", proto.NetworkResourceTypeDocument, s.gate); err != nil {
		return fmt.Errorf("hijack: %w", err)
	}
	go s.router.Run()

	if err := (proto.NetworkEnable{}).Call(s.page); err != nil {
		return fmt.Errorf("network enable: %w", err)
	}
	if err := (proto.TargetSetDiscoverTargets{Discover: true}).Call(s.browser); err != nil {
		return fmt.Errorf("discover targets: %w", err)
	}

	go s.page.Context(s.ctx).EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			if e.Type == proto.NetworkResourceTypeDocument {
				s.requests.add(string(e.RequestID), e.Request.URL, e.FrameID == s.page.FrameID)
			}
		},
		func(e *proto.NetworkLoadingFinished) {
			s.requests.take(string(e.RequestID))
		},
		func(e *proto.NetworkLoadingFailed) {
			r, ok := s.requests.take(string(e.RequestID))
			if !ok {
				return
			}
			s.m.handler.LoadFailed(connectivity.CodeFromErrorText(e.ErrorText), r.url, r.mainFrame)
		},
		func(e *proto.PageWindowOpen) {
			s.m.handler.Navigate(e.URL, navguard.NewWindow)
		},
		func(e *proto.PageFrameNavigated) {
			s.committed(e.Frame)
		},
	)()

	go s.browser.Context(s.ctx).EachEvent(
		func(e *proto.TargetTargetCreated) {
			// Windows opened by the content: the decision was already
			// made from PageWindowOpen.
			if e.TargetInfo.OpenerID == s.page.TargetID && string(e.TargetInfo.Type) == "page" {
				_, _ = proto.TargetCloseTarget{TargetID: e.TargetInfo.TargetID}.Call(s.browser)
			}
		},
		func(e *proto.TargetTargetDestroyed) {
			if e.TargetID == s.page.TargetID {
				s.m.ended(s)
				return
			}
			s.mu.Lock()
			if s.about != nil && e.TargetID == s.about.TargetID {
				s.about = nil
			}
			s.mu.Unlock()
		},
	)()
	return nil
}

// gate holds every document request until it is classified.
func (s *session) gate(h *rod.Hijack) {
	ev := h.Request.Event()
	if admit(s.m.handler, ev.Request.URL, ev.FrameID == s.page.FrameID) {
		h.ContinueRequest(&proto.FetchContinueRequest{})
		return
	}
	h.Response.Fail(refusedReason)
}

// committed returns to the app when a refused local document was loaded.
func (s *session) committed(f *proto.PageFrame) {
	if refusedCommit(s.m.handler, f) {
		s.m.log.Warn("refused local document left", "url", f.URL)
		s.m.LoadURL(s.m.opts.AppURL)
	}
}

// binding adapts a dispatcher to rod's exposed-function signature.
func (s *session) binding(dispatch func(shell.Message) (any, error)) func(gson.JSON) (interface{}, error) {
	return func(req gson.JSON) (interface{}, error) {
		msg, err := shell.DecodeMessage([]byte(req.JSON("", "")))
		if err != nil {
			return nil, err
		}
		return dispatch(msg)
	}
}

func (s *session) navigate(url string) error {
	return s.page.Timeout(navTimeout).Navigate(url)
}

func (m *Manager) navigationFailed(url string, err error) {
	var navErr *rod.NavigationError
	if errors.As(err, &navErr) {
		m.handler.LoadFailed(connectivity.CodeFromErrorText(navErr.Reason), url, true)
		return
	}
	m.log.Warn("navigate failed", "url", url, "err", err)
}

func (s *session) applyZoom(factor float64) error {
	_, err := s.page.Timeout(evalTimeout).Eval(
		`f => window.__webshellApplyZoom && window.__webshellApplyZoom(f)`, factor)
	return err
}

// place sizes the window to the configured share of the screen, centered.
func (s *session) place() error {
	res, err := s.page.Timeout(evalTimeout).Eval(`() => ({w: screen.availWidth, h: screen.availHeight})`)
	if err != nil {
		return err
	}
	b := centered(res.Value.Get("w").Int(), res.Value.Get("h").Int(), s.m.opts.WidthRatio, s.m.opts.HeightRatio)
	return s.page.SetWindow(&proto.BrowserBounds{
		Left:        intPtr(b.Left),
		Top:         intPtr(b.Top),
		Width:       intPtr(b.Width),
		Height:      intPtr(b.Height),
		WindowState: proto.BrowserWindowStateNormal,
	})
}

func (s *session) show() error {
	if err := s.page.SetWindow(&proto.BrowserBounds{WindowState: proto.BrowserWindowStateNormal}); err != nil {
		return err
	}
	_, err := s.page.Activate()
	return err
}

func (s *session) minimize() error {
	return s.page.SetWindow(&proto.BrowserBounds{WindowState: proto.BrowserWindowStateMinimized})
}

// openAbout shows the about page in a second window whose links always
// leave for the default browser.
func (s *session) openAbout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.about != nil {
		_, err := s.about.Activate()
		return err
	}

	p, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank", NewWindow: true})
	if err != nil {
		return err
	}
	if _, err := p.Expose(shell.BindingName, s.binding(aboutDispatch(s.m.handler))); err != nil {
		return err
	}
	if _, err := p.EvalOnNewDocument(s.m.opts.Bridge); err != nil {
		return err
	}
	router := p.HijackRequests()
	aboutURL := s.m.opts.Pages.About
	err = router.Add("*", proto.NetworkResourceTypeDocument, func(h *rod.Hijack) {
		ev := h.Request.Event()
		if admitAbout(s.m.handler, ev.Request.URL, aboutURL, ev.FrameID == p.FrameID) {
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		h.Response.Fail(refusedReason)
	})
	if err != nil {
		return err
	}
	go router.Run()

	if err := p.Timeout(navTimeout).Navigate(aboutURL); err != nil {
		return err
	}
	s.about = p
	return nil
}

// aboutDispatch narrows the bridge to what the about page needs.
func aboutDispatch(h Handler) func(shell.Message) (any, error) {
	return func(m shell.Message) (any, error) {
		switch m.Type {
		case "open-external", "get-zoom", "get-allowed-hosts", "log":
			return h.Dispatch(m)
		default:
			return nil, fmt.Errorf("bridge: %q not available on the about page", m.Type)
		}
	}
}

func (s *session) close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		if s.router != nil {
			_ = s.router.Stop()
		}
		err = s.browser.Close()
		s.launcher.Kill()
	})
	return err
}

func intPtr(v int) *int { return &v }
