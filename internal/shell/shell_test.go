package shell

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Mavwarf/webshell/internal/connectivity"
	"github.com/Mavwarf/webshell/internal/navguard"
	"github.com/Mavwarf/webshell/internal/zoom"
)

const appURL = "https://gemini.google.com"

type fakeWindow struct {
	loads   []string
	offline int
	zooms   []float64
}

func (w *fakeWindow) LoadURL(url string)     { w.loads = append(w.loads, url) }
func (w *fakeWindow) ShowOffline()           { w.offline++ }
func (w *fakeWindow) SetZoom(factor float64) { w.zooms = append(w.zooms, factor) }

type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Open(url string) error {
	o.opened = append(o.opened, url)
	return o.err
}

func newTestShell(t *testing.T) (*Shell, *fakeWindow, *fakeOpener) {
	t.Helper()
	g, err := navguard.New(appURL, navguard.NewAllowlist(navguard.DefaultHosts), t.TempDir())
	if err != nil {
		t.Fatalf("navguard.New: %v", err)
	}
	w := &fakeWindow{}
	o := &fakeOpener{}
	s, err := New(g, w, o, zoom.New(-8, 9))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, w, o
}

func TestNavigateInPlace(t *testing.T) {
	tests := []struct {
		url     string
		proceed bool
		opened  bool
	}{
		{"https://gemini.google.com/app", true, false},
		{"https://accounts.google.com/signin", true, false},
		{"https://example.com/", false, true},
		{"mailto:someone@example.com", false, true},
		{"javascript:alert(1)", false, false},
		{"http://", false, false},
	}
	for _, tt := range tests {
		s, w, o := newTestShell(t)
		if got := s.Navigate(tt.url, navguard.InPlace); got != tt.proceed {
			t.Errorf("Navigate(%q) = %v, want %v", tt.url, got, tt.proceed)
		}
		if (len(o.opened) == 1) != tt.opened {
			t.Errorf("Navigate(%q) opened %v", tt.url, o.opened)
		}
		if len(w.loads) != 0 {
			t.Errorf("Navigate(%q) loaded %v in window", tt.url, w.loads)
		}
	}
}

func TestNavigateNewWindowLoadsInExistingWindow(t *testing.T) {
	s, w, o := newTestShell(t)
	target := "https://gemini.google.com/app/123"
	if s.Navigate(target, navguard.NewWindow) {
		t.Fatal("NewWindow navigation must never proceed")
	}
	if !reflect.DeepEqual(w.loads, []string{target}) {
		t.Errorf("loads = %v, want [%s]", w.loads, target)
	}
	if len(o.opened) != 0 {
		t.Errorf("opened = %v, want none", o.opened)
	}
}

func TestNavigateNewWindowExternal(t *testing.T) {
	s, w, o := newTestShell(t)
	if s.Navigate("https://example.com/x", navguard.NewWindow) {
		t.Fatal("NewWindow navigation must never proceed")
	}
	if len(w.loads) != 0 {
		t.Errorf("loads = %v, want none", w.loads)
	}
	if !reflect.DeepEqual(o.opened, []string{"https://example.com/x"}) {
		t.Errorf("opened = %v", o.opened)
	}
}

func TestNavigateNotifiesListeners(t *testing.T) {
	s, _, _ := newTestShell(t)
	var got []NavigationEvent
	s.OnNavigation(func(ev NavigationEvent) { got = append(got, ev) })

	s.Navigate("https://example.com/", navguard.InPlace)
	s.Navigate("ftp://x", navguard.NewWindow)

	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[0].Decision.Action != navguard.OpenExternally || got[0].Origin != navguard.InPlace {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].Decision.Action != navguard.Deny || got[1].Origin != navguard.NewWindow {
		t.Errorf("second event = %+v", got[1])
	}
}

func TestOpenerErrorIsNotFatal(t *testing.T) {
	s, _, o := newTestShell(t)
	o.err = errors.New("no browser")
	if s.Navigate("https://example.com/", navguard.InPlace) {
		t.Error("external navigation proceeded")
	}
	if !s.OpenExternalLink("https://example.com/") {
		t.Error("OpenExternalLink should report the hand-off even when the opener fails")
	}
}

func TestOpenExternalLink(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/", true},
		{"http://example.com/", true},
		{"mailto:a@b.c", true},
		{"file:///etc/passwd", false},
		{"javascript:alert(1)", false},
		{"https://", false},
		{"%%%", false},
	}
	for _, tt := range tests {
		s, _, o := newTestShell(t)
		if got := s.OpenExternalLink(tt.url); got != tt.want {
			t.Errorf("OpenExternalLink(%q) = %v, want %v", tt.url, got, tt.want)
		}
		if tt.want != (len(o.opened) == 1) {
			t.Errorf("OpenExternalLink(%q) opened %v", tt.url, o.opened)
		}
	}
}

func TestLoadFailedShowsOfflineOnce(t *testing.T) {
	s, w, _ := newTestShell(t)
	var transitions []connectivity.Transition
	s.OnTransition(func(tr connectivity.Transition) { transitions = append(transitions, tr) })

	s.LoadFailed(connectivity.ErrInternetDisconnected, appURL+"/app", true)
	s.LoadFailed(connectivity.ErrInternetDisconnected, appURL+"/app", true)

	if w.offline != 1 {
		t.Errorf("ShowOffline called %d times, want 1", w.offline)
	}
	if s.State() != connectivity.Offline {
		t.Errorf("state = %s, want offline", s.State())
	}
	if len(transitions) != 1 || transitions[0].To != connectivity.Offline {
		t.Errorf("transitions = %+v", transitions)
	}
}

func TestLoadFailedIgnoresIrrelevantFailures(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		url       string
		mainFrame bool
	}{
		{"sub-frame", connectivity.ErrInternetDisconnected, appURL, false},
		{"other host", connectivity.ErrInternetDisconnected, "https://example.com", true},
		{"aborted", connectivity.ErrAborted, appURL, true},
		{"blocked", connectivity.ErrBlockedByClient, appURL, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, w, _ := newTestShell(t)
			s.LoadFailed(tt.code, tt.url, tt.mainFrame)
			if w.offline != 0 || s.State() != connectivity.Online {
				t.Errorf("offline=%d state=%s, want untouched", w.offline, s.State())
			}
		})
	}
}

func TestRetryReloadsApp(t *testing.T) {
	s, w, _ := newTestShell(t)
	s.LoadFailed(connectivity.ErrNameNotResolved, appURL, true)
	s.Retry()
	if s.State() != connectivity.Online {
		t.Errorf("state = %s, want online", s.State())
	}
	if !reflect.DeepEqual(w.loads, []string{appURL}) {
		t.Errorf("loads = %v, want [%s]", w.loads, appURL)
	}

	// Retry while online still reloads.
	s.Retry()
	if len(w.loads) != 2 {
		t.Errorf("loads = %v, want two reloads", w.loads)
	}
}

func TestNetworkStatusNeverChangesState(t *testing.T) {
	s, w, _ := newTestShell(t)
	s.NetworkStatus(false)
	if s.State() != connectivity.Online || w.offline != 0 {
		t.Errorf("offline report changed state")
	}
	s.LoadFailed(connectivity.ErrInternetDisconnected, appURL, true)
	s.NetworkStatus(true)
	if s.State() != connectivity.Offline || len(w.loads) != 0 {
		t.Errorf("online report reloaded the app")
	}
}

func TestStartLoadsApp(t *testing.T) {
	s, w, _ := newTestShell(t)
	s.Start()
	if !reflect.DeepEqual(w.loads, []string{appURL}) {
		t.Errorf("loads = %v", w.loads)
	}
}

func TestAllowedHosts(t *testing.T) {
	s, _, _ := newTestShell(t)
	got := s.AllowedHosts()
	want := navguard.NewAllowlist(navguard.DefaultHosts).Hosts()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllowedHosts = %v, want %v", got, want)
	}
}

func TestZoomAppliesOnlyOnChange(t *testing.T) {
	s, w, _ := newTestShell(t)
	s.ZoomReset()
	if len(w.zooms) != 0 {
		t.Errorf("reset at level 0 applied zoom %v", w.zooms)
	}
	if f := s.ZoomIn(); f <= 1 {
		t.Errorf("ZoomIn factor = %v, want > 1", f)
	}
	for i := 0; i < 20; i++ {
		s.ZoomIn()
	}
	if len(w.zooms) != 9 {
		t.Errorf("applied %d zooms, want 9 (clamped at max)", len(w.zooms))
	}
	if f := s.ZoomReset(); f != 1 {
		t.Errorf("ZoomReset factor = %v, want 1", f)
	}
	if s.ZoomFactor() != 1 {
		t.Errorf("ZoomFactor = %v, want 1", s.ZoomFactor())
	}
}

func TestSetGuard(t *testing.T) {
	s, _, o := newTestShell(t)
	if s.Navigate("https://example.com/", navguard.InPlace) {
		t.Fatal("example.com should not be in the default allowlist")
	}

	hosts := append([]string{"example.com"}, navguard.DefaultHosts...)
	g, err := navguard.New(appURL, navguard.NewAllowlist(hosts), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetGuard(g); err != nil {
		t.Fatalf("SetGuard: %v", err)
	}
	if !s.Navigate("https://example.com/", navguard.InPlace) {
		t.Error("example.com should be allowed after SetGuard")
	}
	if len(o.opened) != 1 {
		t.Errorf("opened = %v, want only the first attempt", o.opened)
	}

	other, err := navguard.New("https://chat.example.com", navguard.NewAllowlist([]string{"chat.example.com"}), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetGuard(other); err == nil {
		t.Error("SetGuard with a different app URL should fail")
	}
	if s.AppURL() != g.AppURL() {
		t.Errorf("AppURL = %q after rejected SetGuard", s.AppURL())
	}
}

func TestLogFromPageRateLimited(t *testing.T) {
	s, _, _ := newTestShell(t)
	for i := 0; i < pageLogBurst+10; i++ {
		s.logFromPage("spam")
	}
	if got := s.dropped.Load(); got < 10 {
		t.Errorf("dropped = %d, want at least 10", got)
	}
}
