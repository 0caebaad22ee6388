// Package navguard decides, for every URL the window or a link wants to go
// to, whether it loads in the window, opens in the default browser, or is
// dropped.
package navguard

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
)

// Guard classifies navigation attempts. It holds no mutable state and is
// safe for concurrent use.
type Guard struct {
	app     *url.URL
	appHost string // canonical host:port of app
	allow   Allowlist
	root    string
	log     *slog.Logger
}

// New returns a Guard for the remote application at appURL. root is the
// install directory that file: navigations are confined to.
func New(appURL string, allow Allowlist, root string) (*Guard, error) {
	u, err := parseWeb(appURL)
	if err != nil {
		return nil, fmt.Errorf("app url %q: %w", appURL, err)
	}
	return &Guard{
		app:     u,
		appHost: canonicalHost(u),
		allow:   allow,
		root:    root,
		log:     slog.Default().With("component", "navguard"),
	}, nil
}

// AppURL returns the remote application URL.
func (g *Guard) AppURL() string { return g.app.String() }

// Allowlist returns the allowlist the guard consults.
func (g *Guard) Allowlist() Allowlist { return g.allow }

// Root returns the directory file: navigations are confined to.
func (g *Guard) Root() string { return g.root }

// Classify decides what to do with a navigation to raw. It is a pure
// function of its inputs and the guard's configuration; malformed input
// always yields Deny.
func (g *Guard) Classify(raw string, origin Origin) Decision {
	if hasScheme(raw, "file") {
		if !confined(g.root, raw) {
			g.log.Warn("blocked local file outside app root", "url", raw, "origin", origin)
			return deny()
		}
		return allow()
	}

	if hasScheme(raw, "mailto") {
		g.log.Info("opening mailto externally", "url", raw, "origin", origin)
		return external(raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		g.log.Warn("invalid url, denying navigation", "url", raw, "origin", origin, "err", err)
		return deny()
	}
	if !isWeb(u.Scheme) {
		g.log.Warn("blocked unsafe protocol", "scheme", u.Scheme, "url", raw, "origin", origin)
		return deny()
	}
	if u.Hostname() == "" {
		g.log.Warn("invalid url, denying navigation", "url", raw, "origin", origin)
		return deny()
	}

	// window.open to the app itself reuses the existing window.
	if origin == NewWindow && canonicalHost(u) == g.appHost {
		return allow()
	}
	if g.allow.Contains(u.Hostname()) {
		return allow()
	}
	g.log.Info("navigation leaves allowlist, opening externally", "url", raw, "origin", origin)
	return external(raw)
}

// ClassifyExternalLink gates link clicks reported by the displayed content.
// Only http, https and mailto may be handed to the browser; anything else,
// including malformed URLs, is rejected.
func (g *Guard) ClassifyExternalLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		g.log.Warn("external link rejected: invalid url", "url", raw, "err", err)
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Hostname() == "" {
			g.log.Warn("external link rejected: missing host", "url", raw)
			return false
		}
		return true
	case "mailto":
		return true
	}
	g.log.Warn("external link rejected: scheme not allowed", "scheme", u.Scheme, "url", raw)
	return false
}

// SameApp reports whether raw has the app URL's scheme and hostname. The
// path, query and fragment are ignored.
func (g *Guard) SameApp(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, g.app.Scheme) &&
		strings.EqualFold(u.Hostname(), g.app.Hostname())
}

func isWeb(scheme string) bool {
	s := strings.ToLower(scheme)
	return s == "http" || s == "https"
}

func parseWeb(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !isWeb(u.Scheme) {
		return nil, fmt.Errorf("scheme %q is not http or https", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("missing host")
	}
	return u, nil
}

// canonicalHost lowercases the host and drops the scheme's default port,
// so "https://a.com:443" and "https://a.com" compare equal.
func canonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	switch {
	case port == "":
	case port == "80" && strings.EqualFold(u.Scheme, "http"):
		port = ""
	case port == "443" && strings.EqualFold(u.Scheme, "https"):
		port = ""
	}
	if port == "" {
		return host
	}
	return net.JoinHostPort(host, port)
}
