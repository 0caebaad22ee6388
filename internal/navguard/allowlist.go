package navguard

import (
	"sort"
	"strings"
)

// DefaultHosts is the allowlist the content side falls back to when it
// cannot query the running shell. It must match the configured default.
var DefaultHosts = []string{
	"gemini.google.com",
	"accounts.google.com",
}

// Allowlist is an immutable set of hostnames that may be navigated to
// inside the managed window. Order is irrelevant; lookups ignore case.
type Allowlist struct {
	hosts map[string]struct{}
}

// NewAllowlist builds an Allowlist from hosts. Blank entries are dropped.
func NewAllowlist(hosts []string) Allowlist {
	a := Allowlist{hosts: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		a.hosts[h] = struct{}{}
	}
	return a
}

// Contains reports whether hostname (no port) is allowlisted.
func (a Allowlist) Contains(hostname string) bool {
	_, ok := a.hosts[strings.ToLower(hostname)]
	return ok
}

// Hosts returns the allowlisted hostnames in sorted order.
func (a Allowlist) Hosts() []string {
	out := make([]string, 0, len(a.hosts))
	for h := range a.hosts {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of hosts.
func (a Allowlist) Len() int { return len(a.hosts) }
