package journal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a journal entry.
type Kind int

const (
	KindSession Kind = iota
	KindNavigation
	KindTransition
)

var kindNames = []string{"session", "navigation", "transition"}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func parseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Entry is one journal record. Subject is the decision for a navigation
// ("allow", "deny", "external"), the new state for a transition and the
// event name for a session entry.
type Entry struct {
	Time    time.Time
	Session string
	Kind    Kind
	Subject string
	URL     string
	Detail  string
}

// timeLayout is fixed-width and always UTC so stored timestamps sort as
// strings.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

// Line renders e as a single journal line.
func (e Entry) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  session=%s  kind=%s  subject=%s",
		formatTime(e.Time), e.Session, e.Kind, e.Subject)
	if e.URL != "" {
		fmt.Fprintf(&b, "  url=%q", e.URL)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, "  detail=%q", e.Detail)
	}
	return b.String()
}

// ParseLine parses a line written by Line. Malformed lines report false.
func ParseLine(line string) (Entry, bool) {
	ts, rest, ok := strings.Cut(strings.TrimSpace(line), "  ")
	if !ok {
		return Entry{}, false
	}
	t, err := time.Parse(timeLayout, ts)
	if err != nil {
		return Entry{}, false
	}
	e := Entry{Time: t}
	fields, ok := parseFields(rest)
	if !ok {
		return Entry{}, false
	}
	if e.Kind, ok = parseKind(fields["kind"]); !ok {
		return Entry{}, false
	}
	e.Session = fields["session"]
	e.Subject = fields["subject"]
	e.URL = fields["url"]
	e.Detail = fields["detail"]
	return e, true
}

// parseFields splits key=value pairs separated by spaces. Quoted values
// use Go string syntax.
func parseFields(s string) (map[string]string, bool) {
	fields := make(map[string]string)
	for {
		s = strings.TrimLeft(s, " ")
		if s == "" {
			return fields, true
		}
		key, rest, ok := strings.Cut(s, "=")
		if !ok || key == "" || strings.Contains(key, " ") {
			return nil, false
		}
		if strings.HasPrefix(rest, `"`) {
			q, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, false
			}
			v, err := strconv.Unquote(q)
			if err != nil {
				return nil, false
			}
			fields[key] = v
			s = rest[len(q):]
			continue
		}
		v, tail, _ := strings.Cut(rest, " ")
		fields[key] = v
		s = tail
	}
}

// DayCutoff returns midnight (local time) of the day that is days-1 days
// before today, so days=1 keeps only today.
func DayCutoff(days int) time.Time {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(days - 1))
}

// tail returns the last limit entries, or all of them when limit <= 0.
func tail(entries []Entry, limit int) []Entry {
	if limit <= 0 || len(entries) <= limit {
		return entries
	}
	return entries[len(entries)-limit:]
}
