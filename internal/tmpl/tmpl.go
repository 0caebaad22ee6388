// Package tmpl expands placeholders in user-configured notification text.
package tmpl

import "strings"

// Vars holds the values available to templates.
type Vars struct {
	Title  string // window title, e.g. "Gemini"
	AppURL string
	Host   string
	State  string // "online" or "offline"
}

// Expand replaces template placeholders in s with runtime values.
// {title} → title as-is, {Title} → title-cased, {host}, {url}, {state}
// and {State}.
func Expand(s string, v Vars) string {
	return strings.NewReplacer(
		"{Title}", TitleCase(v.Title),
		"{title}", v.Title,
		"{host}", v.Host,
		"{url}", v.AppURL,
		"{State}", TitleCase(v.State),
		"{state}", v.State,
	).Replace(s)
}

// TitleCase uppercases the first byte of s.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
