package navguard

import (
	"errors"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

var errNotLocal = errors.New("not a local file URL")

// confined reports whether the file: URL raw resolves to a path inside
// root. Anything that cannot be resolved is treated as outside.
func confined(root, raw string) bool {
	p, err := localPath(raw)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	base, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		// Different volume on Windows.
		return false
	}
	if filepath.IsAbs(rel) {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// localPath decodes a file: URL into a filesystem path. Percent-encoded
// separators and dot segments are decoded here and resolved by the
// caller's Abs/Rel, so "%2e%2e%2f" cannot slip past the check.
func localPath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(u.Scheme, "file") || u.Opaque != "" {
		return "", errNotLocal
	}
	// A remote host names another filesystem root (UNC share).
	if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
		return "", errNotLocal
	}
	p := u.Path
	if p == "" {
		return "", errNotLocal
	}
	if runtime.GOOS == "windows" && len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:] // "/C:/dir" -> "C:/dir"
	}
	return filepath.FromSlash(p), nil
}

// hasScheme reports whether raw starts with scheme followed by a colon,
// ignoring case.
func hasScheme(raw, scheme string) bool {
	if len(raw) <= len(scheme) || raw[len(scheme)] != ':' {
		return false
	}
	return strings.EqualFold(raw[:len(scheme)], scheme)
}

// IsFileURL reports whether raw uses the file scheme.
func IsFileURL(raw string) bool {
	return hasScheme(raw, "file")
}
