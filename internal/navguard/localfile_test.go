package navguard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fileURL converts an absolute path into a file: URL.
func fileURL(p string) string {
	s := filepath.ToSlash(p)
	if !strings.HasPrefix(s, "/") {
		s = "/" + s // Windows drive path
	}
	return "file://" + s
}

func guardAt(t *testing.T, root string) *Guard {
	t.Helper()
	g, err := New("https://gemini.google.com", NewAllowlist(DefaultHosts), root)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestClassifyLocalFileInsideRoot(t *testing.T) {
	root := t.TempDir()
	g := guardAt(t, root)

	urls := []string{
		fileURL(filepath.Join(root, "offline.html")),
		fileURL(filepath.Join(root, "sub", "about.html")),
		fileURL(root) + "/",
		fileURL(root) + "/sub/../offline.html",
		"FILE://" + strings.TrimPrefix(fileURL(filepath.Join(root, "offline.html")), "file://"),
		"file://localhost" + strings.TrimPrefix(fileURL(filepath.Join(root, "offline.html")), "file://"),
	}
	for _, u := range urls {
		if got := g.Classify(u, InPlace); got.Action != AllowInApp {
			t.Errorf("Classify(%q) = %s, want allow", u, got)
		}
	}
}

func TestClassifyLocalFileEscapesAreDenied(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "app")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	g := guardAt(t, root)
	base := fileURL(root)

	urls := []string{
		base + "/../secret.txt",
		base + "/sub/../../secret.txt",
		base + "/..",
		base + "/%2e%2e/secret.txt",
		base + "/%2E%2E%2Fsecret.txt",
		base + "/..%2fsecret.txt",
		base + "/../app-sibling/x.html",
		fileURL(filepath.Join(parent, "secret.txt")),
		"file:///etc/passwd",
		"file://evil-host/share/file.html",
		"file:relative/path.html",
		"file:///%zz",
		"file://",
	}
	for _, origin := range []Origin{InPlace, NewWindow} {
		for _, u := range urls {
			if got := g.Classify(u, origin); got.Action != Deny {
				t.Errorf("Classify(%q, %s) = %s, want deny", u, origin, got)
			}
		}
	}
}

func TestClassifyLocalFileSiblingPrefixDenied(t *testing.T) {
	// "/x/app-data" shares a string prefix with "/x/app" but is outside it.
	parent := t.TempDir()
	root := filepath.Join(parent, "app")
	g := guardAt(t, root)
	u := fileURL(filepath.Join(parent, "app-data", "x.html"))
	if got := g.Classify(u, InPlace); got.Action != Deny {
		t.Errorf("Classify(%q) = %s, want deny", u, got)
	}
}

func TestHasScheme(t *testing.T) {
	tests := []struct {
		raw, scheme string
		want        bool
	}{
		{"file:///x", "file", true},
		{"FILE:///x", "file", true},
		{"files:///x", "file", false},
		{"file", "file", false},
		{"mailto:a@b.c", "mailto", true},
		{"xmailto:a@b.c", "mailto", false},
		{"", "file", false},
	}
	for _, tt := range tests {
		if got := hasScheme(tt.raw, tt.scheme); got != tt.want {
			t.Errorf("hasScheme(%q, %q) = %v, want %v", tt.raw, tt.scheme, got, tt.want)
		}
	}
}

func TestIsFileURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"file:///tmp/x", true},
		{"FILE:///tmp/x", true},
		{"file:", true},
		{"https://file/x", false},
		{"files:///x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsFileURL(tt.in); got != tt.want {
			t.Errorf("IsFileURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
