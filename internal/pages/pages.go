// Package pages renders the shell's local documents (offline placeholder,
// about page, startup page) and the bridge script injected into every
// document of the window.
package pages

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"path/filepath"
	texttemplate "text/template"

	"github.com/Mavwarf/webshell/internal/paths"
)

//go:embed assets/*.html assets/bridge.js
var assets embed.FS

const (
	OfflineFile = "offline.html"
	AboutFile   = "about.html"
	LoadingFile = "loading.html"
)

// Metadata is what the about page shows.
type Metadata struct {
	Title       string
	Version     string
	BuildDate   string
	Description string
	Homepage    string
	BugsURL     string
	Author      string
	AppURL      string
}

// Set holds file: URLs of the installed pages.
type Set struct {
	Root    string
	Offline string
	About   string
	Loading string
}

var htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(assets, "assets/*.html"))

// Install renders the local pages into root, replacing previous copies,
// and returns their URLs. root is the directory file: navigations are
// confined to.
func Install(root string, meta Metadata) (Set, error) {
	for _, name := range []string{OfflineFile, AboutFile, LoadingFile} {
		var buf bytes.Buffer
		if err := htmlTemplates.ExecuteTemplate(&buf, name, meta); err != nil {
			return Set{}, fmt.Errorf("render %s: %w", name, err)
		}
		if err := paths.AtomicWrite(filepath.Join(root, name), buf.Bytes()); err != nil {
			return Set{}, fmt.Errorf("install %s: %w", name, err)
		}
	}
	return Set{
		Root:    root,
		Offline: FileURL(filepath.Join(root, OfflineFile)),
		About:   FileURL(filepath.Join(root, AboutFile)),
		Loading: FileURL(filepath.Join(root, LoadingFile)),
	}, nil
}

// FileURL converts an absolute path into a file: URL.
func FileURL(p string) string {
	s := filepath.ToSlash(p)
	if len(s) == 0 || s[0] != '/' {
		s = "/" + s // Windows drive path
	}
	return (&url.URL{Scheme: "file", Path: s}).String()
}

var bridgeTemplate = texttemplate.Must(texttemplate.ParseFS(assets, "assets/bridge.js"))

// Bridge renders the injected script. binding is the name of the function
// the shell exposes on window; fallbackHosts is used when querying the
// shell for the allowlist fails.
func Bridge(binding string, fallbackHosts []string) (string, error) {
	hosts, err := json.Marshal(fallbackHosts)
	if err != nil {
		return "", err
	}
	name, err := json.Marshal(binding)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = bridgeTemplate.ExecuteTemplate(&buf, "bridge.js", struct {
		FallbackHosts string
		Binding       string
	}{string(hosts), string(name)})
	if err != nil {
		return "", fmt.Errorf("render bridge: %w", err)
	}
	return buf.String(), nil
}
