//go:build linux

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mavwarf/webshell/internal/paths"
)

// Enable writes an XDG autostart entry for e.
func Enable(e Entry) error {
	return enableAt(desktopFile(), e)
}

// Disable removes the XDG autostart entry.
func Disable() error {
	return disableAt(desktopFile())
}

// Enabled reports whether the XDG autostart entry exists.
func Enabled() bool {
	return enabledAt(desktopFile())
}

func desktopFile() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "autostart", Name+".desktop")
}

func enableAt(path string, e Entry) error {
	if err := paths.AtomicWrite(path, []byte(desktopEntry(e))); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

func disableAt(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove autostart entry: %w", err)
	}
	return nil
}

func enabledAt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func desktopEntry(e Entry) string {
	argv := e.argv()
	for i, a := range argv {
		// Exec keys escape % as %%.
		argv[i] = strings.ReplaceAll(a, "%", "%%")
	}
	return strings.Join([]string{
		"[Desktop Entry]",
		"Type=Application",
		"Name=" + e.Title,
		"Exec=" + commandLine(argv),
		"Terminal=false",
		"X-GNOME-Autostart-enabled=true",
		"",
	}, "\n")
}
