//go:build linux

package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnableDisableLinux(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autostart", Name+".desktop")
	if enabledAt(path) {
		t.Fatal("enabled before Enable")
	}
	e := Entry{Exe: "/opt/web shell/webshell", Title: "Gemini", Hidden: true}
	if err := enableAt(path, e); err != nil {
		t.Fatal(err)
	}
	if !enabledAt(path) {
		t.Fatal("not enabled after Enable")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[Desktop Entry]", "Name=Gemini", `Exec="/opt/web shell/webshell" --hidden`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("desktop entry missing %q:\n%s", want, data)
		}
	}

	if err := disableAt(path); err != nil {
		t.Fatal(err)
	}
	if enabledAt(path) {
		t.Error("still enabled after Disable")
	}
	if err := disableAt(path); err != nil {
		t.Errorf("second Disable: %v", err)
	}
}

func TestDesktopEntryEscapesPercent(t *testing.T) {
	got := desktopEntry(Entry{Exe: "/bin/web%shell"})
	if !strings.Contains(got, "Exec=/bin/web%%shell") {
		t.Errorf("percent not escaped:\n%s", got)
	}
}

func TestDesktopFileHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	want := filepath.Join(dir, "autostart", Name+".desktop")
	if got := desktopFile(); got != want {
		t.Errorf("desktopFile() = %s, want %s", got, want)
	}
}
