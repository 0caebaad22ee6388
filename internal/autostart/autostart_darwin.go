//go:build darwin

package autostart

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mavwarf/webshell/internal/paths"
)

const label = "com.mavwarf." + Name

// Enable writes a LaunchAgent plist that runs e at login.
func Enable(e Entry) error {
	return enableAt(plistFile(), e)
}

// Disable removes the LaunchAgent plist.
func Disable() error {
	return disableAt(plistFile())
}

// Enabled reports whether the LaunchAgent plist exists.
func Enabled() bool {
	return enabledAt(plistFile())
}

func plistFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents", label+".plist")
}

func enableAt(path string, e Entry) error {
	if err := paths.AtomicWrite(path, []byte(plist(e))); err != nil {
		return fmt.Errorf("write launch agent: %w", err)
	}
	return nil
}

func disableAt(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove launch agent: %w", err)
	}
	return nil
}

func enabledAt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func plist(e Entry) string {
	var args strings.Builder
	for _, a := range e.argv() {
		args.WriteString("\t\t<string>")
		xml.EscapeText(&args, []byte(a))
		args.WriteString("</string>\n")
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
%s	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`, label, args.String())
}
