// Package toast shows desktop notifications through the platform's own
// tooling: notify-send, osascript or a PowerShell toast.
package toast

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Mavwarf/webshell/internal/icon"
	"github.com/Mavwarf/webshell/internal/paths"
)

const iconFileName = "icon.png"

// Show displays a desktop notification.
func Show(title, message string) error {
	name, args := command(title, message, iconPath())
	if name == "" {
		return fmt.Errorf("toast: unsupported platform")
	}
	cmd := exec.Command(name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("toast failed: %w\n%s", err, out)
	}
	return nil
}

// iconPath writes the app icon to DataDir()/icon.png if missing and
// returns its path, or "" when it cannot be written.
func iconPath() string {
	p, err := ensureIcon(filepath.Join(paths.DataDir(), iconFileName))
	if err != nil {
		return ""
	}
	return p
}

func ensureIcon(p string) (string, error) {
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	data, err := icon.PNG(64, false)
	if err != nil {
		return "", err
	}
	if err := paths.AtomicWrite(p, data); err != nil {
		return "", err
	}
	return p, nil
}
