package paths

import (
	"os"
	"path/filepath"
)

const (
	AppDirName       = "webshell"
	ConfigFileName   = "webshell.yaml"
	LogFileName      = "webshell.log"
	JournalFileName  = "journal.log"
	JournalDBName    = "journal.db"
	ProfileDirName   = "profile"
	PagesDirName     = "pages"
	SocketFileName   = "webshell.sock"
	CooldownFileName = "cooldown.json"
	SilentFileName   = "silent.json"
	DirPerm          = 0755
	FilePerm         = 0644
)

// CooldownKey builds the cooldown state key for a notification kind,
// scoped to the app URL so several configs can share one data dir.
func CooldownKey(appURL, kind string) string {
	return appURL + "|" + kind
}

// AtomicWrite writes data to path via a temporary file + rename to avoid
// partial writes. The parent directory is created if needed.
func AtomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// DataDir returns the platform-specific data directory for webshell:
//   - Windows: %APPDATA%\webshell
//   - Unix:    ~/.config/webshell
//
// Falls back to os.TempDir()/webshell if neither is available.
func DataDir() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppDirName)
	}
	return filepath.Join(home, ".config", AppDirName)
}

// PagesDir is the install root for the local pages (offline, about).
// file: navigations are confined to this directory.
func PagesDir() string {
	return filepath.Join(DataDir(), PagesDirName)
}

// ProfileDir holds the browser profile so sign-in survives restarts.
func ProfileDir() string {
	return filepath.Join(DataDir(), ProfileDirName)
}
