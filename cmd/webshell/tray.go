package main

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"sync"
	"time"

	"github.com/energye/systray"

	"github.com/Mavwarf/webshell/internal/autostart"
	"github.com/Mavwarf/webshell/internal/icon"
	"github.com/Mavwarf/webshell/internal/silent"
)

const (
	trayIconSize = 64
	trayPause    = time.Hour
)

// tray is the notification-area icon and its menu.
type tray struct {
	app *App

	mu         sync.Mutex
	online     bool
	visible    bool
	ready      bool
	showHide   *systray.MenuItem
	autostartM *systray.MenuItem
	pauseM     *systray.MenuItem
}

func newTray(app *App) *tray {
	return &tray{app: app, online: true}
}

// pngToICO wraps raw PNG bytes in a minimal ICO container.
// Windows LoadImage(IMAGE_ICON) requires ICO format; since Vista,
// ICO supports embedded PNG data directly.
func pngToICO(png []byte) []byte {
	buf := new(bytes.Buffer)
	// ICONDIR header
	binary.Write(buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(buf, binary.LittleEndian, uint16(1)) // type: 1 = ICO
	binary.Write(buf, binary.LittleEndian, uint16(1)) // count: 1 image

	// ICONDIRENTRY
	buf.WriteByte(trayIconSize)                              // width
	buf.WriteByte(trayIconSize)                              // height
	buf.WriteByte(0)                                         // color count
	buf.WriteByte(0)                                         // reserved
	binary.Write(buf, binary.LittleEndian, uint16(1))        // color planes
	binary.Write(buf, binary.LittleEndian, uint16(32))       // bits per pixel
	binary.Write(buf, binary.LittleEndian, uint32(len(png))) // image data size
	binary.Write(buf, binary.LittleEndian, uint32(6+1*16))   // offset to image data (header + 1 entry)

	buf.Write(png)
	return buf.Bytes()
}

// iconBytes returns the tray icon in the format the platform expects.
func iconBytes(offline bool) []byte {
	data, err := icon.PNG(trayIconSize, offline)
	if err != nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return pngToICO(data)
	}
	return data
}

func tooltip(title string, online bool) string {
	if online {
		return title
	}
	return title + " (offline)"
}

func showHideLabel(visible bool) string {
	if visible {
		return "Hide"
	}
	return "Show"
}

func (t *tray) build() {
	a := t.app
	systray.SetIcon(iconBytes(false))
	systray.SetTitle(a.cfg.Title)
	systray.SetTooltip(tooltip(a.cfg.Title, true))
	systray.SetOnDClick(func(menu systray.IMenu) { a.win.Show() })

	t.mu.Lock()
	t.showHide = systray.AddMenuItem(showHideLabel(t.visible), "Show or hide the window")
	t.mu.Unlock()
	t.showHide.Click(func() { a.win.Toggle() })

	systray.AddMenuItem("Reload", "Reload "+a.cfg.Title).Click(func() { a.shell.Retry() })
	systray.AddMenuItem("About", "About "+a.cfg.Title).Click(func() { a.win.ShowAbout() })

	systray.AddSeparator()

	t.autostartM = systray.AddMenuItemCheckbox("Start at login", "Start when you log in", autostart.Enabled())
	t.autostartM.Click(t.toggleAutostart)
	if a.notifyConfigured() {
		t.pauseM = systray.AddMenuItemCheckbox("Pause notifications", "Pause offline notifications for an hour", silent.Active())
		t.pauseM.Click(t.togglePause)
	}

	systray.AddSeparator()

	systray.AddMenuItem("Quit", "Quit "+a.cfg.Title).Click(func() { systray.Quit() })

	t.mu.Lock()
	t.ready = true
	t.mu.Unlock()
}

func (t *tray) toggleAutostart() {
	a := t.app
	if autostart.Enabled() {
		if err := autostart.Disable(); err != nil {
			a.log.Error("disable autostart failed", "err", err)
		}
	} else {
		e, err := autostartEntry(a.cfg, a.configPath, true)
		if err == nil {
			err = autostart.Enable(e)
		}
		if err != nil {
			a.log.Error("enable autostart failed", "err", err)
		}
	}
	if autostart.Enabled() {
		t.autostartM.Check()
	} else {
		t.autostartM.Uncheck()
	}
}

func (t *tray) togglePause() {
	a := t.app
	if silent.Active() {
		if err := silent.Disable(); err != nil {
			a.log.Error("resume notifications failed", "err", err)
		}
	} else {
		end, err := silent.Enable(trayPause)
		if err != nil {
			a.log.Error("pause notifications failed", "err", err)
		} else {
			a.log.Info("notifications paused", "until", end)
		}
	}
	if silent.Active() {
		t.pauseM.Check()
	} else {
		t.pauseM.Uncheck()
	}
}

func (t *tray) setOnline(online bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.online == online {
		return
	}
	t.online = online
	if !t.ready {
		return
	}
	systray.SetTooltip(tooltip(t.app.cfg.Title, online))
	systray.SetIcon(iconBytes(!online))
}

func (t *tray) setVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = visible
	if t.showHide != nil {
		t.showHide.SetTitle(showHideLabel(visible))
	}
}
