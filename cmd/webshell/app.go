package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/energye/systray"

	"github.com/Mavwarf/webshell/internal/config"
	"github.com/Mavwarf/webshell/internal/connectivity"
	"github.com/Mavwarf/webshell/internal/cooldown"
	"github.com/Mavwarf/webshell/internal/instance"
	"github.com/Mavwarf/webshell/internal/journal"
	"github.com/Mavwarf/webshell/internal/logx"
	"github.com/Mavwarf/webshell/internal/mqtt"
	"github.com/Mavwarf/webshell/internal/navguard"
	"github.com/Mavwarf/webshell/internal/pages"
	"github.com/Mavwarf/webshell/internal/paths"
	"github.com/Mavwarf/webshell/internal/shell"
	"github.com/Mavwarf/webshell/internal/silent"
	"github.com/Mavwarf/webshell/internal/tmpl"
	"github.com/Mavwarf/webshell/internal/toast"
	"github.com/Mavwarf/webshell/internal/window"
	"github.com/Mavwarf/webshell/internal/zoom"
)

const (
	description = "A desktop window for a single web application."
	homepage    = "https://github.com/Mavwarf/webshell"
	bugsURL     = "https://github.com/Mavwarf/webshell/issues"
	author      = "Mavwarf"
)

type notifySettings struct {
	enabled bool
	message string
	quiet   *cooldown.Throttle
}

func newNotifySettings(cfg config.Config) notifySettings {
	return notifySettings{
		enabled: cfg.NotifyOffline,
		message: cfg.NotifyMessage,
		quiet:   cooldown.New(cfg.AppURL, cfg.NotifyCooldown),
	}
}

// App wires the shell to its window, tray and side channels for one run.
type App struct {
	cfg        config.Config
	configPath string

	win   *window.Manager
	shell *shell.Shell
	lock  *instance.Lock
	store journal.Store
	rec   *journal.Recorder
	pub   *mqtt.Publisher
	tray  *tray
	root  string

	// notify settings follow config reloads.
	mu     sync.Mutex
	notify notifySettings

	watchCancel context.CancelFunc

	closeLog func() error
	startErr error
	log      *slog.Logger
}

func runApp(opts *rootOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.hidden {
		cfg.StartHidden = true
	}

	_, closeLog, err := logx.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	lock, err := instance.Acquire(filepath.Join(paths.DataDir(), paths.SocketFileName), instance.CmdShow)
	if errors.Is(err, instance.ErrRunning) {
		slog.Info("already running; asked it to show its window")
		return closeLog()
	}
	if err != nil {
		// Not fatal: worst case two windows share a profile.
		slog.Warn("single-instance lock unavailable", "err", err)
	}

	app, err := newApp(cfg, opts.configPath)
	if err != nil {
		if lock != nil {
			lock.Close()
		}
		closeLog()
		return err
	}
	app.lock = lock
	app.closeLog = closeLog

	systray.Run(app.onReady, app.onExit)
	return app.startErr
}

func newApp(cfg config.Config, configPath string) (*App, error) {
	a := &App{
		cfg:        cfg,
		configPath: configPath,
		log:        slog.Default().With("component", "app"),
	}

	set, err := pages.Install(paths.PagesDir(), pages.Metadata{
		Title:       cfg.Title,
		Version:     version,
		BuildDate:   buildDate,
		Description: description,
		Homepage:    homepage,
		BugsURL:     bugsURL,
		Author:      author,
		AppURL:      cfg.AppURL,
	})
	if err != nil {
		return nil, err
	}

	a.root = set.Root
	guard, err := navguard.New(cfg.AppURL, navguard.NewAllowlist(cfg.AllowedHosts), set.Root)
	if err != nil {
		return nil, err
	}

	bridge, err := bridgeScript(cfg)
	if err != nil {
		return nil, err
	}

	a.win = window.New(window.Options{
		AppURL:      cfg.AppURL,
		Title:       cfg.Title,
		Pages:       set,
		Bridge:      bridge,
		ChromePath:  cfg.ChromePath,
		ProfileDir:  paths.ProfileDir(),
		WidthRatio:  cfg.Window.WidthRatio,
		HeightRatio: cfg.Window.HeightRatio,
		StartHidden: cfg.StartHidden,
	})

	a.shell, err = shell.New(guard, a.win, shell.SystemOpener{}, zoom.New(cfg.Zoom.Min, cfg.Zoom.Max))
	if err != nil {
		return nil, err
	}

	a.store, err = journal.Open(cfg.Journal, paths.DataDir())
	if err != nil {
		a.log.Warn("journal unavailable", "err", err)
	}
	if a.store != nil {
		a.rec = journal.NewRecorder(a.store)
		a.shell.OnNavigation(a.rec.Navigation)
		a.shell.OnTransition(a.rec.Transition)
	}

	if cfg.MQTT.Broker != "" {
		a.pub = mqtt.NewPublisher(cfg.MQTT)
		a.shell.OnTransition(a.pub.Transition)
	}

	a.notify = newNotifySettings(cfg)
	a.shell.OnTransition(a.notifyOffline)

	a.tray = newTray(a)
	a.shell.OnTransition(func(t connectivity.Transition) { a.tray.setOnline(t.To == connectivity.Online) })
	a.win.OnVisibility(a.tray.setVisible)
	return a, nil
}

func (a *App) onReady() {
	a.tray.build()

	if err := a.win.Start(a.shell); err != nil {
		a.startErr = fmt.Errorf("window: %w", err)
		a.log.Error("cannot open window", "err", err)
		systray.Quit()
		return
	}
	if a.rec != nil {
		a.rec.Start(version)
	}
	if a.pub != nil {
		a.pub.State(connectivity.Online)
	}
	if a.lock != nil {
		a.lock.Serve(a.command)
	}
	a.shell.Start()
	a.watchConfig()
	a.log.Info("started", "version", version, "app", a.cfg.AppURL, "journal", a.cfg.Journal)
}

func (a *App) onExit() {
	if a.watchCancel != nil {
		a.watchCancel()
	}
	if a.lock != nil {
		a.lock.Close()
	}
	if err := a.win.Close(); err != nil {
		a.log.Debug("browser shutdown", "err", err)
	}
	if a.pub != nil {
		a.pub.Close()
	}
	if a.rec != nil {
		a.rec.Stop()
	}
	if a.store != nil {
		a.store.Close()
	}
	a.log.Info("stopped")
	if a.closeLog != nil {
		a.closeLog()
	}
}

// command handles requests from later launches.
func (a *App) command(cmd string) {
	switch cmd {
	case instance.CmdShow:
		a.win.Show()
	default:
		a.log.Warn("unknown instance command", "cmd", cmd)
	}
}

// notifyOffline shows a desktop notification when the app goes offline
// while the window is hidden.
func (a *App) notifyOffline(t connectivity.Transition) {
	a.mu.Lock()
	n := a.notify
	a.mu.Unlock()
	if !n.enabled || t.To != connectivity.Offline || a.win.Visible() {
		return
	}
	cfg := a.cfg
	cfg.NotifyMessage = n.message
	msg := offlineMessage(cfg, t.To)
	// Listeners run under the shell lock; the state files are read off it.
	go func() {
		if silent.Active() {
			a.log.Debug("offline notification suppressed: notifications paused")
			return
		}
		if !n.quiet.Allow("offline") {
			a.log.Debug("offline notification suppressed by cooldown")
			return
		}
		if err := toast.Show(a.cfg.Title, msg); err != nil {
			a.log.Warn("offline notification failed", "err", err)
		}
	}()
}

func (a *App) notifyConfigured() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notify.enabled
}

// watchConfig reloads the allowlist and notification settings when the
// config file changes. Other keys need a restart.
func (a *App) watchConfig() {
	p, err := config.FindPath(a.configPath)
	if err != nil || p == "" {
		return
	}
	w, err := config.NewWatcher(p, a.reconfigure)
	if err != nil {
		a.log.Warn("config changes will need a restart", "err", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.watchCancel = cancel
	go w.Run(ctx)
}

func (a *App) reconfigure(cfg config.Config) {
	guard, err := navguard.New(cfg.AppURL, navguard.NewAllowlist(cfg.AllowedHosts), a.root)
	if err == nil {
		err = a.shell.SetGuard(guard)
	}
	if err != nil {
		a.log.Warn("allowlist not reloaded", "err", err)
	}

	cfg.AppURL = a.cfg.AppURL
	a.mu.Lock()
	a.notify = newNotifySettings(cfg)
	a.mu.Unlock()
}

// bridgeScript renders the injected script with the configured allowlist
// as its fallback, so a failed host query leaves it with the same list.
func bridgeScript(cfg config.Config) (string, error) {
	return pages.Bridge(shell.BindingName, navguard.NewAllowlist(cfg.AllowedHosts).Hosts())
}

func offlineMessage(cfg config.Config, to connectivity.State) string {
	host := cfg.AppURL
	if u, err := url.Parse(cfg.AppURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return tmpl.Expand(cfg.NotifyMessage, tmpl.Vars{
		Title:  cfg.Title,
		AppURL: cfg.AppURL,
		Host:   host,
		State:  to.String(),
	})
}
