package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Mavwarf/webshell/internal/paths"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAppURL      = "https://gemini.google.com"
	DefaultTitle       = "Gemini"
	DefaultZoomMin     = -8
	DefaultZoomMax     = 9
	DefaultWidthRatio  = 0.6
	DefaultHeightRatio = 0.8
	DefaultMQTTTopic   = "webshell/status"

	DefaultNotifyCooldown = 300
	DefaultNotifyMessage  = "{Title} lost its connection to {host}. Open the window and press Retry when you are back online."
)

// Journal backends.
const (
	JournalOff    = ""
	JournalFile   = "file"
	JournalSQLite = "sqlite"
)

// defaultAllowedHosts is the primary allowlist. The content-side fallback
// copy lives in navguard.DefaultHosts and a test keeps the two equal.
var defaultAllowedHosts = []string{
	"gemini.google.com",
	"accounts.google.com",
}

// Zoom bounds the zoom level. Level 0 is 100%; each step is a factor 1.2.
type Zoom struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Window holds the initial window size as a fraction of the primary screen.
type Window struct {
	WidthRatio  float64 `yaml:"width_ratio"`
	HeightRatio float64 `yaml:"height_ratio"`
}

// Log configures the slog handler. Environment variables override these
// (see logx).
type Log struct {
	Level      string `yaml:"level,omitempty"`  // debug | info | warn | error
	Format     string `yaml:"format,omitempty"` // text | json
	Output     string `yaml:"output,omitempty"` // stdout | file | stdout,file
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// MQTT configures connectivity status publishing. Disabled when Broker is
// empty. Username and Password support $VAR expansion.
type MQTT struct {
	Broker   string `yaml:"broker,omitempty"`
	Topic    string `yaml:"topic,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	QoS      byte   `yaml:"qos,omitempty"`
	Retain   bool   `yaml:"retain"`
}

// Config is the top-level configuration.
type Config struct {
	AppURL        string   `yaml:"app_url"`
	AllowedHosts  []string `yaml:"allowed_hosts"`
	Title         string   `yaml:"title"`
	ChromePath    string   `yaml:"chrome_path,omitempty"`
	StartHidden   bool     `yaml:"start_hidden,omitempty"`
	NotifyOffline bool     `yaml:"notify_offline,omitempty"`
	// NotifyCooldown is the minimum number of seconds between two offline
	// notifications. 0 disables the throttle.
	NotifyCooldown int `yaml:"notify_cooldown_seconds"`
	// NotifyMessage supports {title}, {Title}, {host}, {url}, {state}.
	NotifyMessage string `yaml:"notify_message"`
	Journal       string `yaml:"journal,omitempty"`
	Zoom          Zoom   `yaml:"zoom"`
	Window        Window `yaml:"window"`
	Log           Log    `yaml:"log"`
	MQTT          MQTT   `yaml:"mqtt"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	var c Config
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.AppURL = DefaultAppURL
	c.AllowedHosts = append([]string(nil), defaultAllowedHosts...)
	c.Title = DefaultTitle
	c.Zoom = Zoom{Min: DefaultZoomMin, Max: DefaultZoomMax}
	c.Window = Window{WidthRatio: DefaultWidthRatio, HeightRatio: DefaultHeightRatio}
	c.NotifyCooldown = DefaultNotifyCooldown
	c.NotifyMessage = DefaultNotifyMessage
	c.MQTT.Topic = DefaultMQTTTopic
	c.MQTT.Retain = true
}

// UnmarshalYAML sets defaults then decodes the document. yaml.v3 decodes
// into existing struct fields, so only keys present in the file override
// the defaults.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	c.setDefaults()
	type alias Config
	return value.Decode((*alias)(c))
}

// FindPath returns the config file that Load would read. It tries, in order:
//  1. explicitPath (if non-empty)
//  2. webshell.yaml next to the running binary
//  3. the user config directory (%APPDATA%\webshell or ~/.config/webshell)
//
// An empty path and nil error mean no file exists and defaults apply.
func FindPath(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}

	// Next to binary
	if exe, err := os.Executable(); err == nil {
		p := filepath.Join(filepath.Dir(exe), paths.ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	// User config directory
	if home, err := os.UserHomeDir(); err == nil {
		var p string
		if runtime.GOOS == "windows" {
			p = filepath.Join(home, "AppData", "Roaming", paths.AppDirName, paths.ConfigFileName)
		} else {
			p = filepath.Join(home, ".config", paths.AppDirName, paths.ConfigFileName)
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Load finds and parses the config file, then applies WEBSHELL_*
// environment overrides. When no file exists the defaults are used.
func Load(explicitPath string) (Config, error) {
	p, err := FindPath(explicitPath)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if p != "" {
		if cfg, err = readConfig(p); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default() // an empty document never calls UnmarshalYAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config for values the shell cannot run with.
func Validate(c Config) error {
	var errs []error

	u, err := url.Parse(c.AppURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("app_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("app_url %q: scheme must be http or https", c.AppURL))
	case u.Hostname() == "":
		errs = append(errs, fmt.Errorf("app_url %q: missing host", c.AppURL))
	default:
		if !containsHost(c.AllowedHosts, u.Hostname()) {
			errs = append(errs, fmt.Errorf("allowed_hosts must include the app host %q", u.Hostname()))
		}
	}

	switch c.Journal {
	case JournalOff, JournalFile, JournalSQLite:
	default:
		errs = append(errs, fmt.Errorf("journal %q: must be %q, %q or empty", c.Journal, JournalFile, JournalSQLite))
	}

	if c.Zoom.Min > 0 || c.Zoom.Max < 0 || c.Zoom.Min == c.Zoom.Max {
		errs = append(errs, fmt.Errorf("zoom: min (%d) must be <= 0 <= max (%d) and differ", c.Zoom.Min, c.Zoom.Max))
	}
	if !validRatio(c.Window.WidthRatio) || !validRatio(c.Window.HeightRatio) {
		errs = append(errs, fmt.Errorf("window: ratios must be in (0, 1]"))
	}
	if c.NotifyCooldown < 0 {
		errs = append(errs, fmt.Errorf("notify_cooldown_seconds %d: must not be negative", c.NotifyCooldown))
	}
	if c.MQTT.Broker != "" && c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos %d: must be 0, 1 or 2", c.MQTT.QoS))
	}
	return errors.Join(errs...)
}

func containsHost(hosts []string, host string) bool {
	for _, h := range hosts {
		if strings.EqualFold(strings.TrimSpace(h), host) {
			return true
		}
	}
	return false
}

func validRatio(r float64) bool { return r > 0 && r <= 1 }
