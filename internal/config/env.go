package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the keys that can be set from the environment. Unset
// variables leave the file value in place. The full names are spelled out
// so envconfig never falls back to an unprefixed variable such as TITLE.
type envOverrides struct {
	AppURL         string   `envconfig:"WEBSHELL_APP_URL"`
	AllowedHosts   []string `envconfig:"WEBSHELL_ALLOWED_HOSTS"`
	Title          string   `envconfig:"WEBSHELL_TITLE"`
	ChromePath     string   `envconfig:"WEBSHELL_CHROME_PATH"`
	StartHidden    bool     `envconfig:"WEBSHELL_START_HIDDEN"`
	NotifyOffline  bool     `envconfig:"WEBSHELL_NOTIFY_OFFLINE"`
	NotifyCooldown int      `envconfig:"WEBSHELL_NOTIFY_COOLDOWN_SECONDS"`
	Journal        string   `envconfig:"WEBSHELL_JOURNAL"`
	MQTTBroker     string   `envconfig:"WEBSHELL_MQTT_BROKER"`
	MQTTTopic      string   `envconfig:"WEBSHELL_MQTT_TOPIC"`
}

// applyEnv overlays WEBSHELL_* variables onto c.
func applyEnv(c *Config) error {
	env := envOverrides{
		AppURL:         c.AppURL,
		AllowedHosts:   c.AllowedHosts,
		Title:          c.Title,
		ChromePath:     c.ChromePath,
		StartHidden:    c.StartHidden,
		NotifyOffline:  c.NotifyOffline,
		NotifyCooldown: c.NotifyCooldown,
		Journal:        c.Journal,
		MQTTBroker:     c.MQTT.Broker,
		MQTTTopic:      c.MQTT.Topic,
	}
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	c.AppURL = env.AppURL
	c.AllowedHosts = env.AllowedHosts
	c.Title = env.Title
	c.ChromePath = env.ChromePath
	c.StartHidden = env.StartHidden
	c.NotifyOffline = env.NotifyOffline
	c.NotifyCooldown = env.NotifyCooldown
	c.Journal = env.Journal
	c.MQTT.Broker = env.MQTTBroker
	c.MQTT.Topic = env.MQTTTopic
	return nil
}
