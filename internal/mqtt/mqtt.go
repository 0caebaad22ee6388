// Package mqtt publishes the shell's connectivity state to an MQTT broker.
package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Mavwarf/webshell/internal/config"
	"github.com/Mavwarf/webshell/internal/connectivity"
)

const (
	defaultClientID = "webshell"
	timeout         = 5 * time.Second
)

// Publish connects to the configured broker, publishes message to the
// configured topic, and disconnects. Each call uses a fresh connection.
func Publish(c config.MQTT, message string) error {
	clientID := c.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(clientID).
		SetConnectTimeout(timeout)

	if c.Username != "" {
		opts.SetUsername(c.Username)
	}
	if c.Password != "" {
		opts.SetPassword(c.Password)
	}

	client := pahomqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	defer client.Disconnect(250)

	pub := client.Publish(c.Topic, c.QoS, c.Retain, message)
	if !pub.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	return nil
}

// Publisher delivers state changes from a background goroutine so
// transition listeners never wait on the network. When the queue is full
// the oldest pending state is dropped; only the latest state matters.
type Publisher struct {
	cfg     config.MQTT
	publish func(config.MQTT, string) error
	queue   chan string
	wg      sync.WaitGroup
	once    sync.Once
	log     *slog.Logger
}

// NewPublisher starts a publisher for cfg.
func NewPublisher(cfg config.MQTT) *Publisher {
	return newPublisher(cfg, Publish)
}

func newPublisher(cfg config.MQTT, publish func(config.MQTT, string) error) *Publisher {
	p := &Publisher{
		cfg:     cfg,
		publish: publish,
		queue:   make(chan string, 4),
		log:     slog.Default().With("component", "mqtt"),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// State queues state for publishing.
func (p *Publisher) State(state connectivity.State) {
	msg := state.String()
	for {
		select {
		case p.queue <- msg:
			return
		default:
		}
		select {
		case <-p.queue:
		default:
		}
	}
}

// Transition is a connectivity listener publishing the new state.
func (p *Publisher) Transition(t connectivity.Transition) {
	p.State(t.To)
}

// Close flushes pending messages and stops the publisher.
func (p *Publisher) Close() {
	p.once.Do(func() { close(p.queue) })
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for msg := range p.queue {
		if err := p.publish(p.cfg, msg); err != nil {
			p.log.Warn("publish failed", "broker", p.cfg.Broker, "topic", p.cfg.Topic, "err", err)
			continue
		}
		p.log.Debug("published", "topic", p.cfg.Topic, "state", msg)
	}
}
