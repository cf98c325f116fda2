// Package notify publishes device transitions to NATS.
package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/FluidXR/questwatch/internal/adb"
	"github.com/FluidXR/questwatch/internal/monitor"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "questwatch.devices"

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Device is the JSON form of an adb.Device.
type Device struct {
	Serial      string `json:"serial"`
	State       string `json:"state"`
	ConnType    string `json:"conn_type,omitempty"`
	Model       string `json:"model,omitempty"`
	Product     string `json:"product,omitempty"`
	Name        string `json:"device,omitempty"`
	TransportID string `json:"transport_id,omitempty"`
}

// Message is the payload published for every event.
type Message struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Time     time.Time `json:"time"`
	Device   *Device   `json:"device,omitempty"`
	OldState string    `json:"old_state,omitempty"`
	NewState string    `json:"new_state,omitempty"`
	Devices  []Device  `json:"devices,omitempty"`
}

// Publisher sends monitor events to <prefix>.<kind>. It implements
// monitor.Listener; publish failures are logged and kept for Err.
type Publisher struct {
	conn   Conn
	prefix string
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	lastErr error
}

// NewPublisher creates a publisher on conn.
func NewPublisher(conn Conn, prefix string, log zerolog.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix, log: log, now: time.Now}
}

// Connect dials NATS at url with logging connection handlers.
func Connect(url string, log zerolog.Logger, extra ...nats.Option) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("questwatch"),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("nats error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}
	nc, err := nats.Connect(url, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return nc, nil
}

// Subject returns the subject used for kind.
func (p *Publisher) Subject(kind monitor.EventKind) string {
	return p.prefix + "." + kind.String()
}

// Publish encodes msg and publishes it under the subject for kind.
func (p *Publisher) Publish(kind monitor.EventKind, msg Message) error {
	msg.ID = uuid.New().String()
	msg.Kind = kind.String()
	msg.Time = p.now().UTC()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", msg.Kind, err)
	}
	subject := p.Subject(kind)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Err returns the last publish failure.
func (p *Publisher) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Publisher) keep(err error) {
	if err == nil {
		return
	}
	p.log.Error().Err(err).Msg("publish device event")
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

func toDevice(d adb.Device) Device {
	return Device{
		Serial:      d.Serial,
		State:       d.State.String(),
		ConnType:    string(d.ConnType),
		Model:       d.Model,
		Product:     d.Product,
		Name:        d.Name,
		TransportID: d.TransportID,
	}
}

// DeviceConnected implements monitor.Listener.
func (p *Publisher) DeviceConnected(e monitor.DeviceEvent) {
	d := toDevice(e.Device)
	p.keep(p.Publish(monitor.KindConnected, Message{Device: &d, NewState: d.State}))
}

// DeviceDisconnected implements monitor.Listener.
func (p *Publisher) DeviceDisconnected(e monitor.DeviceEvent) {
	d := toDevice(e.Device)
	p.keep(p.Publish(monitor.KindDisconnected, Message{Device: &d}))
}

// DeviceChanged implements monitor.Listener.
func (p *Publisher) DeviceChanged(e monitor.ChangeEvent) {
	d := toDevice(e.Device)
	p.keep(p.Publish(monitor.KindChanged, Message{
		Device:   &d,
		OldState: e.OldState.String(),
		NewState: e.NewState.String(),
	}))
}

// DeviceNotified implements monitor.Listener.
func (p *Publisher) DeviceNotified(e monitor.NotifyEvent) {
	devices := make([]Device, len(e.Devices))
	for i, d := range e.Devices {
		devices[i] = toDevice(d)
	}
	p.keep(p.Publish(monitor.KindNotified, Message{Devices: devices}))
}
