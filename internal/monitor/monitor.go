// Package monitor tracks the devices attached to an adb server and reports
// connect, disconnect and state change transitions to subscribers.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/FluidXR/questwatch/internal/adb"
)

// Tracking requests understood by the adb server.
const (
	TrackDevices     = "host:track-devices"
	TrackDevicesLong = "host:track-devices-l"
)

var (
	ErrNilTransport = errors.New("monitor: nil transport")
	ErrNilServer    = errors.New("monitor: nil server controller")
	ErrClosed       = errors.New("monitor: closed")
)

// State is the lifecycle state of a Monitor.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateRecovering
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateRecovering:
		return "recovering"
	default:
		return "unknown"
	}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Monitor) { m.log = log }
}

// WithTrackRequest sets the request that starts device tracking.
func WithTrackRequest(request string) Option {
	return func(m *Monitor) { m.trackRequest = request }
}

// Monitor keeps a tracking connection to the adb server open and reconciles
// every device list it receives. Events are dispatched on the monitor's
// worker goroutine; a slow handler delays the next read.
type Monitor struct {
	transport    Transport
	server       ServerController
	log          zerolog.Logger
	trackRequest string

	registry *Registry

	connected    Feed[DeviceEvent]
	disconnected Feed[DeviceEvent]
	changed      Feed[ChangeEvent]
	notified     Feed[NotifyEvent]

	state atomic.Int32

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	loopErr error
	closed  bool
}

// New creates a monitor reading from transport. server is asked to restart
// the adb server when the connection is reset.
func New(transport Transport, server ServerController, opts ...Option) (*Monitor, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if server == nil {
		return nil, ErrNilServer
	}
	m := &Monitor{
		transport:    transport,
		server:       server,
		log:          zerolog.Nop(),
		trackRequest: TrackDevices,
		registry:     NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// OnDeviceConnected subscribes fn to newly connected devices.
func (m *Monitor) OnDeviceConnected(fn func(DeviceEvent)) func() {
	return m.connected.Subscribe(fn)
}

// OnDeviceDisconnected subscribes fn to devices that went away.
func (m *Monitor) OnDeviceDisconnected(fn func(DeviceEvent)) func() {
	return m.disconnected.Subscribe(fn)
}

// OnDeviceChanged subscribes fn to state changes of known devices.
func (m *Monitor) OnDeviceChanged(fn func(ChangeEvent)) func() {
	return m.changed.Subscribe(fn)
}

// OnDeviceNotified subscribes fn to every non-empty device list.
func (m *Monitor) OnDeviceNotified(fn func(NotifyEvent)) func() {
	return m.notified.Subscribe(fn)
}

// Subscribe registers l for all four event kinds. The returned function
// removes every registration.
func (m *Monitor) Subscribe(l Listener) func() {
	unsubs := []func(){
		m.connected.Subscribe(l.DeviceConnected),
		m.disconnected.Subscribe(l.DeviceDisconnected),
		m.changed.Subscribe(l.DeviceChanged),
		m.notified.Subscribe(l.DeviceNotified),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Devices returns the devices known after the last processed device list.
func (m *Monitor) Devices() []adb.Device {
	return m.registry.Devices()
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// IsRunning reports whether the worker is alive.
func (m *Monitor) IsRunning() bool {
	s := m.State()
	return s == StateRunning || s == StateRecovering
}

// Err returns the error that ended the worker, if any.
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loopErr
}

func (m *Monitor) setState(s State) {
	if old := State(m.state.Swap(int32(s))); old != s {
		m.log.Debug().Str("from", old.String()).Str("to", s.String()).Msg("monitor state")
	}
}

// Start begins tracking and blocks until the first device list has been
// processed. It returns nil without doing anything if the worker already
// exists. If ctx ends first, the monitor is closed and ctx's error returned.
// Start must not be called concurrently with itself.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.done != nil {
		done := m.done
		m.mu.Unlock()
		select {
		case <-done:
			if loopErr := m.Err(); loopErr != nil {
				return fmt.Errorf("monitor stopped: %w", loopErr)
			}
			return ErrClosed
		default:
			return nil
		}
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	first := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.loopErr = nil
	m.setState(StateStarting)
	m.mu.Unlock()

	go m.run(loopCtx, first, done)

	select {
	case <-first:
		return nil
	case <-done:
		if err := m.Err(); err != nil {
			return err
		}
		return ErrClosed
	case <-ctx.Done():
		m.Close()
		return ctx.Err()
	}
}

func (m *Monitor) run(ctx context.Context, first, done chan struct{}) {
	defer close(done)

	err := m.loop(ctx, first)
	if err != nil && ctx.Err() == nil {
		m.log.Error().Err(err).Msg("device monitor failed")
		m.mu.Lock()
		m.loopErr = err
		m.mu.Unlock()
	} else {
		m.log.Info().Msg("device monitor stopped")
	}
	m.setState(StateStopped)
}

func (m *Monitor) loop(ctx context.Context, first chan struct{}) error {
	if err := m.track(); err != nil {
		if !errors.Is(err, adb.ErrConnectionReset) || ctx.Err() != nil {
			return err
		}
		if err := m.recoverConnection(ctx); err != nil {
			return err
		}
	}

	var firstOnce sync.Once
	for ctx.Err() == nil {
		payload, err := m.transport.ReadString()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !errors.Is(err, adb.ErrConnectionReset) {
				return fmt.Errorf("read device list: %w", err)
			}
			m.log.Warn().Err(err).Msg("adb connection reset, restarting server")
			if err := m.recoverConnection(ctx); err != nil {
				return err
			}
			continue
		}

		m.process(payload)
		m.setState(StateRunning)
		firstOnce.Do(func() { close(first) })
	}
	return nil
}

// track asks the server to stream device lists.
func (m *Monitor) track() error {
	if err := m.transport.SendRequest(m.trackRequest); err != nil {
		return fmt.Errorf("send %s: %w", m.trackRequest, err)
	}
	if err := m.transport.ReadResponse(); err != nil {
		return fmt.Errorf("%s: %w", m.trackRequest, err)
	}
	return nil
}

func (m *Monitor) recoverConnection(ctx context.Context) error {
	m.setState(StateRecovering)
	if err := m.server.RestartServer(ctx); err != nil {
		return fmt.Errorf("restart adb server: %w", err)
	}
	if err := m.transport.Reconnect(ctx); err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}
	if err := m.track(); err != nil {
		return err
	}
	m.log.Info().Msg("adb connection recovered")
	return nil
}

func (m *Monitor) process(payload string) {
	snapshot := slices.Collect(adb.ParseDeviceList(payload))
	events := m.registry.Reconcile(snapshot)
	m.log.Debug().Int("devices", len(snapshot)).Int("events", len(events)).Msg("device list")
	m.dispatch(events)
}

func (m *Monitor) dispatch(events []Event) {
	for _, e := range events {
		switch e.Kind {
		case KindConnected:
			m.connected.Send(e.Device)
		case KindDisconnected:
			m.disconnected.Send(e.Device)
		case KindChanged:
			m.changed.Send(e.Change)
		case KindNotified:
			m.notified.Send(e.Notify)
		}
	}
}

// Wait blocks until the worker exits or ctx ends. It returns the error that
// ended the worker, or ctx's error.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return m.Err()
	}
	select {
	case <-done:
		return m.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop cancels the worker, closes the transport to unblock a pending read
// and waits for the worker to exit.
func (m *Monitor) stop() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	err := m.transport.Close()
	if done != nil {
		<-done
	}
	m.setState(StateStopped)
	return err
}

// Close stops monitoring and releases the transport. No events are
// dispatched after Close returns. It must not be called from an event
// handler. Calling Close more than once is a no-op.
func (m *Monitor) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	if err := m.stop(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}
