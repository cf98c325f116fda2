package monitor

import (
	"sync"

	"github.com/FluidXR/questwatch/internal/adb"
)

// EventKind identifies a device transition.
type EventKind int

const (
	KindConnected EventKind = iota
	KindDisconnected
	KindChanged
	KindNotified
)

func (k EventKind) String() string {
	switch k {
	case KindConnected:
		return "connected"
	case KindDisconnected:
		return "disconnected"
	case KindChanged:
		return "changed"
	case KindNotified:
		return "notified"
	default:
		return "unknown"
	}
}

// DeviceEvent reports a device that appeared or went away.
type DeviceEvent struct {
	Device adb.Device
}

// ChangeEvent reports a state change of a known device. Device carries the
// new state.
type ChangeEvent struct {
	Device   adb.Device
	OldState adb.DeviceState
	NewState adb.DeviceState
}

// NotifyEvent carries every device of the latest non-empty device list.
type NotifyEvent struct {
	Devices []adb.Device
}

// Event is one entry of a reconcile result. Exactly one of the payload
// fields matching Kind is set.
type Event struct {
	Kind   EventKind
	Device DeviceEvent
	Change ChangeEvent
	Notify NotifyEvent
}

// Feed is an ordered list of handlers for one event type. Handlers run
// synchronously in subscription order.
type Feed[T any] struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers []feedEntry[T]
}

type feedEntry[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe adds fn and returns a function that removes it again.
func (f *Feed[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.handlers = append(f.handlers, feedEntry[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, h := range f.handlers {
				if h.id == id {
					f.handlers = append(f.handlers[:i:i], f.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// Send calls every handler with v.
func (f *Feed[T]) Send(v T) {
	f.mu.RLock()
	handlers := f.handlers
	f.mu.RUnlock()
	for _, h := range handlers {
		h.fn(v)
	}
}

// Len returns the number of subscribed handlers.
func (f *Feed[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.handlers)
}
