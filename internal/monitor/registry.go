package monitor

import (
	"sync"

	"github.com/FluidXR/questwatch/internal/adb"
)

// Registry holds the devices currently known to the adb server and turns
// each new device list into the transitions since the previous one.
type Registry struct {
	mu      sync.RWMutex
	devices []*adb.Device // enumeration order is insertion order
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Reconcile replaces the known device set with snapshot and returns the
// transitions in emission order: connects and state changes in snapshot
// order, then disconnects in registry order, then one notify if snapshot is
// not empty.
//
// A known device whose state changed keeps its other fields; only State is
// overwritten.
func (r *Registry) Reconcile(snapshot []adb.Device) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []Event
	seen := make(map[string]struct{}, len(snapshot))

	for _, d := range snapshot {
		seen[d.Serial] = struct{}{}

		existing := r.find(d.Serial)
		switch {
		case existing == nil:
			added := d
			r.devices = append(r.devices, &added)
			events = append(events, Event{Kind: KindConnected, Device: DeviceEvent{Device: added}})
		case existing.State != d.State:
			old := existing.State
			existing.State = d.State
			events = append(events, Event{
				Kind:   KindChanged,
				Change: ChangeEvent{Device: *existing, OldState: old, NewState: d.State},
			})
		}
	}

	kept := r.devices[:0]
	var removed []*adb.Device
	for _, d := range r.devices {
		if _, ok := seen[d.Serial]; ok {
			kept = append(kept, d)
			continue
		}
		removed = append(removed, d)
	}
	clear(r.devices[len(kept):])
	r.devices = kept
	for _, d := range removed {
		events = append(events, Event{Kind: KindDisconnected, Device: DeviceEvent{Device: *d}})
	}

	if len(snapshot) > 0 {
		events = append(events, Event{
			Kind:   KindNotified,
			Notify: NotifyEvent{Devices: append([]adb.Device(nil), snapshot...)},
		})
	}
	return events
}

func (r *Registry) find(serial string) *adb.Device {
	for _, d := range r.devices {
		if d.Serial == serial {
			return d
		}
	}
	return nil
}

// Devices returns a copy of the known devices.
func (r *Registry) Devices() []adb.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]adb.Device, len(r.devices))
	for i, d := range r.devices {
		out[i] = *d
	}
	return out
}

// Len returns the number of known devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}
