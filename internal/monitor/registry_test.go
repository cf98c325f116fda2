package monitor

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FluidXR/questwatch/internal/adb"
)

func dev(serial string, state adb.DeviceState) adb.Device {
	return adb.Device{Serial: serial, State: state, ConnType: adb.USB}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func countKind(events []Event, k EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func serials(devices []adb.Device) []string {
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.Serial
	}
	return out
}

func TestRegistry_ParsedScenario(t *testing.T) {
	r := NewRegistry()
	snapshot := slices.Collect(adb.ParseDeviceList("emulator-5554\tdevice\nZY223\tunauthorized\n"))

	events := r.Reconcile(snapshot)

	want := []Event{
		{Kind: KindConnected, Device: DeviceEvent{Device: snapshot[0]}},
		{Kind: KindConnected, Device: DeviceEvent{Device: snapshot[1]}},
		{Kind: KindNotified, Notify: NotifyEvent{Devices: snapshot}},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("Reconcile() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, adb.StateOnline, events[0].Device.Device.State)
	assert.Equal(t, adb.StateUnauthorized, events[1].Device.Device.State)
}

func TestRegistry_Idempotent(t *testing.T) {
	r := NewRegistry()
	snapshot := []adb.Device{dev("A", adb.StateOnline), dev("B", adb.StateOffline)}

	first := r.Reconcile(snapshot)
	assert.Equal(t, []EventKind{KindConnected, KindConnected, KindNotified}, kinds(first))

	second := r.Reconcile(snapshot)
	assert.Equal(t, []EventKind{KindNotified}, kinds(second))
}

func TestRegistry_StateChange(t *testing.T) {
	r := NewRegistry()
	r.Reconcile([]adb.Device{{Serial: "X", State: adb.StateOffline, Model: "Quest_3"}})

	events := r.Reconcile([]adb.Device{{Serial: "X", State: adb.StateOnline, Model: "ignored"}})

	require.Equal(t, []EventKind{KindChanged, KindNotified}, kinds(events))
	change := events[0].Change
	assert.Equal(t, adb.StateOffline, change.OldState)
	assert.Equal(t, adb.StateOnline, change.NewState)
	assert.Equal(t, adb.StateOnline, change.Device.State)

	// Only the state is updated on a known device.
	devices := r.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "Quest_3", devices[0].Model)
	assert.Equal(t, adb.StateOnline, devices[0].State)
}

func TestRegistry_Ordering(t *testing.T) {
	r := NewRegistry()
	r.Reconcile([]adb.Device{dev("B", adb.StateOffline), dev("C", adb.StateOnline)})

	a, b := dev("A", adb.StateOnline), dev("B", adb.StateOnline)
	events := r.Reconcile([]adb.Device{a, b})

	require.Equal(t, []EventKind{KindConnected, KindChanged, KindDisconnected, KindNotified}, kinds(events))
	assert.Equal(t, "A", events[0].Device.Device.Serial)
	assert.Equal(t, "B", events[1].Change.Device.Serial)
	assert.Equal(t, "C", events[2].Device.Device.Serial)
	assert.Equal(t, []string{"A", "B"}, serials(events[3].Notify.Devices))
}

func TestRegistry_EmptySnapshot(t *testing.T) {
	r := NewRegistry()
	r.Reconcile([]adb.Device{dev("A", adb.StateOnline), dev("B", adb.StateOnline), dev("C", adb.StateOffline)})

	events := r.Reconcile(nil)

	assert.Equal(t, []EventKind{KindDisconnected, KindDisconnected, KindDisconnected}, kinds(events))
	assert.Equal(t, []string{"A", "B", "C"}, []string{
		events[0].Device.Device.Serial,
		events[1].Device.Device.Serial,
		events[2].Device.Device.Serial,
	})
	assert.Zero(t, r.Len())
}

func TestRegistry_Partition(t *testing.T) {
	r := NewRegistry()
	steps := [][]adb.Device{
		{dev("A", adb.StateOnline), dev("B", adb.StateOnline)},
		{dev("B", adb.StateOnline), dev("C", adb.StateOnline), dev("D", adb.StateOffline)},
		{dev("D", adb.StateOnline)},
		{dev("A", adb.StateUnauthorized), dev("D", adb.StateOnline)},
	}

	prev := map[string]bool{}
	for i, snapshot := range steps {
		events := r.Reconcile(snapshot)

		want := map[string]bool{}
		for _, d := range snapshot {
			want[d.Serial] = true
		}
		got := map[string]bool{}
		for _, d := range r.Devices() {
			got[d.Serial] = true
		}
		assert.Equal(t, want, got, "step %d", i)

		var added, removed int
		for s := range want {
			if !prev[s] {
				added++
			}
		}
		for s := range prev {
			if !want[s] {
				removed++
			}
		}
		assert.Equal(t, added, countKind(events, KindConnected), "step %d connected", i)
		assert.Equal(t, removed, countKind(events, KindDisconnected), "step %d disconnected", i)
		assert.Equal(t, 1, countKind(events, KindNotified), "step %d notified", i)
		prev = want
	}
}

func TestRegistry_DevicesIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Reconcile([]adb.Device{dev("A", adb.StateOnline)})

	devices := r.Devices()
	devices[0].State = adb.StateOffline

	assert.Equal(t, adb.StateOnline, r.Devices()[0].State)
}
