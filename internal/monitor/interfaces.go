//go:generate mockgen -destination=mock_monitor.go -package=monitor github.com/FluidXR/questwatch/internal/monitor Transport,ServerController

package monitor

import "context"

// Transport is a connection to the adb server. *adb.Socket implements it.
type Transport interface {
	SendRequest(request string) error
	ReadResponse() error
	ReadString() (string, error)
	Reconnect(ctx context.Context) error
	Close() error
}

// ServerController restarts the adb server after the connection was reset.
// *adb.Server implements it.
type ServerController interface {
	RestartServer(ctx context.Context) error
}

// Listener receives every kind of device event. See Monitor.Subscribe.
type Listener interface {
	DeviceConnected(e DeviceEvent)
	DeviceDisconnected(e DeviceEvent)
	DeviceChanged(e ChangeEvent)
	DeviceNotified(e NotifyEvent)
}
