package adb

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ConnectionType indicates how a device is connected.
type ConnectionType string

const (
	USB     ConnectionType = "usb"
	WiFi    ConnectionType = "wifi"
	Unknown ConnectionType = "unknown"
)

// DeviceState is the state the adb server reports for a device.
type DeviceState int

const (
	StateUnknown DeviceState = iota
	StateOffline
	StateBootloader
	StateOnline
	StateHost
	StateRecovery
	StateNoPermissions
	StateSideload
	StateUnauthorized
	StateAuthorizing
	StateConnecting
	StateRescue
)

var stateNames = map[DeviceState]string{
	StateUnknown:       "unknown",
	StateOffline:       "offline",
	StateBootloader:    "bootloader",
	StateOnline:        "device",
	StateHost:          "host",
	StateRecovery:      "recovery",
	StateNoPermissions: "no permissions",
	StateSideload:      "sideload",
	StateUnauthorized:  "unauthorized",
	StateAuthorizing:   "authorizing",
	StateConnecting:    "connecting",
	StateRescue:        "rescue",
}

// String returns the token adb uses for the state.
func (s DeviceState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DeviceState(%d)", int(s))
}

// ParseState maps an adb state token to a DeviceState. Unrecognized tokens
// map to StateUnknown.
func ParseState(token string) DeviceState {
	token = strings.ToLower(strings.TrimSpace(token))
	for s, name := range stateNames {
		if name == token {
			return s
		}
	}
	return StateUnknown
}

// Device represents a connected ADB device.
type Device struct {
	Serial      string
	State       DeviceState
	ConnType    ConnectionType
	Model       string
	Product     string
	Name        string // "device:" property
	TransportID string
	USB         string
}

// IsOnline returns true if the device is in "device" state (ready).
func (d Device) IsOnline() bool {
	return d.State == StateOnline
}

// ErrMalformedLine is returned by ParseDevice for a line without a state token.
var ErrMalformedLine = errors.New("malformed device line")

// ParseDevice parses a single line of `adb devices -l` or track-devices output.
func ParseDevice(line string) (Device, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Device{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	d := Device{Serial: fields[0]}
	rest := fields[2:]
	if strings.EqualFold(fields[1], "no") && len(rest) > 0 && strings.EqualFold(rest[0], "permissions") {
		d.State = StateNoPermissions
		rest = rest[1:]
	} else {
		d.State = ParseState(fields[1])
	}

	// Determine connection type
	if strings.Contains(d.Serial, ":") {
		d.ConnType = WiFi
	} else {
		d.ConnType = USB
	}

	// Parse key:value pairs
	for _, f := range rest {
		key, value, ok := strings.Cut(f, ":")
		if !ok {
			continue
		}
		switch key {
		case "model":
			d.Model = value
		case "product":
			d.Product = value
		case "device":
			d.Name = value
		case "transport_id":
			d.TransportID = value
		case "usb":
			d.USB = value
		}
	}
	return d, nil
}

// ParseDeviceList yields the devices in a device list payload in input order.
// Records are separated by "\n" or "\r\n"; blank lines are discarded and lines
// ParseDevice rejects are skipped so that one bad record does not hide the rest.
func ParseDeviceList(payload string) iter.Seq[Device] {
	return func(yield func(Device) bool) {
		for line := range strings.Lines(payload) {
			line = strings.TrimRight(line, "\r\n")
			if strings.TrimSpace(line) == "" {
				continue
			}
			d, err := ParseDevice(line)
			if err != nil {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}
