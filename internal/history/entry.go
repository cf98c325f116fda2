package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FluidXR/questwatch/internal/adb"
	"github.com/FluidXR/questwatch/internal/monitor"
)

// Transition is one recorded device transition.
type Transition struct {
	ID         string
	Serial     string
	Kind       string
	OldState   string
	NewState   string
	ObservedAt time.Time
}

// DeviceRecord is the last known information about a device.
type DeviceRecord struct {
	Serial    string
	State     string
	Model     string
	Product   string
	ConnType  string
	Connected bool
	FirstSeen time.Time
	LastSeen  time.Time
}

// RecordTransition stores a transition and refreshes the device row.
func (h *DB) RecordTransition(kind monitor.EventKind, d adb.Device, oldState, newState adb.DeviceState) error {
	now := h.now()
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var oldName string
	if kind == monitor.KindChanged {
		oldName = oldState.String()
	}
	_, err = tx.Exec(
		`INSERT INTO transitions (id, serial, kind, old_state, new_state, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), d.Serial, kind.String(), oldName, newState.String(), now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}

	connected := kind != monitor.KindDisconnected
	_, err = tx.Exec(
		`INSERT INTO devices (serial, state, model, product, conn_type, connected, first_seen, last_seen)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(serial) DO UPDATE SET
		   state = excluded.state,
		   model = CASE WHEN excluded.model != '' THEN excluded.model ELSE devices.model END,
		   product = CASE WHEN excluded.product != '' THEN excluded.product ELSE devices.product END,
		   conn_type = excluded.conn_type,
		   connected = excluded.connected,
		   last_seen = excluded.last_seen`,
		d.Serial, newState.String(), d.Model, d.Product, string(d.ConnType), connected, now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record device: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Touch updates last_seen for the given devices.
func (h *DB) Touch(devices []adb.Device) error {
	now := h.now().UnixMilli()
	for _, d := range devices {
		if _, err := h.db.Exec(`UPDATE devices SET last_seen = ? WHERE serial = ?`, now, d.Serial); err != nil {
			return fmt.Errorf("touch %s: %w", d.Serial, err)
		}
	}
	return nil
}

// ListTransitions returns the most recent transitions, newest first. An
// empty serial matches every device; limit <= 0 means no limit.
func (h *DB) ListTransitions(serial string, limit int) ([]Transition, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.Query(
		`SELECT id, serial, kind, old_state, new_state, observed_at
		 FROM transitions
		 WHERE ? = '' OR serial = ?
		 ORDER BY observed_at DESC, rowid DESC
		 LIMIT ?`,
		serial, serial, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		var observed int64
		if err := rows.Scan(&t.ID, &t.Serial, &t.Kind, &t.OldState, &t.NewState, &observed); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.ObservedAt = time.UnixMilli(observed)
		out = append(out, t)
	}
	return out, rows.Err()
}

// KnownDevices returns every device ever recorded, ordered by serial.
func (h *DB) KnownDevices() ([]DeviceRecord, error) {
	rows, err := h.db.Query(
		`SELECT serial, state, model, product, conn_type, connected, first_seen, last_seen
		 FROM devices ORDER BY serial`,
	)
	if err != nil {
		return nil, fmt.Errorf("known devices: %w", err)
	}
	defer rows.Close()

	var out []DeviceRecord
	for rows.Next() {
		var d DeviceRecord
		var first, last int64
		if err := rows.Scan(&d.Serial, &d.State, &d.Model, &d.Product, &d.ConnType, &d.Connected, &first, &last); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		d.FirstSeen = time.UnixMilli(first)
		d.LastSeen = time.UnixMilli(last)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Err returns the last error hit while recording monitor events.
func (h *DB) Err() error {
	h.errMu.Lock()
	defer h.errMu.Unlock()
	return h.lastErr
}

func (h *DB) keep(err error) {
	if err == nil {
		return
	}
	h.log.Error().Err(err).Msg("history write failed")
	h.errMu.Lock()
	h.lastErr = err
	h.errMu.Unlock()
}

// DeviceConnected implements monitor.Listener.
func (h *DB) DeviceConnected(e monitor.DeviceEvent) {
	h.keep(h.RecordTransition(monitor.KindConnected, e.Device, adb.StateUnknown, e.Device.State))
}

// DeviceDisconnected implements monitor.Listener.
func (h *DB) DeviceDisconnected(e monitor.DeviceEvent) {
	h.keep(h.RecordTransition(monitor.KindDisconnected, e.Device, adb.StateUnknown, e.Device.State))
}

// DeviceChanged implements monitor.Listener.
func (h *DB) DeviceChanged(e monitor.ChangeEvent) {
	h.keep(h.RecordTransition(monitor.KindChanged, e.Device, e.OldState, e.NewState))
}

// DeviceNotified implements monitor.Listener.
func (h *DB) DeviceNotified(e monitor.NotifyEvent) {
	h.keep(h.Touch(e.Devices))
}
