package adb

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		token string
		want  DeviceState
	}{
		{"device", StateOnline},
		{"offline", StateOffline},
		{"unauthorized", StateUnauthorized},
		{"bootloader", StateBootloader},
		{"recovery", StateRecovery},
		{"sideload", StateSideload},
		{"host", StateHost},
		{"DEVICE", StateOnline},
		{"something-new", StateUnknown},
		{"", StateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseState(tt.token))
		})
	}
}

func TestParseDevice_LongFormat(t *testing.T) {
	d, err := ParseDevice("1WMHH815K40123  device usb:1-4 product:hollywood model:Quest_2 device:hollywood transport_id:3")
	require.NoError(t, err)

	assert.Equal(t, "1WMHH815K40123", d.Serial)
	assert.Equal(t, StateOnline, d.State)
	assert.Equal(t, USB, d.ConnType)
	assert.Equal(t, "Quest_2", d.Model)
	assert.Equal(t, "hollywood", d.Product)
	assert.Equal(t, "hollywood", d.Name)
	assert.Equal(t, "3", d.TransportID)
	assert.Equal(t, "1-4", d.USB)
	assert.True(t, d.IsOnline())
}

func TestParseDevice_WiFi(t *testing.T) {
	d, err := ParseDevice("192.168.1.20:5555\toffline")
	require.NoError(t, err)
	assert.Equal(t, WiFi, d.ConnType)
	assert.Equal(t, StateOffline, d.State)
	assert.False(t, d.IsOnline())
}

func TestParseDevice_NoPermissions(t *testing.T) {
	d, err := ParseDevice("0123456789ABCDEF\tno permissions (user in plugdev group); see [http://developer.android.com/tools/device.html] usb:1-1 transport_id:7")
	require.NoError(t, err)
	assert.Equal(t, StateNoPermissions, d.State)
	assert.Equal(t, "1-1", d.USB)
	assert.Equal(t, "7", d.TransportID)
}

func TestParseDevice_Malformed(t *testing.T) {
	_, err := ParseDevice("lonely-serial")
	require.ErrorIs(t, err, ErrMalformedLine)
}

func TestParseDeviceList(t *testing.T) {
	devices := slices.Collect(ParseDeviceList("emulator-5554\tdevice\nZY223\tunauthorized\n"))
	require.Len(t, devices, 2)
	assert.Equal(t, "emulator-5554", devices[0].Serial)
	assert.Equal(t, StateOnline, devices[0].State)
	assert.Equal(t, "ZY223", devices[1].Serial)
	assert.Equal(t, StateUnauthorized, devices[1].State)
}

func TestParseDeviceList_SkipsBlankAndMalformed(t *testing.T) {
	payload := "\r\nA\tdevice\r\n\r\nbroken\r\nB\toffline\r\n"
	var serials []string
	for d := range ParseDeviceList(payload) {
		serials = append(serials, d.Serial)
	}
	assert.Equal(t, []string{"A", "B"}, serials)
}

func TestParseDeviceList_Empty(t *testing.T) {
	assert.Empty(t, slices.Collect(ParseDeviceList("")))
}

func TestParseDeviceList_StopsEarly(t *testing.T) {
	var seen int
	for range ParseDeviceList("A\tdevice\nB\tdevice\nC\tdevice\n") {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}
