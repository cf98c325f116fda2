package adb

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer accepts connections and hands each one to handle.
func fakeServer(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				handle(conn)
			}()
		}
	}()
	return ln.Addr().String()
}

func readRequest(r *bufio.Reader) (string, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", err
	}
	var n int
	if _, err := fmt.Sscanf(string(hdr[:]), "%04x", &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func frame(s string) string {
	return fmt.Sprintf("%04X%s", len(s), s)
}

func TestSocket_RequestResponse(t *testing.T) {
	requests := make(chan string, 1)
	addr := fakeServer(t, func(conn net.Conn) {
		req, err := readRequest(bufio.NewReader(conn))
		if err != nil {
			return
		}
		requests <- req
		io.WriteString(conn, "OKAY"+frame("emulator-5554\tdevice\n"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SendRequest("host:track-devices"))
	assert.Equal(t, "host:track-devices", <-requests)
	require.NoError(t, s.ReadResponse())

	payload, err := s.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "emulator-5554\tdevice\n", payload)
}

func TestSocket_Fail(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		if _, err := readRequest(bufio.NewReader(conn)); err != nil {
			return
		}
		io.WriteString(conn, "FAIL"+frame("unknown host service"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SendRequest("host:bogus"))
	err = s.ReadResponse()
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "unknown host service", serverErr.Message)
}

func TestSocket_EOFIsConnectionReset(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		// hang up immediately
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.ReadString()
	require.ErrorIs(t, err, ErrConnectionReset)
}

func TestSocket_CloseUnblocksRead(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		io.Copy(io.Discard, conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Dial(ctx, addr)
	require.NoError(t, err)

	errs := make(chan error, 1)
	go func() {
		_, err := s.ReadString()
		errs <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	select {
	case err := <-errs:
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrConnectionReset)
	case <-time.After(5 * time.Second):
		t.Fatal("read did not return after Close")
	}

	assert.ErrorIs(t, s.SendRequest("host:version"), ErrClosed)
	assert.ErrorIs(t, s.Reconnect(ctx), ErrClosed)
}

func TestSocket_Reconnect(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		if _, err := readRequest(bufio.NewReader(conn)); err != nil {
			return
		}
		io.WriteString(conn, "OKAY")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Reconnect(ctx))
	require.NoError(t, s.SendRequest("host:track-devices"))
	require.NoError(t, s.ReadResponse())
}

func TestClient_DevicesAndVersion(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn) {
		req, err := readRequest(bufio.NewReader(conn))
		if err != nil {
			return
		}
		switch req {
		case "host:devices-l":
			io.WriteString(conn, "OKAY"+frame("A\tdevice model:Quest_3\nB\toffline\n"))
		case "host:version":
			io.WriteString(conn, "OKAY"+frame("0029"))
		case "host:connect:10.0.0.5:5555":
			io.WriteString(conn, "OKAY"+frame("connected to 10.0.0.5:5555"))
		default:
			io.WriteString(conn, "FAIL"+frame("unknown"))
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewClient(addr)
	devices, err := c.Devices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "Quest_3", devices[0].Model)
	assert.Equal(t, StateOffline, devices[1].State)

	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 41, v)

	require.NoError(t, c.Connect(ctx, "10.0.0.5", 5555))
}
