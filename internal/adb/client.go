package adb

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Client issues one-shot host requests to the adb server. Each call opens
// its own connection, since the server closes host connections after replying.
type Client struct {
	Addr string
}

// NewClient creates a new ADB client for the server at addr.
func NewClient(addr string) *Client {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Client{Addr: addr}
}

func (c *Client) query(ctx context.Context, request string) (string, error) {
	s, err := Dial(ctx, c.Addr)
	if err != nil {
		return "", err
	}
	defer s.Close()

	if err := s.SendRequest(request); err != nil {
		return "", err
	}
	if err := s.ReadResponse(); err != nil {
		return "", fmt.Errorf("%s: %w", request, err)
	}
	out, err := s.ReadString()
	if err != nil {
		return "", fmt.Errorf("%s: %w", request, err)
	}
	return out, nil
}

// Devices returns all devices known to the adb server.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	out, err := c.query(ctx, "host:devices-l")
	if err != nil {
		return nil, err
	}
	return slices.Collect(ParseDeviceList(out)), nil
}

// Version returns the adb server's protocol version.
func (c *Client) Version(ctx context.Context) (int, error) {
	out, err := c.query(ctx, "host:version")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(out), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parse version %q: %w", out, err)
	}
	return int(v), nil
}

// Connect connects to a wireless ADB device.
func (c *Client) Connect(ctx context.Context, ip string, port int) error {
	addr := fmt.Sprintf("%s:%d", ip, port)
	out, err := c.query(ctx, "host:connect:"+addr)
	if err != nil {
		return fmt.Errorf("adb connect %s: %w", addr, err)
	}
	if strings.Contains(out, "connected") {
		return nil
	}
	return fmt.Errorf("adb connect %s: %s", addr, strings.TrimSpace(out))
}
