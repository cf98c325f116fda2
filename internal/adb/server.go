package adb

import (
	"context"
	"fmt"
	"os/exec"
)

// Server controls the adb server process through the adb binary.
type Server struct {
	// Path is the adb executable; "adb" is looked up on PATH when empty.
	Path string
}

// NewServer creates a Server for the given adb executable.
func NewServer(path string) *Server {
	return &Server{Path: path}
}

func (s *Server) binary() string {
	if s.Path == "" {
		return "adb"
	}
	return s.Path
}

// StartServer starts the adb server if it is not running.
func (s *Server) StartServer(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, s.binary(), "start-server").CombinedOutput()
	if err != nil {
		return fmt.Errorf("adb start-server: %w\n%s", err, out)
	}
	return nil
}

// KillServer stops the adb server.
func (s *Server) KillServer(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, s.binary(), "kill-server").CombinedOutput()
	if err != nil {
		return fmt.Errorf("adb kill-server: %w\n%s", err, out)
	}
	return nil
}

// RestartServer kills the adb server and starts it again. A failed kill is
// ignored since the server is usually already gone.
func (s *Server) RestartServer(ctx context.Context) error {
	_ = s.KillServer(ctx)
	return s.StartServer(ctx)
}
