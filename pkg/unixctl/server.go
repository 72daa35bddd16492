package unixctl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/cuemby/ovncontroller/pkg/log"
	"github.com/cuemby/ovncontroller/pkg/metrics"
	"github.com/rs/zerolog"
)

// Request is one command invocation read off the control socket.
type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Response is the result written back for one Request.
type Response struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Handler executes one registered command and returns its textual result.
type Handler func(ctx context.Context, args []string) (string, error)

// Command is one entry in the control surface's dispatch table (spec.md
// §6). ReadOnly marks commands safe to run even while debug/pause has
// suspended the main loop, mirroring the teacher's ReadOnlyInterceptor
// distinction between List/Get-style calls and state-mutating ones.
type Command struct {
	Name     string
	ReadOnly bool
	Handler  Handler
}

// Server listens on a Unix-domain socket and dispatches line-delimited
// JSON requests to registered commands (spec.md §4.12).
type Server struct {
	path string

	mu       sync.RWMutex
	commands map[string]Command

	listener net.Listener
}

// NewServer creates a control-surface server for the Unix-domain socket at
// path. ListenAndServe removes a stale socket file left over from an
// unclean shutdown before binding.
func NewServer(path string) *Server {
	return &Server{path: path, commands: make(map[string]Command)}
}

// Register adds cmd to the dispatch table. Registering the same name twice
// replaces the prior handler.
func (s *Server) Register(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[cmd.Name] = cmd
}

// Commands returns the currently registered command names.
func (s *Server) Commands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.commands))
	for name := range s.commands {
		out = append(out, name)
	}
	return out
}

// ListenAndServe opens the control socket and serves connections until ctx
// is canceled. Each connection may carry multiple newline-delimited
// requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	_ = os.Remove(s.path)
	l, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("unixctl: listening on %s: %w", s.path, err)
	}
	s.listener = l
	defer l.Close()

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	componentLog := log.WithComponent("unixctl")
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return fmt.Errorf("unixctl: accept: %w", err)
		}
		go s.serveConn(ctx, conn, componentLog)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn, componentLog zerolog.Logger) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			_ = enc.Encode(Response{Error: fmt.Sprintf("unixctl: malformed request: %v", err)})
			continue
		}
		result, err := s.dispatch(ctx, req)
		if err != nil {
			metrics.UnixctlRequestsTotal.WithLabelValues(req.Command, "error").Inc()
			componentLog.Error().Err(err).Str("command", req.Command).Msg("unixctl command failed")
			_ = enc.Encode(Response{Error: err.Error()})
			continue
		}
		metrics.UnixctlRequestsTotal.WithLabelValues(req.Command, "ok").Inc()
		_ = enc.Encode(Response{Result: result})
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) (string, error) {
	s.mu.RLock()
	cmd, ok := s.commands[req.Command]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unixctl: unknown command %q", req.Command)
	}
	return cmd.Handler(ctx, req.Args)
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
