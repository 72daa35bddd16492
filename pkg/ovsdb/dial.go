package ovsdb

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// Dialer manages one reconnecting connection to a database remote (the
// southbound logical-network database or the local virtual-switch
// database), mirroring the connection-management responsibilities of a
// pooled RPC client: automatic reconnect, exponential backoff, and a single
// shared connection handed out to every caller (spec.md §4.2, §6 "southbound
// connection").
type Dialer struct {
	name    string
	target  string // "tcp:host:port", "ssl:host:port", or "unix:/path/to/socket"
	mu      sync.Mutex
	conn    net.Conn
	backoff time.Duration
}

const (
	minBackoff = 200 * time.Millisecond
	maxBackoff = 8 * time.Second
)

// NewDialer creates a dialer for target, not yet connected.
func NewDialer(name, target string) *Dialer {
	return &Dialer{name: name, target: target, backoff: minBackoff}
}

// Conn returns the current connection, dialing (or redialing, with
// exponential backoff between attempts) if necessary.
func (d *Dialer) Conn(ctx context.Context) (net.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return d.conn, nil
	}

	network, address, err := splitTarget(d.target)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		d.sleepBackoff(ctx)
		return nil, fmt.Errorf("ovsdb: dial %s (%s): %w", d.name, d.target, err)
	}
	d.backoff = minBackoff
	d.conn = conn
	return conn, nil
}

// Connected reports whether a connection is currently established.
func (d *Dialer) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil
}

// Drop closes and forgets the current connection, so the next Conn call
// redials from scratch. Called when a read or write on the connection
// fails.
func (d *Dialer) Drop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		_ = d.conn.Close()
		d.conn = nil
	}
}

func (d *Dialer) sleepBackoff(ctx context.Context) {
	select {
	case <-time.After(d.backoff):
	case <-ctx.Done():
	}
	d.backoff *= 2
	if d.backoff > maxBackoff {
		d.backoff = maxBackoff
	}
}

func splitTarget(target string) (network, address string, err error) {
	for i := 0; i < len(target); i++ {
		if target[i] == ':' {
			scheme := target[:i]
			rest := target[i+1:]
			switch scheme {
			case "unix":
				return "unix", rest, nil
			case "tcp", "ssl":
				return "tcp", rest, nil
			default:
				return "", "", fmt.Errorf("ovsdb: unsupported remote scheme %q", scheme)
			}
		}
	}
	return "", "", fmt.Errorf("ovsdb: malformed remote %q", target)
}
