package unixctl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client issues control-surface commands over a Unix-domain socket.
type Client struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *bufio.Scanner
}

// Dial connects to the control socket at path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("unixctl: dialing %s: %w", path, err)
	}
	return &Client{conn: conn, enc: json.NewEncoder(conn), dec: bufio.NewScanner(conn)}, nil
}

// Call issues one command and returns its result, or an error if the
// daemon reported one.
func (c *Client) Call(command string, args ...string) (string, error) {
	if err := c.enc.Encode(Request{Command: command, Args: args}); err != nil {
		return "", fmt.Errorf("unixctl: sending request: %w", err)
	}
	if !c.dec.Scan() {
		if err := c.dec.Err(); err != nil {
			return "", fmt.Errorf("unixctl: reading response: %w", err)
		}
		return "", fmt.Errorf("unixctl: connection closed before response")
	}
	var resp Response
	if err := json.Unmarshal(c.dec.Bytes(), &resp); err != nil {
		return "", fmt.Errorf("unixctl: malformed response: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%s", resp.Error)
	}
	return resp.Result, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }
