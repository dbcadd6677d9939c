package ipc

import (
	"errors"
	"fmt"
	"net"
	"time"
)

const requestTimeout = 5 * time.Second

// Client issues control requests to a running bridge. Each request dials
// its own connection, so a Client stays valid across bridge restarts.
type Client struct {
	socketPath string
}

// NewClient creates a client for the default per-user socket.
func NewClient() *Client {
	return &Client{socketPath: DefaultSocketPath()}
}

// NewClientWithPath creates a client for an explicit socket path.
func NewClientWithPath(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// IsRunning reports whether a bridge is listening on the socket.
func (c *Client) IsRunning() bool {
	conn, err := net.DialTimeout("unix", c.socketPath, time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Status fetches the session summary.
func (c *Client) Status() (*StatusResponse, error) {
	resp, err := c.request(NewStatusMessage())
	if err != nil {
		return nil, err
	}
	return GetStatusResponse(resp)
}

// Surfaces fetches the per-surface scale state.
func (c *Client) Surfaces() (*SurfacesResponse, error) {
	resp, err := c.request(NewSurfacesMessage())
	if err != nil {
		return nil, err
	}
	return GetSurfacesResponse(resp)
}

// Outputs fetches the advertised output list.
func (c *Client) Outputs() (*OutputsResponse, error) {
	resp, err := c.request(NewOutputsMessage())
	if err != nil {
		return nil, err
	}
	return GetOutputsResponse(resp)
}

// ResetOverride drops the negotiated override for one surface.
func (c *Client) ResetOverride(surfaceID uint32) (*ResetOverrideResponse, error) {
	msg, err := NewResetOverrideMessage(surfaceID)
	if err != nil {
		return nil, err
	}
	resp, err := c.request(msg)
	if err != nil {
		return nil, err
	}
	return GetResetOverrideResponse(resp)
}

func (c *Client) request(msg Message) (Message, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, requestTimeout)
	if err != nil {
		if isConnectionRefused(err) {
			return Message{}, fmt.Errorf("waybridge is not running")
		}
		return Message{}, fmt.Errorf("failed to connect to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(requestTimeout)); err != nil {
		return Message{}, fmt.Errorf("failed to set deadline: %w", err)
	}

	if err := writeMessage(conn, msg); err != nil {
		return Message{}, err
	}
	return readMessage(conn)
}

// isConnectionRefused covers both a missing socket file and a socket
// nobody is accepting on.
func isConnectionRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
