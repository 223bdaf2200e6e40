// Package transport implements the TCP client for the companion system
// service that publishes controller state.
//
// The protocol is a simple poll: the client writes a single request byte
// and the service answers with one JSON array of controller reports,
// terminated by the closing bracket. The connection is kept open between
// polls and re-dialed transparently after a failure.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/M1cha/periscope-viewer/pkg/errors"
	"github.com/M1cha/periscope-viewer/pkg/state"
)

// DefaultAddr is the companion service's listen address on the console.
const DefaultAddr = "127.0.0.1:2579"

// pollRequest asks the service for one state report.
const pollRequest = '1'

// wireController is the service's JSON encoding of one controller slot.
type wireController struct {
	ID        int       `json:"id"`
	Connected int       `json:"c"`
	Buttons   uint32    `json:"bs"`
	Left      wireStick `json:"ls"`
	Right     wireStick `json:"rs"`

	// Battery and Type are reported by newer service builds only.
	Battery *int `json:"b"`
	Type    *int `json:"t"`
}

type wireStick struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Client polls controller state from the companion service over TCP.
// It implements state.Source. A Client is not safe for concurrent use.
type Client struct {
	addr string
	dial func(ctx context.Context, addr string) (net.Conn, error)

	conn   net.Conn
	reader *bufio.Reader
}

// NewClient returns a client for the given address. No connection is made
// until the first Fetch.
func NewClient(addr string) *Client {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Client{
		addr: addr,
		dial: func(ctx context.Context, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp", addr)
		},
	}
}

// NewClientWithConn returns a client bound to an existing connection.
// Used by tests to inject an in-memory pipe.
func NewClientWithConn(conn net.Conn) *Client {
	return &Client{
		addr: conn.RemoteAddr().String(),
		dial: func(context.Context, string) (net.Conn, error) {
			return nil, net.ErrClosed
		},
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// Fetch polls the service once and returns a fresh snapshot. On any
// transport error the connection is dropped so the next call re-dials.
func (c *Client) Fetch(ctx context.Context) (*state.Snapshot, error) {
	reports, err := c.poll(ctx)
	if err != nil {
		c.Close()
		return nil, errors.E("transport.Fetch", errors.KindTransport, err)
	}

	controllers := make([]state.Controller, 0, len(reports))
	for _, w := range reports {
		controllers = append(controllers, decodeController(w))
	}
	return state.NewSnapshot(controllers, false), nil
}

func (c *Client) poll(ctx context.Context) ([]wireController, error) {
	if c.conn == nil {
		conn, err := c.dial(ctx, c.addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", c.addr, err)
		}
		c.conn = conn
		c.reader = bufio.NewReader(conn)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetDeadline(deadline); err != nil {
			return nil, err
		}
		defer c.conn.SetDeadline(time.Time{})
	}

	if _, err := c.conn.Write([]byte{pollRequest}); err != nil {
		return nil, fmt.Errorf("poll request: %w", err)
	}

	// The response is one JSON array; the closing bracket is the frame
	// delimiter.
	raw, err := c.reader.ReadBytes(']')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var reports []wireController
	if err := json.Unmarshal(raw, &reports); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return reports, nil
}

func decodeController(w wireController) state.Controller {
	c := state.Controller{
		ID:      w.ID,
		Status:  decodeStatus(w.Connected),
		Battery: state.BatteryUnknown,
		Buttons: w.Buttons,
		LeftX:   w.Left.X,
		LeftY:   w.Left.Y,
		RightX:  w.Right.X,
		RightY:  w.Right.Y,
	}
	if w.Battery != nil && *w.Battery >= 0 {
		c.Battery = *w.Battery
	}
	if w.Type != nil && *w.Type >= int(state.TypeUnknown) && *w.Type <= int(state.TypeHandheld) {
		c.Type = state.ControllerType(*w.Type)
	}
	return c
}

func decodeStatus(c int) state.ConnectionStatus {
	switch c {
	case 1:
		return state.StatusConnected
	case 2:
		return state.StatusPairing
	default:
		return state.StatusDisconnected
	}
}

// Close drops the connection. The client stays usable; the next Fetch
// re-dials.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}
