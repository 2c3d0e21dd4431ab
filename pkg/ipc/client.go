package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"sync"

	"github.com/reqlens/reqlens/pkg/record"
	"github.com/reqlens/reqlens/pkg/reqlog"
)

// Update is one snapshot push received from a server: the initial state on
// connect ("init") and the full current state after every store mutation
// ("update").
type Update struct {
	Kind string
	Logs reqlog.Snapshot
}

// Client is a viewer-side connection to a running instance.
type Client struct {
	nc            net.Conn
	logger        *slog.Logger
	discoveryPath string
	updates       chan Update

	writeMu sync.Mutex
	enc     *json.Encoder

	closed chan struct{}
	once   sync.Once
}

// ClientOption configures a Client before it connects.
type ClientOption func(*Client)

// WithClientLogger attaches a logger for connection diagnostics.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClientDiscoveryPath overrides where the discovery file is looked up.
func WithClientDiscoveryPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.discoveryPath = path
		}
	}
}

// Connect locates a running instance through its discovery record and dials
// it. Both a missing instance and a refused connection yield an error
// wrapping ErrNoInstance; the client never retries on its own.
func Connect(ctx context.Context, opts ...ClientOption) (*Client, error) {
	c := &Client{
		logger:  slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
		updates: make(chan Update, 16),
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	rec, err := Discover(c.discoveryPath)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", rec.Port))
	if err != nil {
		return nil, fmt.Errorf("%w: port %d not reachable: %v", ErrNoInstance, rec.Port, err)
	}
	c.nc = nc
	c.enc = json.NewEncoder(nc)
	c.logger.Debug("connected to instance", "pid", rec.PID, "port", rec.Port)

	go c.readLoop()
	return c, nil
}

// Updates returns the stream of snapshot pushes. The channel closes when
// the connection ends.
func (c *Client) Updates() <-chan Update { return c.updates }

// SendReplay asks the instance to re-issue the captured request.
func (c *Client) SendReplay(rec *record.Record) error {
	return c.send(frame{Type: frameReplay, Log: rec})
}

// SendClear asks the instance to empty its request log.
func (c *Client) SendClear() error {
	return c.send(frame{Type: frameClear})
}

func (c *Client) send(f frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.enc.Encode(f); err != nil {
		return fmt.Errorf("sending %s frame: %w", f.Type, err)
	}
	return nil
}

// Close drops the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.once.Do(func() {
		close(c.closed)
		c.nc.Close()
	})
	return nil
}

func (c *Client) readLoop() {
	defer close(c.updates)
	defer c.Close()

	r := bufio.NewReader(c.nc)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			c.handleFrame(line)
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) handleFrame(line []byte) {
	var f frame
	if err := json.Unmarshal(line, &f); err != nil {
		c.logger.Debug("dropping malformed frame", "error", err)
		return
	}
	switch f.Type {
	case frameInit, frameUpdate:
		u := Update{Kind: f.Type, Logs: f.Logs}
		select {
		case c.updates <- u:
		case <-c.closed:
		}
	default:
	}
}
