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

// ReplayFunc handles an inbound replay command. The record is a parsed copy
// owned by the handler.
type ReplayFunc func(ctx context.Context, rec *record.Record)

// Server broadcasts store snapshots to connected viewers and accepts their
// replay and clear commands. It binds one loopback-only endpoint and
// publishes a discovery record so viewers can find it.
type Server struct {
	store         *reqlog.Store
	logger        *slog.Logger
	replay        ReplayFunc
	discoveryPath string

	mu      sync.Mutex
	ln      net.Listener
	conns   map[*serverConn]struct{}
	unsub   func()
	port    int
	started bool
	stopped bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger attaches a logger for connection-level diagnostics.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDiscoveryPath overrides the discovery file location. Intended for
// tests and for running several instances side by side.
func WithDiscoveryPath(path string) ServerOption {
	return func(s *Server) {
		if path != "" {
			s.discoveryPath = path
		}
	}
}

// WithReplayHandler sets the executor inbound replay frames are forwarded
// to. Without one, replay frames are dropped.
func WithReplayHandler(fn ReplayFunc) ServerOption {
	return func(s *Server) {
		s.replay = fn
	}
}

// NewServer returns a server broadcasting the given store. Start must be
// called before viewers can connect.
func NewServer(store *reqlog.Store, opts ...ServerOption) *Server {
	s := &Server{
		store:         store,
		logger:        slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
		discoveryPath: DefaultDiscoveryPath(),
		conns:         make(map[*serverConn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the loopback listener, writes the discovery record, and
// begins accepting viewers. The server stops when ctx is canceled or Stop
// is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("ipc server already started")
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("binding ipc listener: %w", err)
	}
	s.ln = ln
	s.port = ln.Addr().(*net.TCPAddr).Port

	if err := writeDiscovery(s.discoveryPath, s.port); err != nil {
		ln.Close()
		s.mu.Unlock()
		return err
	}
	s.started = true
	s.mu.Unlock()

	// Subscribing re-enters broadcast with the initial snapshot, so it must
	// happen outside the server lock.
	unsub := s.store.Subscribe(s.broadcast)
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		unsub()
		return nil
	}
	s.unsub = unsub
	s.mu.Unlock()

	s.logger.Info("ipc server listening", "port", s.port, "discovery", s.discoveryPath)

	go s.acceptLoop()
	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			s.Stop()
		}()
	}
	return nil
}

// Port returns the bound port, zero before Start.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Stop closes the listener and every viewer connection and removes the
// discovery record if this process still owns it. Idempotent.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	unsub := s.unsub
	ln := s.ln
	conns := make([]*serverConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	ln.Close()
	for _, c := range conns {
		c.close()
	}
	removeDiscovery(s.discoveryPath)
	s.logger.Info("ipc server stopped")
}

func (s *Server) acceptLoop() {
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.addConn(nc)
	}
}

func (s *Server) addConn(nc net.Conn) {
	c := &serverConn{
		srv:     s,
		nc:      nc,
		mailbox: make(chan reqlog.Snapshot, 1),
		closed:  make(chan struct{}),
	}

	// Snapshot under the same lock that registers the connection so no
	// update can fall between the init frame and the first broadcast.
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		nc.Close()
		return
	}
	c.init = s.store.GetAll()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug("viewer connected", "remote", nc.RemoteAddr().String())
	go c.writeLoop()
	go c.readLoop()
}

func (s *Server) dropConn(c *serverConn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// broadcast delivers a snapshot to every connection's mailbox. Mailboxes
// hold only the newest snapshot, so a slow viewer never blocks the store.
func (s *Server) broadcast(snap reqlog.Snapshot) {
	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.push(snap)
	}
}

type serverConn struct {
	srv     *Server
	nc      net.Conn
	init    reqlog.Snapshot
	mailbox chan reqlog.Snapshot
	closed  chan struct{}
	once    sync.Once
}

func (c *serverConn) close() {
	c.once.Do(func() {
		close(c.closed)
		c.nc.Close()
		c.srv.dropConn(c)
	})
}

// push replaces any undelivered snapshot with the newer one.
func (c *serverConn) push(snap reqlog.Snapshot) {
	for {
		select {
		case c.mailbox <- snap:
			return
		case <-c.closed:
			return
		default:
			select {
			case <-c.mailbox:
			default:
			}
		}
	}
}

func (c *serverConn) writeLoop() {
	defer c.close()

	enc := json.NewEncoder(c.nc)
	if err := enc.Encode(frame{Type: frameInit, Logs: c.init}); err != nil {
		return
	}
	c.init = nil

	for {
		select {
		case snap := <-c.mailbox:
			if err := enc.Encode(frame{Type: frameUpdate, Logs: snap}); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *serverConn) readLoop() {
	defer c.close()

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

func (c *serverConn) handleFrame(line []byte) {
	var f frame
	if err := json.Unmarshal(line, &f); err != nil {
		c.srv.logger.Debug("dropping malformed frame", "error", err)
		return
	}
	switch f.Type {
	case frameReplay:
		if f.Log == nil {
			return
		}
		if c.srv.replay == nil {
			c.srv.logger.Debug("replay frame dropped, no handler")
			return
		}
		c.srv.logger.Debug("replay requested", "id", f.Log.ID, "url", f.Log.URL)
		c.srv.replay(context.Background(), f.Log)
	case frameClear:
		c.srv.store.Clear()
	default:
		// Unknown frame types are ignored for forward compatibility.
	}
}
