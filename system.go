package reqlens

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reqlens/reqlens/internal/app"
	"github.com/reqlens/reqlens/internal/logging"
	"github.com/reqlens/reqlens/pkg/event"
	"github.com/reqlens/reqlens/pkg/intercept"
	"github.com/reqlens/reqlens/pkg/ipc"
	"github.com/reqlens/reqlens/pkg/record"
	"github.com/reqlens/reqlens/pkg/replay"
	"github.com/reqlens/reqlens/pkg/reqlog"
)

// Mode selects what Start does beyond installing the interceptor and
// serving IPC.
type Mode string

const (
	// ModeSilent serves IPC only. External viewers attach with the CLI.
	ModeSilent Mode = "silent"
	// ModeLog prints one structured log line per completed exchange.
	ModeLog Mode = "log"
	// ModeInline runs the terminal viewer inside the host process.
	ModeInline Mode = "inline"
)

// ModeEnv is the environment variable Start consults when no explicit mode
// was configured.
const ModeEnv = "REQLENS_MODE"

func modeFromEnv() Mode {
	switch strings.ToLower(os.Getenv(ModeEnv)) {
	case "inline":
		return ModeInline
	case "log":
		return ModeLog
	default:
		return ModeSilent
	}
}

type options struct {
	logger        *slog.Logger
	hasLogger     bool
	capacity      int
	bodyLimit     int64
	discoveryPath string
	mode          Mode
	theme         string
}

// Option configures a System.
type Option func(*options)

// WithLogger attaches a logger to every component. The default discards
// everything; ModeLog then builds its own text logger on stderr.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
			o.hasLogger = true
		}
	}
}

// WithCapacity bounds the request log. The default keeps 50 records.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithBodyLimit caps per-body capture size in bytes.
func WithBodyLimit(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.bodyLimit = n
		}
	}
}

// WithDiscoveryPath overrides where the IPC discovery file is written.
func WithDiscoveryPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.discoveryPath = path
		}
	}
}

// WithMode fixes the mode instead of reading REQLENS_MODE.
func WithMode(m Mode) Option {
	return func(o *options) {
		switch m {
		case ModeSilent, ModeLog, ModeInline:
			o.mode = m
		}
	}
}

// WithTheme names the color theme for the inline viewer.
func WithTheme(name string) Option {
	return func(o *options) {
		if name != "" {
			o.theme = name
		}
	}
}

// System bundles an interceptor, a request log, a replay executor and an
// optional IPC server into one lifecycle. Most applications use the
// package-level functions, which operate on a shared default System;
// NewSystem exists for tests and for hosts that need isolated instances.
type System struct {
	interceptor *intercept.Interceptor
	store       *reqlog.Store
	executor    *replay.Executor
	logger      *slog.Logger
	hasLogger   bool

	discoveryPath string
	mode          Mode
	theme         string

	mu         sync.Mutex
	server     *ipc.Server
	stopLog    func()
	viewer     *tea.Program
	viewerDone chan struct{}
}

// NewSystem wires a fresh interceptor, store and replay executor together.
// Nothing is installed or served until Install/Start.
func NewSystem(opts ...Option) *System {
	o := options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
		capacity:  reqlog.DefaultCapacity,
		bodyLimit: intercept.DefaultBodyLimit,
		mode:      modeFromEnv(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	ic := intercept.New(
		intercept.WithLogger(o.logger),
		intercept.WithBodyLimit(o.bodyLimit),
	)
	store := reqlog.New(
		reqlog.WithCapacity(o.capacity),
		reqlog.WithLogger(o.logger),
	)
	store.Attach(ic.Events())

	return &System{
		interceptor:   ic,
		store:         store,
		executor:      replay.New(replay.WithLogger(o.logger)),
		logger:        o.logger,
		hasLogger:     o.hasLogger,
		discoveryPath: o.discoveryPath,
		mode:          o.mode,
		theme:         o.theme,
	}
}

// Install begins interception of the process default transport.
func (s *System) Install() { s.interceptor.Install() }

// Uninstall restores the transports Install replaced.
func (s *System) Uninstall() { s.interceptor.Uninstall() }

// Active reports whether interception is currently installed.
func (s *System) Active() bool { return s.interceptor.Active() }

// Transport wraps next so a custom http.Client participates in recording.
func (s *System) Transport(next http.RoundTripper) http.RoundTripper {
	return s.interceptor.Transport(next)
}

// Events returns the lifecycle event bus.
func (s *System) Events() *event.Bus { return s.interceptor.Events() }

// Log returns the request log store.
func (s *System) Log() *reqlog.Store { return s.store }

// Replay re-issues a captured request. The record is not modified and
// failures are swallowed; watch the log for the replay's own entry.
func (s *System) Replay(ctx context.Context, rec *record.Record) {
	s.executor.Do(ctx, rec)
}

// StartIPC begins serving snapshots to local viewers. Calling it while a
// server is already running is a no-op.
func (s *System) StartIPC(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return nil
	}
	srv := ipc.NewServer(s.store,
		ipc.WithServerLogger(s.logger),
		ipc.WithDiscoveryPath(s.discoveryPath),
		ipc.WithReplayHandler(s.executor.Do),
	)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	s.server = srv
	return nil
}

// StopIPC shuts down the IPC server if one is running.
func (s *System) StopIPC() {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv != nil {
		srv.Stop()
	}
}

// Start is the one-call entry point: install the interceptor, serve IPC,
// then do whatever the mode asks. Returns without blocking; the inline
// viewer runs on its own goroutine.
func (s *System) Start(ctx context.Context) error {
	s.Install()
	if err := s.StartIPC(ctx); err != nil {
		s.Uninstall()
		return err
	}
	switch s.mode {
	case ModeLog:
		s.startLogMode()
	case ModeInline:
		s.startViewer(ctx)
	}
	return nil
}

// Stop tears down everything Start set up, in reverse order.
func (s *System) Stop() {
	s.mu.Lock()
	if s.stopLog != nil {
		s.stopLog()
		s.stopLog = nil
	}
	viewer, done := s.viewer, s.viewerDone
	s.viewer, s.viewerDone = nil, nil
	s.mu.Unlock()

	if viewer != nil {
		viewer.Quit()
		<-done
	}
	s.StopIPC()
	s.Uninstall()
}

func (s *System) startLogMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopLog != nil {
		return
	}

	logger := s.logger
	if !s.hasLogger {
		logger = logging.New(logging.Config{Level: logging.LevelInfo, Format: logging.FormatText, Output: os.Stderr})
	}

	// The store subscribes to the bus first, so by the time this handler
	// sees a terminal event the record already reflects it.
	s.stopLog = s.interceptor.Events().Subscribe(func(e event.Event) {
		switch e.Kind {
		case event.ResponseComplete, event.RequestError:
		default:
			return
		}
		rec := s.store.GetOne(e.ID)
		if rec == nil {
			return
		}
		attrs := []any{
			"method", rec.Method,
			"url", rec.URL,
			"status", rec.Status.String(),
			"durationMs", rec.DurationMs,
		}
		if rec.Size != nil {
			attrs = append(attrs, "bytes", rec.Size.Transferred)
		}
		if rec.Error != "" {
			attrs = append(attrs, "error", rec.Error)
		}
		logger.Info("exchange complete", attrs...)
	})
}

func (s *System) startViewer(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewer != nil {
		return
	}

	feed := app.NewStoreFeed(s.store, s.executor.Do)
	model := app.New(
		app.WithFeed(feed),
		app.WithTheme(s.theme),
		app.WithLogger(s.logger),
	)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	done := make(chan struct{})
	s.viewer = p
	s.viewerDone = done

	go func() {
		defer close(done)
		if _, err := p.Run(); err != nil {
			s.logger.Debug("inline viewer exited", "error", err)
		}
	}()
}
