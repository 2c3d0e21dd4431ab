// Package intercept installs a transparent recording layer around the
// process's outbound HTTP transport. While installed, every request sent
// through http.DefaultTransport (and therefore http.Get, http.Post,
// http.DefaultClient and friends) is observed and reported as a sequence of
// lifecycle events on an event.Bus, without altering anything the caller or
// the server can see: same bytes sent, same bytes and errors delivered back,
// same timing behavior apart from the cost of copying into capture buffers.
//
// Applications that use their own http.Client must opt in explicitly by
// wrapping their transport with Interceptor.Transport; Go offers no way to
// reach into a privately held client, and reqlens does not try to.
package intercept

import (
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"

	"github.com/reqlens/reqlens/pkg/event"
)

// DefaultBodyLimit caps how many bytes of each body side are retained for a
// record. Delivery to the application is never limited.
const DefaultBodyLimit = 1 << 20

// Interceptor owns the process-wide registration of the outbound request
// factory for the lifetime of interception. The zero value is not usable;
// construct with New.
type Interceptor struct {
	bus       *event.Bus
	logger    *slog.Logger
	bodyLimit int64

	mu          sync.Mutex
	active      bool
	prevDefault http.RoundTripper
	prevClient  http.RoundTripper
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithBus publishes lifecycle events on an existing bus instead of a fresh
// one. Useful when several components share one subscription point.
func WithBus(b *event.Bus) Option {
	return func(i *Interceptor) {
		if b != nil {
			i.bus = b
		}
	}
}

// WithLogger attaches a logger for interceptor diagnostics. The hot path
// logs at debug level only.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interceptor) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithBodyLimit overrides the per-body capture cap. Values below one are
// ignored.
func WithBodyLimit(n int64) Option {
	return func(i *Interceptor) {
		if n > 0 {
			i.bodyLimit = n
		}
	}
}

// New returns an interceptor that is not yet installed.
func New(opts ...Option) *Interceptor {
	i := &Interceptor{
		bus:       event.NewBus(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
		bodyLimit: DefaultBodyLimit,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Events returns the bus carrying this interceptor's lifecycle events.
func (i *Interceptor) Events() *event.Bus { return i.bus }

// Install swaps the process default transport for the recording wrapper.
// The previous http.DefaultTransport and http.DefaultClient.Transport are
// saved and restored exactly by Uninstall. Calling Install on an already
// installed interceptor is a no-op.
func (i *Interceptor) Install() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.active {
		return
	}

	i.prevDefault = http.DefaultTransport
	i.prevClient = http.DefaultClient.Transport

	http.DefaultTransport = &roundTripper{interceptor: i, next: i.prevDefault}
	// A nil client transport falls through to http.DefaultTransport, which
	// is already wrapped; an explicitly set one needs its own wrapper.
	if i.prevClient != nil {
		http.DefaultClient.Transport = &roundTripper{interceptor: i, next: i.prevClient}
	}

	i.active = true
	i.logger.Debug("interceptor installed")
}

// Uninstall restores the transports saved by Install. Idempotent; calling
// it without a prior Install is a no-op.
func (i *Interceptor) Uninstall() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.active {
		return
	}

	http.DefaultTransport = i.prevDefault
	http.DefaultClient.Transport = i.prevClient
	i.prevDefault = nil
	i.prevClient = nil

	i.active = false
	i.logger.Debug("interceptor uninstalled")
}

// Active reports whether the interceptor currently owns the default
// transport.
func (i *Interceptor) Active() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active
}

// Transport wraps next so requests sent through it are recorded. This is
// the integration point for applications holding their own http.Client:
//
//	client.Transport = ic.Transport(client.Transport)
//
// A nil next uses the transport that was current before Install, or
// http.DefaultTransport when not installed, so wrapping never recurses into
// the interceptor itself.
func (i *Interceptor) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		i.mu.Lock()
		if i.active {
			next = i.prevDefault
		} else {
			next = http.DefaultTransport
		}
		i.mu.Unlock()
	}
	return &roundTripper{interceptor: i, next: next}
}
