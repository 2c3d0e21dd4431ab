// Package replay re-issues previously captured requests.
//
// A replayed request is rebuilt verbatim from the stored record: same
// method, same URL, same headers in their original order, same body. The
// copy goes out through the process's usual client, so an active
// interceptor records it as a brand-new exchange while the original record
// stays untouched. The response is read to completion and discarded;
// failures are logged and swallowed because the outcome of a replay is
// observed through the log, not through a return value.
package replay

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/reqlens/reqlens/pkg/record"
)

// Executor re-issues captured requests through an http.Client.
type Executor struct {
	client *http.Client
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithClient overrides the client used to send replays. The default is
// http.DefaultClient so replays flow through an installed interceptor.
func WithClient(c *http.Client) Option {
	return func(e *Executor) {
		if c != nil {
			e.client = c
		}
	}
}

// WithLogger attaches a logger for replay diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns a ready Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		client: http.DefaultClient,
		logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do re-issues the exchange described by rec. The record itself is never
// modified. All failures are swallowed; callers watch the request log for
// the replay's own entry.
func (e *Executor) Do(ctx context.Context, rec *record.Record) {
	if rec == nil || rec.URL == "" {
		return
	}

	method := rec.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if rec.RequestBody != "" {
		body = strings.NewReader(rec.RequestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, rec.URL, body)
	if err != nil {
		e.logger.Debug("replay request rejected", "id", rec.ID, "error", err)
		return
	}
	copyHeaders(req, rec.RequestHeaders)

	e.logger.Debug("replaying request", "id", rec.ID, "method", method, "url", rec.URL)

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("replay failed", "id", rec.ID, "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
}

// copyHeaders applies the captured headers to req, skipping the ones the
// transport manages itself. Content-Length in particular must be derived
// from the rebuilt body, not parroted from the original.
func copyHeaders(req *http.Request, headers []record.Header) {
	for _, h := range headers {
		switch http.CanonicalHeaderKey(h.Name) {
		case "Content-Length", "Connection", "Transfer-Encoding":
			continue
		case "Host":
			req.Host = h.Value
		default:
			req.Header.Add(h.Name, h.Value)
		}
	}
}
