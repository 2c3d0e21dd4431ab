// Package event provides the ordered, synchronous publish point carrying
// request lifecycle events from the interception engine to everything
// downstream. Handlers run to completion in subscription order on the
// publishing goroutine; a panicking handler is isolated and never disturbs
// the intercepted exchange.
package event

import (
	"time"

	"github.com/reqlens/reqlens/pkg/record"
)

// Kind identifies a lifecycle event.
type Kind uint8

const (
	// RequestStart is emitted synchronously before the request is handed to
	// the underlying transport.
	RequestStart Kind = iota
	// RequestBody carries the materialized outbound body. Not emitted for
	// empty bodies.
	RequestBody
	// ResponseHeaders carries the status code and ordered response headers.
	ResponseHeaders
	// ResponseComplete seals the exchange: materialized response body and
	// final duration.
	ResponseComplete
	// RequestError is the terminal event for a transport failure. HTTP
	// error statuses do not produce it.
	RequestError
	// TimingUpdate carries the per-phase breakdown once the body finished.
	TimingUpdate
	// SizeUpdate carries transferred/decoded byte counts and the encoding.
	SizeUpdate
)

var kindNames = [...]string{
	RequestStart:     "request-start",
	RequestBody:      "request-body",
	ResponseHeaders:  "response-headers",
	ResponseComplete: "response-complete",
	RequestError:     "request-error",
	TimingUpdate:     "timing-update",
	SizeUpdate:       "size-update",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is one lifecycle event. Kind and ID are always set; the remaining
// fields are populated per kind as documented.
type Event struct {
	Kind Kind
	ID   string

	// RequestStart.
	Method  string
	URL     string
	Scheme  string
	Host    string
	Path    string
	Time    time.Time
	Headers []record.Header // also ResponseHeaders

	// RequestBody; the materialized response body on ResponseComplete.
	Body string

	// ResponseHeaders.
	StatusCode int

	// ResponseComplete and RequestError.
	DurationMs int64
	Err        string // RequestError only

	Timing *record.Timing // TimingUpdate
	Size   *record.Size   // SizeUpdate
}
