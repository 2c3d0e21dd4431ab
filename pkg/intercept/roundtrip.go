package intercept

import (
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/google/uuid"

	"github.com/reqlens/reqlens/pkg/event"
	"github.com/reqlens/reqlens/pkg/record"
)

// roundTripper is the recording wrapper. One RoundTrip call is one exchange:
// it emits request-start synchronously before delegating, observes both body
// streams without consuming them, and seals the exchange with either the
// response-complete sequence or request-error.
type roundTripper struct {
	interceptor *Interceptor
	next        http.RoundTripper
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	i := rt.interceptor
	bus := i.bus

	id := uuid.New().String()
	start := time.Now()
	shape := normalizeRequest(req)

	bus.Publish(event.Event{
		Kind:    event.RequestStart,
		ID:      id,
		Method:  shape.method,
		URL:     shape.url,
		Scheme:  shape.scheme,
		Host:    shape.host,
		Path:    shape.path,
		Time:    start,
		Headers: record.FromHTTPHeader(req.Header),
	})

	trace := newTraceRecorder()
	outReq := req.WithContext(httptrace.WithClientTrace(req.Context(), trace.clientTrace()))

	// Outbound body. When the request is replayable (GetBody set, as for
	// every bytes/strings-backed request), materialize from an independent
	// copy up front: the transport may never read the body at all on a
	// connect failure, and the record still needs it. Streaming bodies are
	// observed with a tee instead.
	var reqTee *teeCapture
	if text, ok := materializeGetBody(req, i.bodyLimit); ok {
		if text != "" {
			bus.Publish(event.Event{Kind: event.RequestBody, ID: id, Body: text})
		}
	} else if req.Body != nil && req.Body != http.NoBody {
		reqTee = newTeeCapture(req.Body, i.bodyLimit, func(data []byte, observed int64) {
			text := materializeBody(data, observed > int64(len(data)))
			if text != "" {
				bus.Publish(event.Event{Kind: event.RequestBody, ID: id, Body: text})
			}
		})
		outReq.Body = reqTee
	}

	resp, err := rt.next.RoundTrip(outReq)

	if err != nil {
		if reqTee != nil {
			reqTee.seal()
		}
		bus.Publish(event.Event{
			Kind:       event.RequestError,
			ID:         id,
			Err:        err.Error(),
			DurationMs: time.Since(start).Milliseconds(),
		})
		return resp, err
	}

	// The transport has the full request by now; make sure the body event
	// precedes response-headers even if the tee never saw EOF.
	if reqTee != nil {
		reqTee.seal()
	}

	bus.Publish(event.Event{
		Kind:       event.ResponseHeaders,
		ID:         id,
		StatusCode: resp.StatusCode,
		Headers:    record.FromHTTPHeader(resp.Header),
	})

	// The exchange seals when the application finishes with the body: EOF,
	// read error, or close, whichever comes first.
	inner := resp.Body
	resp.Body = newTeeCapture(inner, i.bodyLimit, func(data []byte, observed int64) {
		rt.finish(id, start, trace, resp, data, observed)
	})
	return resp, nil
}

// finish derives timing and size detail and publishes the terminal event
// sequence for a successful exchange.
func (rt *roundTripper) finish(id string, start time.Time, trace *traceRecorder, resp *http.Response, data []byte, observed int64) {
	i := rt.interceptor
	end := time.Now()
	durationMs := end.Sub(start).Milliseconds()

	encoding := resp.Header.Get("Content-Encoding")
	if encoding == "" && resp.Uncompressed {
		// The transport decompressed transparently and stripped the header.
		encoding = "gzip"
	}

	truncated := observed > int64(len(data))
	body := data
	resource := observed
	if encoding != "" && !resp.Uncompressed {
		if decoded, ok := decodeBody(data, encoding); ok {
			body = decoded
			truncated = false
			resource = int64(len(decoded))
		}
	}

	transferred := observed
	if resp.ContentLength >= 0 {
		transferred = resp.ContentLength
	}

	var text string
	if int64(len(body)) > i.bodyLimit {
		text = materializeBody(body[:i.bodyLimit], true)
	} else {
		text = materializeBody(body, truncated)
	}

	bus := i.bus
	bus.Publish(event.Event{
		Kind:   event.TimingUpdate,
		ID:     id,
		Timing: trace.build(start, end),
	})
	bus.Publish(event.Event{
		Kind: event.SizeUpdate,
		ID:   id,
		Size: &record.Size{Transferred: transferred, Resource: resource, Encoding: encoding},
	})
	bus.Publish(event.Event{
		Kind:       event.ResponseComplete,
		ID:         id,
		Body:       text,
		DurationMs: durationMs,
	})

	i.logger.Debug("exchange complete",
		"id", id,
		"status", resp.StatusCode,
		"durationMs", durationMs,
	)
}

// normalized is the canonical shape every call form reduces to. In Go all
// request constructors funnel into an *http.Request before reaching a
// RoundTripper, so one read covers http.Get, http.Post, client.Do, and
// hand-built requests alike.
type normalized struct {
	method string
	url    string
	scheme string
	host   string
	path   string
}

func normalizeRequest(req *http.Request) normalized {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	scheme := req.URL.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	return normalized{
		method: method,
		url:    req.URL.String(),
		scheme: scheme,
		host:   host,
		path:   path,
	}
}
