// Package record defines the data model shared by the interception engine,
// the request log store, the IPC wire protocol, and the viewers: one Record
// per outbound exchange, with a tagged status, ordered headers, and optional
// timing and size detail.
package record

import (
	"net/http"
	"sort"
	"strings"
	"time"
)

// BinaryBody is stored in place of a request or response body that could not
// be interpreted as text.
const BinaryBody = "[binary data]"

// TruncationMark is appended to a captured body that exceeded the capture
// limit. Delivery to the application is never truncated, only the copy kept
// in the record.
const TruncationMark = "… [truncated]"

// Header is one header name/value pair. Records keep headers as an ordered
// slice rather than a map so duplicate names survive as a sequence of values
// and serialization order is stable.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Timing is the per-phase breakdown of an exchange, in milliseconds. Phases
// whose lifecycle signal was not observed are zero, not omitted.
type Timing struct {
	DNS      int64 `json:"dns"`
	TCP      int64 `json:"tcp"`
	TTFB     int64 `json:"ttfb"`
	Download int64 `json:"download"`
	Total    int64 `json:"total"`
}

// Size describes how many bytes an exchange moved. Transferred is the wire
// count (Content-Length when declared, observed bytes otherwise, possibly
// compressed); Resource is the decoded body length; Encoding is the
// Content-Encoding that applied, if any.
type Size struct {
	Transferred int64  `json:"transferred"`
	Resource    int64  `json:"resource"`
	Encoding    string `json:"encoding,omitempty"`
}

// Record is one captured exchange. A record is created when the request
// starts and mutated only through the defined transitions: status moves from
// pending to exactly one terminal value, headers are set once per side,
// bodies are sealed once, timing and size are set at most once. After the
// exchange completes or errors the record is immutable.
type Record struct {
	ID              string    `json:"id"`
	Method          string    `json:"method"`
	URL             string    `json:"url"`
	Scheme          string    `json:"scheme"`
	Host            string    `json:"host"`
	Path            string    `json:"path"`
	Status          Status    `json:"status"`
	StartTime       time.Time `json:"startTime"`
	DurationMs      int64     `json:"durationMs"`
	RequestHeaders  []Header  `json:"requestHeaders,omitempty"`
	ResponseHeaders []Header  `json:"responseHeaders,omitempty"`
	RequestBody     string    `json:"requestBody,omitempty"`
	ResponseBody    string    `json:"responseBody,omitempty"`
	Error           string    `json:"error,omitempty"`
	Timing          *Timing   `json:"timing,omitempty"`
	Size            *Size     `json:"size,omitempty"`
}

// Clone returns a deep copy. Snapshots handed to subscribers and IPC frames
// are built from clones so later store mutations cannot leak through.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.RequestHeaders = append([]Header(nil), r.RequestHeaders...)
	c.ResponseHeaders = append([]Header(nil), r.ResponseHeaders...)
	if r.Timing != nil {
		t := *r.Timing
		c.Timing = &t
	}
	if r.Size != nil {
		s := *r.Size
		c.Size = &s
	}
	return &c
}

// RequestHeader returns the first request header value matching name,
// case-insensitively.
func (r *Record) RequestHeader(name string) string {
	return GetHeader(r.RequestHeaders, name)
}

// ResponseHeader returns the first response header value matching name,
// case-insensitively.
func (r *Record) ResponseHeader(name string) string {
	return GetHeader(r.ResponseHeaders, name)
}

// GetHeader returns the first value whose name matches case-insensitively,
// or "" when absent.
func GetHeader(hs []Header, name string) string {
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// FromHTTPHeader flattens an http.Header into ordered pairs. Go's transport
// canonicalizes header names, so cross-name order is made deterministic by
// sorting; values within one name keep their received order.
func FromHTTPHeader(h http.Header) []Header {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Header, 0, len(h))
	for _, name := range names {
		for _, v := range h[name] {
			out = append(out, Header{Name: name, Value: v})
		}
	}
	return out
}

// ToHTTPHeader rebuilds an http.Header from ordered pairs, preserving
// repeated names as multi-values. Used by the replay executor.
func ToHTTPHeader(hs []Header) http.Header {
	h := make(http.Header, len(hs))
	for _, p := range hs {
		h.Add(p.Name, p.Value)
	}
	return h
}
