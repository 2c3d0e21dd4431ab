// Package har reads and writes HAR 1.2, the capture interchange format
// browser devtools and most HTTP tooling agree on. Export turns a log
// snapshot into a HAR document; Parse turns a HAR file back into records the
// viewer can browse offline.
package har

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/reqlens/reqlens/pkg/record"
	"github.com/reqlens/reqlens/pkg/reqlog"
	"github.com/reqlens/reqlens/pkg/version"
)

// HAR is the document root.
type HAR struct {
	Log Log `json:"log"`
}

// Log is the top-level log object.
type Log struct {
	Version string   `json:"version"`
	Creator *Creator `json:"creator,omitempty"`
	Entries []Entry  `json:"entries"`
}

// Creator identifies the tool that wrote the file.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Entry is one request/response pair.
type Entry struct {
	StartedDateTime string   `json:"startedDateTime"`
	Time            float64  `json:"time"`
	Request         Request  `json:"request"`
	Response        Response `json:"response"`
	Timings         *Timings `json:"timings,omitempty"`
	Comment         string   `json:"comment,omitempty"`
}

// Request is the request half of an entry.
type Request struct {
	Method      string    `json:"method"`
	URL         string    `json:"url"`
	HTTPVersion string    `json:"httpVersion"`
	Headers     []Pair    `json:"headers"`
	QueryString []Pair    `json:"queryString"`
	PostData    *PostData `json:"postData,omitempty"`
	HeadersSize int       `json:"headersSize"`
	BodySize    int       `json:"bodySize"`
}

// Response is the response half of an entry.
type Response struct {
	Status      int     `json:"status"`
	StatusText  string  `json:"statusText"`
	HTTPVersion string  `json:"httpVersion"`
	Headers     []Pair  `json:"headers"`
	Content     Content `json:"content"`
	HeadersSize int     `json:"headersSize"`
	BodySize    int     `json:"bodySize"`
}

// Pair is a name/value element of a header or query list.
type Pair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PostData carries a request body.
type PostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Content carries a response body.
type Content struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Timings is the per-phase breakdown in milliseconds. Per the format, -1
// marks a phase that was not observed.
type Timings struct {
	DNS     float64 `json:"dns"`
	Connect float64 `json:"connect"`
	SSL     float64 `json:"ssl"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}

const startedFormat = "2006-01-02T15:04:05.000Z07:00"

// FromRecords builds a HAR document from a snapshot. The snapshot is newest
// first; entries come out oldest first, the order HAR readers expect.
// Pending records are skipped; an entry describes a finished exchange.
func FromRecords(snap reqlog.Snapshot) *HAR {
	entries := make([]Entry, 0, len(snap))
	for i := len(snap) - 1; i >= 0; i-- {
		if snap[i].Status.IsPending() {
			continue
		}
		entries = append(entries, buildEntry(snap[i]))
	}
	return &HAR{
		Log: Log{
			Version: "1.2",
			Creator: &Creator{Name: "reqlens", Version: version.Version},
			Entries: entries,
		},
	}
}

// Export writes the snapshot to w as indented HAR JSON and reports how many
// entries it wrote.
func Export(w io.Writer, snap reqlog.Snapshot) (int, error) {
	doc := FromRecords(snap)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding HAR: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return 0, fmt.Errorf("writing HAR: %w", err)
	}
	return len(doc.Log.Entries), nil
}

func buildEntry(rec *record.Record) Entry {
	e := Entry{
		StartedDateTime: rec.StartTime.UTC().Format(startedFormat),
		Time:            float64(rec.DurationMs),
		Request:         buildRequest(rec),
		Response:        buildResponse(rec),
		Timings:         buildTimings(rec),
	}
	if rec.Status.IsError() {
		e.Comment = "transport error: " + rec.Error
	}
	return e
}

func buildRequest(rec *record.Record) Request {
	r := Request{
		Method:      rec.Method,
		URL:         rec.URL,
		HTTPVersion: "HTTP/1.1",
		Headers:     toPairs(rec.RequestHeaders),
		QueryString: queryPairs(rec.URL),
		HeadersSize: -1,
		BodySize:    len(rec.RequestBody),
	}
	if rec.RequestBody != "" {
		mime := rec.RequestHeader("Content-Type")
		if mime == "" {
			mime = "text/plain"
		}
		r.PostData = &PostData{MimeType: mime, Text: rec.RequestBody}
	}
	return r
}

func buildResponse(rec *record.Record) Response {
	resp := Response{
		HTTPVersion: "HTTP/1.1",
		Headers:     toPairs(rec.ResponseHeaders),
		HeadersSize: -1,
		Content: Content{
			Size:     len(rec.ResponseBody),
			MimeType: rec.ResponseHeader("Content-Type"),
			Text:     rec.ResponseBody,
		},
	}
	// A transport failure has no response; status stays zero, the entry
	// comment carries the error.
	if !rec.Status.IsError() {
		resp.Status = rec.Status.Code
		resp.StatusText = http.StatusText(rec.Status.Code)
	}
	if rec.Size != nil {
		resp.BodySize = int(rec.Size.Transferred)
		if rec.Size.Resource > 0 {
			resp.Content.Size = int(rec.Size.Resource)
		}
	}
	return resp
}

func buildTimings(rec *record.Record) *Timings {
	if rec.Timing == nil {
		return &Timings{
			DNS:     -1,
			Connect: -1,
			SSL:     -1,
			Send:    0,
			Wait:    float64(rec.DurationMs),
			Receive: 0,
		}
	}
	// TLS setup is not measured separately from the connect phase.
	return &Timings{
		DNS:     float64(rec.Timing.DNS),
		Connect: float64(rec.Timing.TCP),
		SSL:     -1,
		Send:    0,
		Wait:    float64(rec.Timing.TTFB),
		Receive: float64(rec.Timing.Download),
	}
}

func toPairs(hs []record.Header) []Pair {
	pairs := make([]Pair, 0, len(hs))
	for _, h := range hs {
		pairs = append(pairs, Pair{Name: h.Name, Value: h.Value})
	}
	return pairs
}

// queryPairs splits the raw query in its original order. url.Values would
// reorder keys.
func queryPairs(rawURL string) []Pair {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return []Pair{}
	}
	var pairs []Pair
	for _, kv := range strings.Split(u.RawQuery, "&") {
		if kv == "" {
			continue
		}
		name, value, _ := strings.Cut(kv, "=")
		if n, err := url.QueryUnescape(name); err == nil {
			name = n
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		pairs = append(pairs, Pair{Name: name, Value: value})
	}
	if pairs == nil {
		return []Pair{}
	}
	return pairs
}
