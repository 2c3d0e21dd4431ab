package har

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reqlens/reqlens/pkg/record"
	"github.com/reqlens/reqlens/pkg/reqlog"
)

// Parse reads a HAR document into a snapshot, newest first, the order the
// viewer expects. Entries without a method or URL are skipped; a document
// with no usable entries is an error.
func Parse(data []byte) (reqlog.Snapshot, error) {
	var doc HAR
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing HAR: %w", err)
	}
	if len(doc.Log.Entries) == 0 {
		return nil, fmt.Errorf("HAR log contains no entries")
	}

	recs := make([]*record.Record, 0, len(doc.Log.Entries))
	for _, entry := range doc.Log.Entries {
		if rec := entryToRecord(entry); rec != nil {
			recs = append(recs, rec)
		}
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("HAR log contains no usable entries")
	}

	// File order is oldest first; the snapshot wants newest first.
	snap := make(reqlog.Snapshot, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		snap = append(snap, recs[i])
	}
	return snap, nil
}

func entryToRecord(entry Entry) *record.Record {
	method := strings.ToUpper(strings.TrimSpace(entry.Request.Method))
	rawURL := strings.TrimSpace(entry.Request.URL)
	if method == "" || rawURL == "" {
		return nil
	}

	durationMs := int64(entry.Time)
	if durationMs < 0 {
		durationMs = 0
	}

	rec := &record.Record{
		ID:              uuid.NewString(),
		Method:          method,
		URL:             rawURL,
		Status:          record.Code(entry.Response.Status),
		DurationMs:      durationMs,
		RequestHeaders:  fromPairs(entry.Request.Headers),
		ResponseHeaders: fromPairs(entry.Response.Headers),
		ResponseBody:    entry.Response.Content.Text,
	}
	if u, err := url.Parse(rawURL); err == nil {
		rec.Scheme = u.Scheme
		rec.Host = u.Host
		rec.Path = u.Path
	}
	if t, err := time.Parse(time.RFC3339, entry.StartedDateTime); err == nil {
		rec.StartTime = t
	}
	if entry.Request.PostData != nil {
		rec.RequestBody = entry.Request.PostData.Text
	}

	// A zero status is how exporters mark an exchange that never got a
	// response.
	if entry.Response.Status == 0 {
		rec.Status = record.Failed()
		rec.Error = strings.TrimPrefix(entry.Comment, "transport error: ")
		if rec.Error == "" {
			rec.Error = "transport error"
		}
	}

	if tm := entry.Timings; tm != nil {
		rec.Timing = &record.Timing{
			DNS:      clampMs(tm.DNS),
			TCP:      clampMs(tm.Connect) + clampMs(tm.SSL),
			TTFB:     clampMs(tm.Wait),
			Download: clampMs(tm.Receive),
			Total:    durationMs,
		}
	}
	if entry.Response.BodySize > 0 || entry.Response.Content.Size > 0 {
		size := &record.Size{
			Resource: int64(entry.Response.Content.Size),
			Encoding: rec.ResponseHeader("Content-Encoding"),
		}
		if entry.Response.BodySize > 0 {
			size.Transferred = int64(entry.Response.BodySize)
		} else {
			size.Transferred = size.Resource
		}
		rec.Size = size
	}
	return rec
}

// fromPairs converts a HAR name/value list into record headers. Names
// starting with ":" are HTTP/2 pseudo-headers and are dropped.
func fromPairs(pairs []Pair) []record.Header {
	var hs []record.Header
	for _, p := range pairs {
		if p.Name == "" || strings.HasPrefix(p.Name, ":") {
			continue
		}
		hs = append(hs, record.Header{Name: p.Name, Value: p.Value})
	}
	return hs
}

// clampMs folds the format's -1 "not observed" marker to zero.
func clampMs(v float64) int64 {
	if v < 0 {
		return 0
	}
	return int64(v)
}
