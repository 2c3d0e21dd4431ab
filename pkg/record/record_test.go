package record

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestStatusWireShapes(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   string
	}{
		{"pending", Pending(), `"PENDING"`},
		{"error", Failed(), `"ERROR"`},
		{"http", Code(200), `200`},
		{"http 4xx stays a code", Code(404), `404`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.status)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}

			var back Status
			if err := json.Unmarshal(b, &back); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if back != tt.status {
				t.Errorf("round trip got %+v, want %+v", back, tt.status)
			}
		})
	}
}

func TestStatusUnmarshalRejectsUnknown(t *testing.T) {
	var s Status
	if err := json.Unmarshal([]byte(`"WAITING"`), &s); err == nil {
		t.Error("expected error for unknown status string")
	}
}

func TestRecordJSONShape(t *testing.T) {
	rec := Record{
		ID:         "abc",
		Method:     "GET",
		URL:        "https://example.com/posts/1",
		Scheme:     "https",
		Host:       "example.com",
		Path:       "/posts/1",
		Status:     Code(200),
		StartTime:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		DurationMs: 42,
		ResponseHeaders: []Header{
			{Name: "Content-Type", Value: "application/json"},
		},
		ResponseBody: `{"id":1}`,
	}
	b, err := json.Marshal(&rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"status":200`, `"responseBody":"{\"id\":1}"`, `"durationMs":42`} {
		if !strings.Contains(s, want) {
			t.Errorf("serialized record missing %s in %s", want, s)
		}
	}
	if strings.Contains(s, `"error"`) {
		t.Errorf("empty error should be omitted, got %s", s)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Record{
		ID:             "r1",
		Status:         Pending(),
		RequestHeaders: []Header{{Name: "Accept", Value: "*/*"}},
		Timing:         &Timing{Total: 10},
		Size:           &Size{Transferred: 100, Resource: 200},
	}
	c := orig.Clone()

	c.RequestHeaders[0].Value = "text/html"
	c.Timing.Total = 99
	c.Size.Resource = 1
	c.Status = Code(500)

	if orig.RequestHeaders[0].Value != "*/*" {
		t.Error("clone shares header backing array with original")
	}
	if orig.Timing.Total != 10 {
		t.Error("clone shares timing pointer with original")
	}
	if orig.Size.Resource != 200 {
		t.Error("clone shares size pointer with original")
	}
	if !orig.Status.IsPending() {
		t.Error("clone mutation changed original status")
	}
}

func TestHeaderConversion(t *testing.T) {
	h := http.Header{}
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")
	h.Set("Content-Type", "text/plain")

	pairs := FromHTTPHeader(h)
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	// Names sort deterministically; values keep received order.
	if pairs[1].Value != "a=1" || pairs[2].Value != "b=2" {
		t.Errorf("multi-value order lost: %+v", pairs)
	}

	back := ToHTTPHeader(pairs)
	if got := back.Values("Set-Cookie"); len(got) != 2 || got[0] != "a=1" {
		t.Errorf("ToHTTPHeader lost multi-values: %v", got)
	}

	if GetHeader(pairs, "content-type") != "text/plain" {
		t.Error("GetHeader should match case-insensitively")
	}
	if GetHeader(pairs, "X-Missing") != "" {
		t.Error("GetHeader should return empty string for absent names")
	}
}
