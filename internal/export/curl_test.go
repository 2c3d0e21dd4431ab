package export

import (
	"strings"
	"testing"

	"github.com/reqlens/reqlens/pkg/record"
)

func TestAsCurl_GET(t *testing.T) {
	rec := &record.Record{
		Method: "GET",
		URL:    "https://api.example.com/users",
		RequestHeaders: []record.Header{
			{Name: "Accept", Value: "application/json"},
		},
	}

	result := AsCurl(rec)
	if !strings.HasPrefix(result, "curl") {
		t.Error("should start with 'curl'")
	}
	if strings.Contains(result, "-X") {
		t.Error("GET should not have -X flag")
	}
	if !strings.Contains(result, "Accept: application/json") {
		t.Error("should contain Accept header")
	}
	if !strings.Contains(result, "https://api.example.com/users") {
		t.Error("should contain URL")
	}
}

func TestAsCurl_POST(t *testing.T) {
	rec := &record.Record{
		Method: "POST",
		URL:    "https://api.example.com/users",
		RequestHeaders: []record.Header{
			{Name: "Content-Type", Value: "application/json"},
		},
		RequestBody: `{"name":"test"}`,
	}

	result := AsCurl(rec)
	if !strings.Contains(result, "-X POST") {
		t.Error("should have -X POST")
	}
	if !strings.Contains(result, `-d '{"name":"test"}'`) {
		t.Errorf("should contain body data, got: %s", result)
	}
}

func TestAsCurl_HeaderOrderPreserved(t *testing.T) {
	rec := &record.Record{
		Method: "GET",
		URL:    "https://api.example.com/me",
		RequestHeaders: []record.Header{
			{Name: "X-First", Value: "1"},
			{Name: "X-Second", Value: "2"},
		},
	}

	result := AsCurl(rec)
	first := strings.Index(result, "X-First")
	second := strings.Index(result, "X-Second")
	if first < 0 || second < 0 || first > second {
		t.Errorf("headers out of order: %s", result)
	}
}

func TestAsCurl_SkipsTransportHeaders(t *testing.T) {
	rec := &record.Record{
		Method: "POST",
		URL:    "https://api.example.com/users",
		RequestHeaders: []record.Header{
			{Name: "Content-Length", Value: "15"},
			{Name: "Connection", Value: "keep-alive"},
		},
		RequestBody: `{"name":"test"}`,
	}

	result := AsCurl(rec)
	if strings.Contains(result, "Content-Length") || strings.Contains(result, "Connection") {
		t.Errorf("transport headers should be skipped, got: %s", result)
	}
}

func TestAsCurl_EscapesSingleQuotes(t *testing.T) {
	rec := &record.Record{
		Method:      "POST",
		URL:         "https://api.example.com/say",
		RequestBody: `it's fine`,
	}

	result := AsCurl(rec)
	if !strings.Contains(result, `it'\''s fine`) {
		t.Errorf("single quote not escaped: %s", result)
	}
}

func TestAsCurl_OmitsUnusableBodies(t *testing.T) {
	binary := &record.Record{
		Method:      "POST",
		URL:         "https://api.example.com/upload",
		RequestBody: record.BinaryBody,
	}
	if result := AsCurl(binary); strings.Contains(result, "-d") {
		t.Errorf("binary body should be omitted, got: %s", result)
	}

	truncated := &record.Record{
		Method:      "POST",
		URL:         "https://api.example.com/upload",
		RequestBody: "partial" + record.TruncationMark,
	}
	if result := AsCurl(truncated); strings.Contains(result, "-d") {
		t.Errorf("truncated body should be omitted, got: %s", result)
	}
}
