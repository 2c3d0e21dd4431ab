package export

import (
	"strings"

	"github.com/reqlens/reqlens/pkg/record"
)

// AsCurl converts a captured exchange to a curl command string. Headers keep
// their recorded order; bodies that were captured as binary or truncated
// cannot round-trip and are left out.
func AsCurl(rec *record.Record) string {
	var parts []string
	parts = append(parts, "curl")

	// Method
	if rec.Method != "" && rec.Method != "GET" {
		parts = append(parts, "-X", rec.Method)
	}

	// Headers
	for _, h := range rec.RequestHeaders {
		switch strings.ToLower(h.Name) {
		case "content-length", "connection":
			continue
		}
		parts = append(parts, "-H", quote(h.Name+": "+h.Value))
	}

	// Body
	if reproducibleBody(rec.RequestBody) {
		parts = append(parts, "-d", quote(rec.RequestBody))
	}

	parts = append(parts, quote(rec.URL))

	return strings.Join(parts, " ")
}

func reproducibleBody(body string) bool {
	if body == "" || body == record.BinaryBody {
		return false
	}
	return !strings.HasSuffix(body, record.TruncationMark)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
