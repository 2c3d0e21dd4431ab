package har

import (
	"strings"
	"testing"
)

func FuzzParse(f *testing.F) {
	f.Add([]byte(parseFixture))
	f.Add([]byte(`{"log":{"version":"1.2","entries":[{"startedDateTime":"2024-01-01T00:00:00Z","time":5,"request":{"method":"GET","url":"https://example.com/"},"response":{"status":200,"content":{"size":2,"text":"ok"}}}]}}`))
	f.Add([]byte(`{"log":{"entries":[{"request":{"method":"POST","url":"https://example.com/login","headers":[{"name":"Content-Type","value":"application/x-www-form-urlencoded"}],"postData":{"mimeType":"application/x-www-form-urlencoded","text":"user=ada&pass=s3cret"}},"response":{"status":302,"headers":[{"name":"Location","value":"/home"}],"content":{}}}]}}`))
	f.Add([]byte(`{"log":{"entries":[{"request":{"method":"GET","url":"https://h2.example.com/","headers":[{"name":":method","value":"GET"},{"name":":path","value":"/"},{"name":"accept","value":"*/*"}]},"response":{"status":204,"headers":[{"name":":status","value":"204"}],"content":{}}}]}}`))
	f.Add([]byte(`{"log":{"entries":[{"time":-7,"request":{"method":"get","url":"http://example.com/?q=1&q=2"},"response":{"status":500,"content":{"size":-1}},"timings":{"dns":-1,"connect":-1,"ssl":-1,"send":-1,"wait":-1,"receive":-1}}]}}`))
	f.Add([]byte(`{"log":{"entries":[{"request":{"method":"GET","url":"https://example.com/` + strings.Repeat("a", 4096) + `"},"response":{"status":200,"content":{}}}]}}`))
	f.Add([]byte("not json"))
	f.Add([]byte(""))
	f.Add([]byte("{}"))
	f.Add([]byte("null"))
	f.Add([]byte(`{"log":{"entries":[]}}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		snap, err := Parse(data)
		if err != nil {
			return
		}
		if len(snap) == 0 {
			t.Fatal("nil error with an empty snapshot")
		}
		for _, rec := range snap {
			if rec == nil {
				t.Fatal("nil record in snapshot")
			}
			if rec.ID == "" || rec.Method == "" || rec.URL == "" {
				t.Fatalf("incomplete record: id=%q method=%q url=%q", rec.ID, rec.Method, rec.URL)
			}
			if rec.Status.IsPending() {
				t.Fatalf("record %s parsed as pending", rec.ID)
			}
			if rec.DurationMs < 0 {
				t.Fatalf("negative duration %d", rec.DurationMs)
			}
			for _, h := range rec.RequestHeaders {
				if strings.HasPrefix(h.Name, ":") {
					t.Fatalf("pseudo-header %q survived", h.Name)
				}
			}
		}
	})
}
