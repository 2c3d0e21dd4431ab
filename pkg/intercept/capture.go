package intercept

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/reqlens/reqlens/pkg/record"
)

// teeCapture observes a body stream on its way to the real consumer. Every
// byte and every error pass through unmodified; a bounded copy accumulates
// on the side. done fires exactly once, at EOF, at a read error, or at
// Close, whichever happens first, with the captured bytes and the total
// observed count. Request bodies are read on the transport's write goroutine
// while seal may be called from the caller's, hence the mutex.
type teeCapture struct {
	rc    io.ReadCloser
	limit int64
	once  sync.Once
	done  func(data []byte, observed int64)

	mu  sync.Mutex
	buf bytes.Buffer
	n   int64
}

func newTeeCapture(rc io.ReadCloser, limit int64, done func([]byte, int64)) *teeCapture {
	return &teeCapture{rc: rc, limit: limit, done: done}
}

func (t *teeCapture) Read(p []byte) (int, error) {
	n, err := t.rc.Read(p)
	if n > 0 {
		t.mu.Lock()
		t.n += int64(n)
		if room := t.limit - int64(t.buf.Len()); room > 0 {
			chunk := p[:n]
			if int64(len(chunk)) > room {
				chunk = chunk[:room]
			}
			t.buf.Write(chunk)
		}
		t.mu.Unlock()
	}
	if err != nil {
		t.seal()
	}
	return n, err
}

func (t *teeCapture) Close() error {
	err := t.rc.Close()
	t.seal()
	return err
}

func (t *teeCapture) seal() {
	t.once.Do(func() {
		t.mu.Lock()
		data := append([]byte(nil), t.buf.Bytes()...)
		n := t.n
		t.mu.Unlock()
		t.done(data, n)
	})
}

// materializeGetBody reads an independent copy of a replayable request body.
// Returns ok=false when the request has no GetBody, leaving capture to the
// tee path.
func materializeGetBody(req *http.Request, limit int64) (text string, ok bool) {
	if req.GetBody == nil {
		return "", false
	}
	rc, err := req.GetBody()
	if err != nil {
		return "", false
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return "", false
	}
	truncated := false
	if int64(len(data)) > limit {
		data = data[:limit]
		truncated = true
	}
	return materializeBody(data, truncated), true
}

// materializeBody turns captured bytes into the text stored on a record:
// best-effort UTF-8, the binary sentinel when the bytes are not text, and a
// truncation mark when the capture was cut short.
func materializeBody(data []byte, truncated bool) string {
	if len(data) == 0 {
		return ""
	}
	if truncated {
		// A cut mid-rune must not turn a text body into "binary".
		for i := 0; i < 3 && len(data) > 0 && !utf8.Valid(data); i++ {
			data = data[:len(data)-1]
		}
	}
	if !utf8.Valid(data) {
		return record.BinaryBody
	}
	if truncated {
		return string(data) + record.TruncationMark
	}
	return string(data)
}

// decodeBody reverses a Content-Encoding for display. ok=false means the
// encoding is unsupported or the data does not decode; callers keep the raw
// bytes in that case.
func decodeBody(data []byte, encoding string) (out []byte, ok bool) {
	switch encoding {
	case "", "identity":
		return data, true
	case "gzip", "x-gzip":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, false
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, false
		}
		return out, true
	case "deflate":
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		if r, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
			defer r.Close()
			if out, err := io.ReadAll(r); err == nil {
				return out, true
			}
		}
		fr := flate.NewReader(bytes.NewReader(data))
		defer fr.Close()
		out, err := io.ReadAll(fr)
		if err != nil {
			return nil, false
		}
		return out, true
	case "zstd":
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, false
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}
