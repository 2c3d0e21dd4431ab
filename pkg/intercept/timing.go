package intercept

import (
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"

	"github.com/reqlens/reqlens/pkg/record"
)

// traceRecorder collects the lifecycle timestamps the transport exposes via
// httptrace. Phases whose signals never fire (IP literals skip DNS, reused
// connections skip connect) simply stay zero in the derived breakdown.
type traceRecorder struct {
	mu        sync.Mutex
	dnsStart  time.Time
	dnsDone   time.Time
	connStart time.Time
	connDone  time.Time
	tlsStart  time.Time
	tlsDone   time.Time
	gotConn   time.Time
	firstByte time.Time
}

func newTraceRecorder() *traceRecorder {
	return &traceRecorder{}
}

func (t *traceRecorder) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(_ httptrace.DNSStartInfo) {
			t.stamp(&t.dnsStart)
		},
		DNSDone: func(_ httptrace.DNSDoneInfo) {
			t.stamp(&t.dnsDone)
		},
		ConnectStart: func(_, _ string) {
			t.stamp(&t.connStart)
		},
		ConnectDone: func(_, _ string, _ error) {
			t.stamp(&t.connDone)
		},
		TLSHandshakeStart: func() {
			t.stamp(&t.tlsStart)
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, _ error) {
			t.stamp(&t.tlsDone)
		},
		GotConn: func(_ httptrace.GotConnInfo) {
			t.stamp(&t.gotConn)
		},
		GotFirstResponseByte: func() {
			t.stamp(&t.firstByte)
		},
	}
}

func (t *traceRecorder) stamp(at *time.Time) {
	t.mu.Lock()
	if at.IsZero() {
		*at = time.Now()
	}
	t.mu.Unlock()
}

// build derives the per-phase breakdown for an exchange that started at
// start and sealed at end. TLS handshake time counts toward connection
// establishment; time to first byte runs from the ready connection.
func (t *traceRecorder) build(start, end time.Time) *record.Timing {
	t.mu.Lock()
	defer t.mu.Unlock()

	timing := &record.Timing{Total: clampMs(end.Sub(start))}

	if !t.dnsStart.IsZero() && !t.dnsDone.IsZero() {
		timing.DNS = clampMs(t.dnsDone.Sub(t.dnsStart))
	}

	var connect time.Duration
	if !t.connStart.IsZero() && !t.connDone.IsZero() {
		connect = t.connDone.Sub(t.connStart)
	}
	if !t.tlsStart.IsZero() && !t.tlsDone.IsZero() {
		connect += t.tlsDone.Sub(t.tlsStart)
	}
	timing.TCP = clampMs(connect)

	if !t.gotConn.IsZero() && !t.firstByte.IsZero() {
		timing.TTFB = clampMs(t.firstByte.Sub(t.gotConn))
	}
	if !t.firstByte.IsZero() {
		timing.Download = clampMs(end.Sub(t.firstByte))
	}
	return timing
}

func clampMs(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
