// Package reqlog maintains the bounded, ordered collection of captured
// exchanges. Records are inserted at the head as requests start, mutated by
// lifecycle events as each exchange progresses, and evicted strictly oldest
// first once the store is over capacity. Every mutation pushes a full
// snapshot, most recent first, to all subscribers.
package reqlog

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/reqlens/reqlens/pkg/event"
	"github.com/reqlens/reqlens/pkg/record"
)

// DefaultCapacity is the record cap used when none is configured.
const DefaultCapacity = 50

// Snapshot is the full ordered collection of current records, most recent
// first. Records in a snapshot are clones; holders may keep or mutate them
// freely.
type Snapshot []*record.Record

// Store is the request log. All methods are safe for concurrent use.
type Store struct {
	// notifyMu serializes mutation+notification so every subscriber sees
	// snapshots in mutation order. Subscribers may read the store from
	// their callback but must not mutate it synchronously.
	notifyMu sync.Mutex

	mu       sync.RWMutex
	capacity int
	records  []*record.Record // most recent first
	subs     map[int]func(Snapshot)
	nextSub  int

	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets the maximum number of records kept. Values below one
// are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithLogger attaches a logger for store-level diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty store with the default capacity of 50.
func New(opts ...Option) *Store {
	s := &Store{
		capacity: DefaultCapacity,
		subs:     make(map[int]func(Snapshot)),
		logger:   slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach subscribes the store to a bus so every published lifecycle event is
// applied. Returns the unsubscribe function.
func (s *Store) Attach(bus *event.Bus) (detach func()) {
	return bus.Subscribe(s.Apply)
}

// Apply folds one lifecycle event into the log. Events for ids the store no
// longer holds (already evicted) are dropped silently.
func (s *Store) Apply(ev event.Event) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	changed := s.apply(ev)
	var snap Snapshot
	if changed {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
}

func (s *Store) apply(ev event.Event) bool {
	if ev.Kind == event.RequestStart {
		rec := &record.Record{
			ID:             ev.ID,
			Method:         ev.Method,
			URL:            ev.URL,
			Scheme:         ev.Scheme,
			Host:           ev.Host,
			Path:           ev.Path,
			Status:         record.Pending(),
			StartTime:      ev.Time,
			RequestHeaders: append([]record.Header(nil), ev.Headers...),
		}
		s.records = append([]*record.Record{rec}, s.records...)
		if len(s.records) > s.capacity {
			s.records = s.records[:s.capacity]
		}
		return true
	}

	rec := s.find(ev.ID)
	if rec == nil {
		return false
	}

	switch ev.Kind {
	case event.RequestBody:
		if rec.RequestBody != "" {
			return false
		}
		rec.RequestBody = ev.Body
	case event.ResponseHeaders:
		if !rec.Status.IsPending() {
			return false
		}
		rec.Status = record.Code(ev.StatusCode)
		rec.ResponseHeaders = append([]record.Header(nil), ev.Headers...)
	case event.ResponseComplete:
		rec.ResponseBody = ev.Body
		rec.DurationMs = ev.DurationMs
	case event.RequestError:
		if !rec.Status.IsPending() {
			return false
		}
		rec.Status = record.Failed()
		rec.Error = ev.Err
		rec.DurationMs = ev.DurationMs
	case event.TimingUpdate:
		if rec.Timing != nil || ev.Timing == nil {
			return false
		}
		t := *ev.Timing
		rec.Timing = &t
	case event.SizeUpdate:
		if rec.Size != nil || ev.Size == nil {
			return false
		}
		sz := *ev.Size
		rec.Size = &sz
	default:
		return false
	}
	return true
}

func (s *Store) find(id string) *record.Record {
	for _, r := range s.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	snap := make(Snapshot, len(s.records))
	for i, r := range s.records {
		snap[i] = r.Clone()
	}
	return snap
}

func (s *Store) notify(snap Snapshot) {
	s.mu.RLock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		safeNotify(fn, snap)
	}
}

func safeNotify(fn func(Snapshot), snap Snapshot) {
	defer func() {
		_ = recover()
	}()
	fn(snap)
}

// GetAll returns the current snapshot, most recent first.
func (s *Store) GetAll() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// GetOne returns a clone of the record with the given id, or nil when the
// id is unknown or already evicted.
func (s *Store) GetOne(id string) *record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id).Clone()
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Capacity returns the configured record cap.
func (s *Store) Capacity() int { return s.capacity }

// Subscribe registers fn, delivers the current snapshot to it immediately,
// and returns an unsubscribe function. fn is then called with a fresh full
// snapshot after every mutation.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.notifyMu.Lock()
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	snap := s.snapshotLocked()
	s.mu.Unlock()

	safeNotify(fn, snap)
	s.notifyMu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Clear atomically empties the collection and notifies every subscriber
// with an empty snapshot.
func (s *Store) Clear() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()

	s.logger.Debug("request log cleared")
	s.notify(Snapshot{})
}
