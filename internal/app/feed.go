package app

import (
	"context"
	"errors"
	"sync"

	"github.com/reqlens/reqlens/pkg/ipc"
	"github.com/reqlens/reqlens/pkg/record"
	"github.com/reqlens/reqlens/pkg/reqlog"
)

// Update is one push from the log source: the full snapshot after a change,
// newest first.
type Update struct {
	Kind string // "init" for the first snapshot, "update" after
	Logs reqlog.Snapshot
}

// Feed is the viewer's connection to a request log. The inline viewer feeds
// straight from the in-process store; the standalone viewer feeds from an
// IPC client attached to another process.
type Feed interface {
	// Updates delivers snapshots until the feed closes.
	Updates() <-chan Update

	// Replay re-issues the captured request. The resulting exchange shows
	// up through Updates like any other.
	Replay(rec *record.Record) error

	// Clear empties the log.
	Clear() error

	// Source is a short label for the status bar.
	Source() string

	// Capacity is the log's record cap, or 0 when unknown.
	Capacity() int

	// Close releases the feed. Updates is closed soon after.
	Close() error
}

// storeFeed adapts an in-process store. Store subscribers run on the
// recording path, so pushes must never block: the channel holds only the
// latest snapshot and stale ones are dropped, which is fine because every
// snapshot is complete.
type storeFeed struct {
	store  *reqlog.Store
	replay func(context.Context, *record.Record)
	ch     chan Update

	mu          sync.Mutex
	closed      bool
	sentInit    bool
	unsubscribe func()
}

// NewStoreFeed returns a feed over the in-process store. replay is invoked
// for Replay calls and may be nil.
func NewStoreFeed(store *reqlog.Store, replay func(context.Context, *record.Record)) Feed {
	f := &storeFeed{
		store:  store,
		replay: replay,
		ch:     make(chan Update, 1),
	}
	f.unsubscribe = store.Subscribe(f.push)
	return f
}

func (f *storeFeed) push(snap reqlog.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	kind := "update"
	if !f.sentInit {
		kind = "init"
		f.sentInit = true
	}
	u := Update{Kind: kind, Logs: snap}

	select {
	case f.ch <- u:
	default:
		select {
		case <-f.ch:
		default:
		}
		select {
		case f.ch <- u:
		default:
		}
	}
}

func (f *storeFeed) Updates() <-chan Update { return f.ch }

func (f *storeFeed) Replay(rec *record.Record) error {
	if f.replay != nil && rec != nil {
		f.replay(context.Background(), rec)
	}
	return nil
}

func (f *storeFeed) Clear() error {
	f.store.Clear()
	return nil
}

func (f *storeFeed) Source() string { return "LIVE" }

func (f *storeFeed) Capacity() int { return f.store.Capacity() }

func (f *storeFeed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	f.unsubscribe()
	close(f.ch)
	return nil
}

// clientFeed adapts an IPC client attached to another process.
type clientFeed struct {
	client *ipc.Client
	ch     chan Update
	done   chan struct{}
	once   sync.Once
}

// NewClientFeed returns a feed over an attached IPC client. Closing the
// feed closes the client.
func NewClientFeed(client *ipc.Client) Feed {
	f := &clientFeed{
		client: client,
		ch:     make(chan Update, 1),
		done:   make(chan struct{}),
	}
	go f.pump()
	return f
}

func (f *clientFeed) pump() {
	defer close(f.ch)
	for u := range f.client.Updates() {
		select {
		case f.ch <- Update{Kind: u.Kind, Logs: u.Logs}:
		case <-f.done:
			return
		}
	}
}

func (f *clientFeed) Updates() <-chan Update { return f.ch }

func (f *clientFeed) Replay(rec *record.Record) error {
	return f.client.SendReplay(rec)
}

func (f *clientFeed) Clear() error {
	return f.client.SendClear()
}

func (f *clientFeed) Source() string { return "ATTACHED" }

func (f *clientFeed) Capacity() int { return 0 }

func (f *clientFeed) Close() error {
	f.once.Do(func() { close(f.done) })
	return f.client.Close()
}

// staticFeed serves one snapshot loaded from a file. No live instance sits
// behind it, so replay and clear are refused.
type staticFeed struct {
	ch     chan Update
	source string
	once   sync.Once
}

// NewStaticFeed returns a feed that delivers snap once and then stays quiet.
// source labels the status bar, e.g. "FILE" for a capture opened from disk.
func NewStaticFeed(snap reqlog.Snapshot, source string) Feed {
	f := &staticFeed{
		ch:     make(chan Update, 1),
		source: source,
	}
	f.ch <- Update{Kind: "init", Logs: snap}
	return f
}

func (f *staticFeed) Updates() <-chan Update { return f.ch }

func (f *staticFeed) Replay(*record.Record) error {
	return errors.New("replay needs a live instance")
}

func (f *staticFeed) Clear() error {
	return errors.New("clear needs a live instance")
}

func (f *staticFeed) Source() string { return f.source }

func (f *staticFeed) Capacity() int { return 0 }

func (f *staticFeed) Close() error {
	f.once.Do(func() { close(f.ch) })
	return nil
}
