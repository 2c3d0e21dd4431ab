package reqlog

import (
	"fmt"
	"testing"
	"time"

	"github.com/reqlens/reqlens/pkg/event"
	"github.com/reqlens/reqlens/pkg/record"
)

func startEvent(id string) event.Event {
	return event.Event{
		Kind:   event.RequestStart,
		ID:     id,
		Method: "GET",
		URL:    "http://example.com/" + id,
		Scheme: "http",
		Host:   "example.com",
		Path:   "/" + id,
		Time:   time.Now(),
	}
}

func TestInsertAtHeadNewestFirst(t *testing.T) {
	s := New()
	s.Apply(startEvent("a"))
	s.Apply(startEvent("b"))
	s.Apply(startEvent("c"))

	snap := s.GetAll()
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	if snap[0].ID != "c" || snap[1].ID != "b" || snap[2].ID != "a" {
		t.Errorf("order = %s,%s,%s, want c,b,a", snap[0].ID, snap[1].ID, snap[2].ID)
	}
	if !snap[0].Status.IsPending() {
		t.Error("fresh record should be pending")
	}
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	s := New() // default cap 50

	for i := 1; i <= 51; i++ {
		s.Apply(startEvent(fmt.Sprintf("req-%d", i)))
	}

	snap := s.GetAll()
	if len(snap) != 50 {
		t.Fatalf("len = %d, want 50", len(snap))
	}
	for _, r := range snap {
		if r.ID == "req-1" {
			t.Fatal("oldest record was not evicted")
		}
	}
	if snap[0].ID != "req-51" {
		t.Errorf("head = %s, want req-51", snap[0].ID)
	}
	if snap[49].ID != "req-2" {
		t.Errorf("tail = %s, want req-2", snap[49].ID)
	}
}

func TestEvictionIgnoresPendingState(t *testing.T) {
	s := New(WithCapacity(2))

	s.Apply(startEvent("old-pending"))
	s.Apply(startEvent("mid"))
	// Complete "mid" so the oldest record is the only pending one left.
	s.Apply(event.Event{Kind: event.ResponseHeaders, ID: "mid", StatusCode: 200})
	s.Apply(startEvent("new"))

	if s.GetOne("old-pending") != nil {
		t.Error("pending status must not protect a record from eviction")
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestEventsForEvictedIDAreNoOps(t *testing.T) {
	s := New(WithCapacity(1))
	s.Apply(startEvent("gone"))
	s.Apply(startEvent("kept"))

	notifications := 0
	unsub := s.Subscribe(func(Snapshot) { notifications++ })
	defer unsub()
	notifications = 0 // discount the initial snapshot

	s.Apply(event.Event{Kind: event.ResponseHeaders, ID: "gone", StatusCode: 200})
	s.Apply(event.Event{Kind: event.ResponseComplete, ID: "gone", Body: "x", DurationMs: 5})

	if notifications != 0 {
		t.Errorf("events for an evicted id caused %d notifications", notifications)
	}
	if s.GetOne("kept") == nil {
		t.Error("surviving record disappeared")
	}
}

func TestLifecycleMutations(t *testing.T) {
	s := New()
	s.Apply(startEvent("r"))
	s.Apply(event.Event{Kind: event.RequestBody, ID: "r", Body: `{"a":1}`})
	s.Apply(event.Event{
		Kind:       event.ResponseHeaders,
		ID:         "r",
		StatusCode: 201,
		Headers:    []record.Header{{Name: "Content-Type", Value: "application/json"}},
	})
	s.Apply(event.Event{Kind: event.TimingUpdate, ID: "r", Timing: &record.Timing{Total: 12}})
	s.Apply(event.Event{Kind: event.SizeUpdate, ID: "r", Size: &record.Size{Transferred: 8, Resource: 8}})
	s.Apply(event.Event{Kind: event.ResponseComplete, ID: "r", Body: `{"ok":1}`, DurationMs: 12})

	rec := s.GetOne("r")
	if rec == nil {
		t.Fatal("record missing")
	}
	if rec.Status.String() != "201" {
		t.Errorf("status = %s", rec.Status)
	}
	if rec.RequestBody != `{"a":1}` || rec.ResponseBody != `{"ok":1}` {
		t.Errorf("bodies = %q / %q", rec.RequestBody, rec.ResponseBody)
	}
	if rec.DurationMs != 12 {
		t.Errorf("durationMs = %d", rec.DurationMs)
	}
	if rec.Timing == nil || rec.Timing.Total != 12 {
		t.Errorf("timing = %+v", rec.Timing)
	}
	if rec.Size == nil || rec.Size.Transferred != 8 {
		t.Errorf("size = %+v", rec.Size)
	}
	if record.GetHeader(rec.ResponseHeaders, "content-type") != "application/json" {
		t.Errorf("response headers = %+v", rec.ResponseHeaders)
	}
}

func TestStatusTransitionsExactlyOnce(t *testing.T) {
	s := New()

	s.Apply(startEvent("ok"))
	s.Apply(event.Event{Kind: event.ResponseHeaders, ID: "ok", StatusCode: 200})
	s.Apply(event.Event{Kind: event.RequestError, ID: "ok", Err: "late failure"})
	if rec := s.GetOne("ok"); rec.Status.String() != "200" || rec.Error != "" {
		t.Errorf("terminal status overwritten: %s err=%q", rec.Status, rec.Error)
	}

	s.Apply(startEvent("failed"))
	s.Apply(event.Event{Kind: event.RequestError, ID: "failed", Err: "refused", DurationMs: 1})
	s.Apply(event.Event{Kind: event.ResponseHeaders, ID: "failed", StatusCode: 200})
	if rec := s.GetOne("failed"); !rec.Status.IsError() {
		t.Errorf("error status overwritten: %s", rec.Status)
	}
}

func TestTimingAndSizeSetAtMostOnce(t *testing.T) {
	s := New()
	s.Apply(startEvent("r"))
	s.Apply(event.Event{Kind: event.TimingUpdate, ID: "r", Timing: &record.Timing{Total: 1}})
	s.Apply(event.Event{Kind: event.TimingUpdate, ID: "r", Timing: &record.Timing{Total: 99}})
	s.Apply(event.Event{Kind: event.SizeUpdate, ID: "r", Size: &record.Size{Resource: 1}})
	s.Apply(event.Event{Kind: event.SizeUpdate, ID: "r", Size: &record.Size{Resource: 99}})

	rec := s.GetOne("r")
	if rec.Timing.Total != 1 {
		t.Errorf("timing overwritten: %+v", rec.Timing)
	}
	if rec.Size.Resource != 1 {
		t.Errorf("size overwritten: %+v", rec.Size)
	}
}

func TestSubscribeDeliversImmediateSnapshotThenUpdates(t *testing.T) {
	s := New()
	s.Apply(startEvent("pre"))

	var snaps []Snapshot
	unsub := s.Subscribe(func(snap Snapshot) { snaps = append(snaps, snap) })

	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots at subscribe, want 1", len(snaps))
	}
	if len(snaps[0]) != 1 || snaps[0][0].ID != "pre" {
		t.Errorf("initial snapshot = %+v", snaps[0])
	}

	s.Apply(startEvent("post"))
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots after mutation, want 2", len(snaps))
	}
	if len(snaps[1]) != 2 || snaps[1][0].ID != "post" {
		t.Errorf("update snapshot = %+v", snaps[1])
	}

	unsub()
	s.Apply(startEvent("after-unsub"))
	if len(snaps) != 2 {
		t.Error("unsubscribed listener still notified")
	}
}

func TestClearEmptiesAndNotifies(t *testing.T) {
	s := New()
	s.Apply(startEvent("a"))
	s.Apply(startEvent("b"))

	var last Snapshot
	calls := 0
	s.Subscribe(func(snap Snapshot) {
		last = snap
		calls++
	})

	s.Clear()

	if got := s.GetAll(); len(got) != 0 {
		t.Errorf("GetAll after Clear = %d records", len(got))
	}
	if calls != 2 { // initial + clear
		t.Errorf("subscriber called %d times, want 2", calls)
	}
	if len(last) != 0 {
		t.Errorf("clear snapshot has %d records, want 0", len(last))
	}
}

func TestSnapshotsAreClones(t *testing.T) {
	s := New()
	s.Apply(startEvent("r"))

	snap := s.GetAll()
	snap[0].Method = "MUTATED"
	snap[0].Status = record.Code(500)

	fresh := s.GetOne("r")
	if fresh.Method != "GET" || !fresh.Status.IsPending() {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestAttachFoldsBusEvents(t *testing.T) {
	bus := event.NewBus()
	s := New()
	detach := s.Attach(bus)

	bus.Publish(startEvent("via-bus"))
	if s.GetOne("via-bus") == nil {
		t.Fatal("attached store missed a bus event")
	}

	detach()
	bus.Publish(startEvent("after-detach"))
	if s.GetOne("after-detach") != nil {
		t.Error("detached store still applied events")
	}
}

func TestGetOneUnknownID(t *testing.T) {
	s := New()
	if s.GetOne("nope") != nil {
		t.Error("unknown id should return nil")
	}
}

func TestPanickingSubscriberIsIsolated(t *testing.T) {
	s := New()
	s.Subscribe(func(Snapshot) { panic("viewer bug") })

	healthy := 0
	s.Subscribe(func(Snapshot) { healthy++ })
	healthy = 0

	s.Apply(startEvent("r"))

	if healthy != 1 {
		t.Errorf("healthy subscriber called %d times, want 1", healthy)
	}
	if s.Len() != 1 {
		t.Error("store state corrupted by subscriber panic")
	}
}
