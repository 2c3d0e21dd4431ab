package event

import (
	"testing"
)

func TestPublishRunsHandlersInSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(func(Event) { order = append(order, "first") })
	bus.Subscribe(func(Event) { order = append(order, "second") })
	bus.Subscribe(func(Event) { order = append(order, "third") })

	bus.Publish(Event{Kind: RequestStart, ID: "r1"})

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("dispatch order = %v, want [first second third]", order)
	}
}

func TestPublishIsSynchronous(t *testing.T) {
	bus := NewBus()

	seen := 0
	bus.Subscribe(func(ev Event) { seen++ })

	bus.Publish(Event{Kind: RequestStart, ID: "r1"})
	if seen != 1 {
		t.Fatal("handler had not run when Publish returned")
	}
	bus.Publish(Event{Kind: ResponseComplete, ID: "r1"})
	if seen != 2 {
		t.Fatal("handler had not run for second event")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	calls := 0
	unsub := bus.Subscribe(func(Event) { calls++ })
	bus.Publish(Event{ID: "a"})
	unsub()
	bus.Publish(Event{ID: "b"})

	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}

	// Second removal of the same subscription is harmless.
	unsub()
	bus.Publish(Event{ID: "c"})
	if calls != 1 {
		t.Errorf("got %d calls after re-unsubscribe, want 1", calls)
	}
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	bus := NewBus()

	var after int
	bus.Subscribe(func(Event) { panic("observer bug") })
	bus.Subscribe(func(Event) { after++ })

	done := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic escaped Publish: %v", r)
			}
		}()
		bus.Publish(Event{Kind: RequestStart, ID: "r1"})
		done = true
	}()

	if !done {
		t.Fatal("Publish did not return normally")
	}
	if after != 1 {
		t.Error("handler after the panicking one was skipped")
	}
}

func TestUnsubscribeInsideHandler(t *testing.T) {
	bus := NewBus()

	calls := 0
	var unsub func()
	unsub = bus.Subscribe(func(Event) {
		calls++
		unsub()
	})

	bus.Publish(Event{ID: "a"})
	bus.Publish(Event{ID: "b"})

	if calls != 1 {
		t.Errorf("self-unsubscribing handler ran %d times, want 1", calls)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{RequestStart, "request-start"},
		{RequestBody, "request-body"},
		{ResponseHeaders, "response-headers"},
		{ResponseComplete, "response-complete"},
		{RequestError, "request-error"},
		{TimingUpdate, "timing-update"},
		{SizeUpdate, "size-update"},
		{Kind(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
