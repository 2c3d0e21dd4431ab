package app

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reqlens/reqlens/internal/ui/msgs"
	"github.com/reqlens/reqlens/pkg/record"
	"github.com/reqlens/reqlens/pkg/reqlog"
)

type fakeFeed struct {
	updates chan Update
	replays []*record.Record
	cleared int
	closed  bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{updates: make(chan Update, 8)}
}

func (f *fakeFeed) Updates() <-chan Update { return f.updates }

func (f *fakeFeed) Replay(rec *record.Record) error {
	f.replays = append(f.replays, rec)
	return nil
}

func (f *fakeFeed) Clear() error {
	f.cleared++
	return nil
}

func (f *fakeFeed) Source() string { return "LIVE" }
func (f *fakeFeed) Capacity() int  { return 50 }

func (f *fakeFeed) Close() error {
	f.closed = true
	return nil
}

func sampleSnapshot() reqlog.Snapshot {
	return reqlog.Snapshot{
		{
			ID:         "u1",
			Method:     "GET",
			URL:        "https://api.example.com/users",
			Status:     record.Code(200),
			StartTime:  time.Now(),
			DurationMs: 45,
			ResponseHeaders: []record.Header{
				{Name: "Content-Type", Value: "application/json"},
			},
			ResponseBody: `{"users":[]}`,
		},
		{
			ID:          "u2",
			Method:      "POST",
			URL:         "https://api.example.com/items",
			Status:      record.Code(201),
			StartTime:   time.Now(),
			DurationMs:  80,
			RequestBody: `{"name":"x"}`,
		},
	}
}

func newAppForTest(t *testing.T, feed Feed) App {
	t.Helper()
	a := New(WithFeed(feed))
	model, _ := a.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return model.(App)
}

func applySnapshot(t *testing.T, a App, snap reqlog.Snapshot) App {
	t.Helper()
	model, _ := a.Update(msgs.SnapshotMsg{Kind: "init", Logs: snap})
	return model.(App)
}

func pressRune(t *testing.T, a App, r rune) (App, tea.Cmd) {
	t.Helper()
	model, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return model.(App), cmd
}

func press(t *testing.T, a App, k tea.KeyType) (App, tea.Cmd) {
	t.Helper()
	model, cmd := a.Update(tea.KeyMsg{Type: k})
	return model.(App), cmd
}

// deliver runs a key's command and feeds the resulting message back in,
// mimicking the runtime loop.
func deliver(t *testing.T, a App, cmd tea.Cmd) (App, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command to deliver")
	}
	model, next := a.Update(cmd())
	return model.(App), next
}

func TestApp_SnapshotPopulatesView(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)
	a = applySnapshot(t, a, sampleSnapshot())

	view := a.View()
	for _, want := range []string{"Requests", "api.example.com/users", "2/50 requests", "[LIVE]", "200"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestApp_SnapshotRearmsFeedRead(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)

	_, cmd := a.Update(msgs.SnapshotMsg{Kind: "init", Logs: sampleSnapshot()})
	if cmd == nil {
		t.Fatal("expected snapshot handling to re-arm the feed read")
	}
}

func TestApp_WaitForUpdate(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)

	feed.updates <- Update{Kind: "init", Logs: sampleSnapshot()}
	msg := a.waitForUpdate()()
	sm, ok := msg.(msgs.SnapshotMsg)
	if !ok {
		t.Fatalf("expected SnapshotMsg, got %T", msg)
	}
	if sm.Kind != "init" || len(sm.Logs) != 2 {
		t.Fatalf("unexpected snapshot msg: kind=%q logs=%d", sm.Kind, len(sm.Logs))
	}

	close(feed.updates)
	if _, ok := a.waitForUpdate()().(msgs.FeedClosedMsg); !ok {
		t.Fatal("expected FeedClosedMsg when the feed channel closes")
	}
}

func TestApp_ReplayKeySendsSelected(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)
	a = applySnapshot(t, a, sampleSnapshot())

	a, cmd := pressRune(t, a, 'r')
	a, cmd = deliver(t, a, cmd) // ReplaySelectedMsg
	if cmd == nil {
		t.Fatal("expected replay command")
	}

	done, ok := cmd().(msgs.ReplayDoneMsg)
	if !ok {
		t.Fatalf("expected ReplayDoneMsg, got %T", cmd())
	}
	if done.Err != nil {
		t.Fatalf("replay err = %v", done.Err)
	}
	if done.ID != "u1" {
		t.Fatalf("replayed id = %q, want u1", done.ID)
	}
	if len(feed.replays) != 1 || feed.replays[0].ID != "u1" {
		t.Fatalf("feed saw replays %+v", feed.replays)
	}

	model, _ := a.Update(done)
	a = model.(App)
	if !a.toast.Visible {
		t.Fatal("expected replay toast")
	}
}

func TestApp_ReplayRefusedWhilePending(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)
	a = applySnapshot(t, a, reqlog.Snapshot{
		{ID: "p", Method: "GET", URL: "https://api.example.com/slow", Status: record.Pending()},
	})

	a, cmd := pressRune(t, a, 'r')
	a, _ = deliver(t, a, cmd)
	if len(feed.replays) != 0 {
		t.Fatalf("pending record must not be replayed, feed saw %+v", feed.replays)
	}
	if !a.toast.Visible {
		t.Fatal("expected refusal toast")
	}
}

func TestApp_ClearKeyEmptiesLog(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)
	a = applySnapshot(t, a, sampleSnapshot())

	a, cmd := pressRune(t, a, 'x')
	a, cmd = deliver(t, a, cmd) // ClearLogMsg
	if cmd == nil {
		t.Fatal("expected clear command")
	}
	toast, ok := cmd().(msgs.ToastMsg)
	if !ok {
		t.Fatalf("expected ToastMsg, got %T", cmd())
	}
	if toast.IsError {
		t.Fatalf("clear reported error: %q", toast.Text)
	}
	if feed.cleared != 1 {
		t.Fatalf("feed.cleared = %d, want 1", feed.cleared)
	}
}

func TestApp_CopyAsCurlKey(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)
	a = applySnapshot(t, a, sampleSnapshot())

	a, cmd := pressRune(t, a, 'y')
	a, cmd = deliver(t, a, cmd) // CopyAsCurlMsg
	if cmd == nil {
		t.Fatal("expected copy command")
	}

	// Clipboard availability varies by environment; only the message type
	// and the resulting toast are asserted.
	done, ok := cmd().(msgs.CopyDoneMsg)
	if !ok {
		t.Fatalf("expected CopyDoneMsg, got %T", cmd())
	}
	model, _ := a.Update(done)
	a = model.(App)
	if !a.toast.Visible {
		t.Fatal("expected copy toast")
	}
}

func TestApp_QuitKey(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)
	a = applySnapshot(t, a, sampleSnapshot())

	_, cmd := pressRune(t, a, 'q')
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg, got %T", cmd())
	}
}

func TestApp_FilterCapturesQuitKey(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)
	a = applySnapshot(t, a, sampleSnapshot())

	a, _ = pressRune(t, a, '/')
	if !a.requests.Filtering() {
		t.Fatal("expected filter mode after /")
	}

	a, cmd := pressRune(t, a, 'q')
	if cmd != nil {
		if _, isQuit := cmd().(tea.QuitMsg); isQuit {
			t.Fatal("q while filtering must type, not quit")
		}
	}
	if !a.requests.Filtering() {
		t.Fatal("expected filter mode to survive typing")
	}
}

func TestApp_FocusFlow(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)
	a = applySnapshot(t, a, sampleSnapshot())

	if a.focus != msgs.FocusRequests {
		t.Fatalf("initial focus = %v", a.focus)
	}

	a, cmd := press(t, a, tea.KeyTab)
	a, _ = deliver(t, a, cmd) // CycleFocusMsg
	if a.focus != msgs.FocusDetail {
		t.Fatalf("focus after tab = %v, want detail", a.focus)
	}

	a, cmd = press(t, a, tea.KeyEsc)
	a, _ = deliver(t, a, cmd) // FocusPanelMsg
	if a.focus != msgs.FocusRequests {
		t.Fatalf("focus after esc = %v, want requests", a.focus)
	}

	a, cmd = press(t, a, tea.KeyEnter)
	a, _ = deliver(t, a, cmd) // RecordSelectedMsg
	if a.focus != msgs.FocusDetail {
		t.Fatalf("focus after enter = %v, want detail", a.focus)
	}
}

func TestApp_HelpOverlay(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)

	a, cmd := pressRune(t, a, '?')
	a, _ = deliver(t, a, cmd) // ShowHelpMsg
	if !a.help.Visible {
		t.Fatal("expected help overlay")
	}
	if got := a.View(); !strings.Contains(got, "Keyboard Shortcuts") {
		t.Fatalf("help view missing title:\n%s", got)
	}

	a, _ = press(t, a, tea.KeyEsc)
	if a.help.Visible {
		t.Fatal("expected help to close on esc")
	}
}

func TestApp_FeedClosedShowsNotice(t *testing.T) {
	feed := newFakeFeed()
	a := newAppForTest(t, feed)
	a = applySnapshot(t, a, sampleSnapshot())

	model, _ := a.Update(msgs.FeedClosedMsg{})
	a = model.(App)
	if !a.toast.Visible {
		t.Fatal("expected closed-stream toast")
	}
	if got := a.View(); !strings.Contains(got, "log stream closed") {
		t.Fatalf("status bar missing notice:\n%s", got)
	}
}

func TestApp_SinglePanelShowsFocusedPanel(t *testing.T) {
	feed := newFakeFeed()
	a := New(WithFeed(feed))
	model, _ := a.Update(tea.WindowSizeMsg{Width: 50, Height: 30})
	a = model.(App)
	a = applySnapshot(t, a, sampleSnapshot())

	view := a.View()
	if !strings.Contains(view, "Requests") {
		t.Fatalf("narrow view missing request list:\n%s", view)
	}

	a, cmd := press(t, a, tea.KeyTab)
	a, _ = deliver(t, a, cmd)
	view = a.View()
	if !strings.Contains(view, "Body") {
		t.Fatalf("narrow detail view missing tabs:\n%s", view)
	}
}
