// Package app composes the terminal viewer: the request list, the detail
// panel, and the chrome around them, fed by a snapshot stream from either
// the in-process store or an attached instance.
package app

import (
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reqlens/reqlens/internal/export"
	"github.com/reqlens/reqlens/internal/logging"
	"github.com/reqlens/reqlens/internal/ui/components"
	"github.com/reqlens/reqlens/internal/ui/layout"
	"github.com/reqlens/reqlens/internal/ui/msgs"
	"github.com/reqlens/reqlens/internal/ui/panels/detail"
	"github.com/reqlens/reqlens/internal/ui/panels/requests"
	"github.com/reqlens/reqlens/internal/ui/theme"
)

type options struct {
	feed      Feed
	themeName string
	logger    *slog.Logger
}

// Option configures the viewer.
type Option func(*options)

// WithFeed sets the log source. A viewer without a feed renders but never
// receives traffic.
func WithFeed(f Feed) Option {
	return func(o *options) { o.feed = f }
}

// WithTheme selects a color theme by name. Unknown names fall back to the
// default theme.
func WithTheme(name string) Option {
	return func(o *options) { o.themeName = name }
}

// WithLogger attaches a logger for viewer diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// App is the root Bubble Tea model.
type App struct {
	requests requests.Model
	detail   detail.Model

	statusBar components.StatusBar
	help      components.Help
	toast     components.Toast

	feed   Feed
	logger *slog.Logger

	focus  msgs.PanelFocus
	layout layout.PanelLayout
	keys   KeyMap

	theme  theme.Theme
	styles theme.Styles

	width  int
	height int
	ready  bool
}

// New creates the root model.
func New(opts ...Option) App {
	o := options{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	t := theme.Resolve(o.themeName)
	s := theme.NewStyles(t)

	a := App{
		requests: requests.New(t, s),
		detail:   detail.New(t, s),

		statusBar: components.NewStatusBar(t, s),
		help:      components.NewHelp(t, s),
		toast:     components.NewToast(t, s),

		feed:   o.feed,
		logger: o.logger,

		focus: msgs.FocusRequests,
		keys:  DefaultKeyMap(),

		theme:  t,
		styles: s,
	}

	if a.feed != nil {
		a.statusBar.SetSource(a.feed.Source())
		a.statusBar.SetCounts(0, a.feed.Capacity())
	}
	a.updateFocus()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.waitForUpdate(), a.detail.Init())
}

// waitForUpdate blocks on the feed and turns the next push into a message.
// The SnapshotMsg handler re-arms it, one outstanding read at a time.
func (a App) waitForUpdate() tea.Cmd {
	feed := a.feed
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-feed.Updates()
		if !ok {
			return msgs.FeedClosedMsg{}
		}
		return msgs.SnapshotMsg{Kind: u.Kind, Logs: u.Logs}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = layout.Calculate(msg.Width, msg.Height)
		a.resizePanels()
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.help.Visible {
			var cmd tea.Cmd
			a.help, cmd = a.help.Update(msg)
			return a, cmd
		}
		if a.focus == msgs.FocusRequests && a.requests.Filtering() {
			var cmd tea.Cmd
			a.requests, cmd = a.requests.Update(msg)
			a.syncSelection()
			return a, cmd
		}
		if a.focus == msgs.FocusDetail && a.detail.Capturing() {
			var cmd tea.Cmd
			a.detail, cmd = a.detail.Update(msg)
			return a, cmd
		}
		if cmd := a.handleGlobalKey(msg); cmd != nil {
			return a, cmd
		}
		return a.handlePanelKey(msg)

	case msgs.SnapshotMsg:
		return a.handleSnapshot(msg)

	case msgs.FeedClosedMsg:
		a.logger.Debug("log stream closed", "error", msg.Err)
		a.statusBar.SetMessage("log stream closed")
		cmd := a.toast.Show("Log stream closed", true, 5*time.Second)
		return a, cmd

	case msgs.RecordSelectedMsg:
		a.focus = msgs.FocusDetail
		a.updateFocus()
		a.syncSelection()
		return a, nil

	case msgs.FocusPanelMsg:
		a.focus = msg.Panel
		a.updateFocus()
		return a, nil

	case msgs.CycleFocusMsg:
		a.cycleFocus()
		return a, nil

	case msgs.ShowHelpMsg:
		a.help.SetSize(a.width, a.height)
		a.help.Toggle()
		return a, nil

	case msgs.ReplaySelectedMsg:
		return a.replaySelected()

	case msgs.ReplayDoneMsg:
		if msg.Err != nil {
			cmd := a.toast.Show("Replay failed: "+msg.Err.Error(), true, 3*time.Second)
			return a, cmd
		}
		cmd := a.toast.Show("Request replayed", false, 2*time.Second)
		return a, cmd

	case msgs.CopyAsCurlMsg:
		return a.copyAsCurl()

	case msgs.CopyDoneMsg:
		if msg.Err != nil {
			cmd := a.toast.Show("Clipboard error: "+msg.Err.Error(), true, 3*time.Second)
			return a, cmd
		}
		cmd := a.toast.Show("Copied as cURL", false, 2*time.Second)
		return a, cmd

	case msgs.ClearLogMsg:
		return a.clearLog()

	case msgs.ToastMsg:
		cmd := a.toast.Show(msg.Text, msg.IsError, msg.Duration)
		return a, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.toast, cmd = a.toast.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	a.statusBar, cmd = a.statusBar.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	a.detail, cmd = a.detail.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a App) handleSnapshot(msg msgs.SnapshotMsg) (tea.Model, tea.Cmd) {
	a.requests.SetRecords(msg.Logs)
	a.syncSelection()

	capacity := 0
	if a.feed != nil {
		capacity = a.feed.Capacity()
	}
	a.statusBar.SetCounts(len(msg.Logs), capacity)

	cmds := []tea.Cmd{a.waitForUpdate()}
	if sel := a.requests.Selected(); sel != nil && sel.Status.IsPending() {
		cmds = append(cmds, a.detail.Tick())
	}
	return a, tea.Batch(cmds...)
}

func (a App) handleGlobalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit
	case key.Matches(msg, a.keys.Help):
		return func() tea.Msg { return msgs.ShowHelpMsg{} }
	case key.Matches(msg, a.keys.Replay):
		return func() tea.Msg { return msgs.ReplaySelectedMsg{} }
	case key.Matches(msg, a.keys.CopyCurl):
		return func() tea.Msg { return msgs.CopyAsCurlMsg{} }
	case key.Matches(msg, a.keys.ClearLog):
		return func() tea.Msg { return msgs.ClearLogMsg{} }
	case key.Matches(msg, a.keys.CycleFocus), key.Matches(msg, a.keys.CycleFocusRev):
		return func() tea.Msg { return msgs.CycleFocusMsg{} }
	}
	return nil
}

func (a App) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" && a.focus == msgs.FocusDetail && !a.detail.Searching() {
		return a, func() tea.Msg {
			return msgs.FocusPanelMsg{Panel: msgs.FocusRequests}
		}
	}

	var cmd tea.Cmd
	switch a.focus {
	case msgs.FocusRequests:
		a.requests, cmd = a.requests.Update(msg)
		a.syncSelection()
	case msgs.FocusDetail:
		a.detail, cmd = a.detail.Update(msg)
	}

	return a, cmd
}

func (a App) replaySelected() (tea.Model, tea.Cmd) {
	rec := a.requests.Selected()
	if rec == nil {
		cmd := a.toast.Show("Nothing selected", true, 2*time.Second)
		return a, cmd
	}
	if rec.Status.IsPending() {
		cmd := a.toast.Show("Exchange still in flight", true, 2*time.Second)
		return a, cmd
	}
	if a.feed == nil {
		cmd := a.toast.Show("No log source", true, 2*time.Second)
		return a, cmd
	}

	feed := a.feed
	rc := rec.Clone()
	return a, func() tea.Msg {
		return msgs.ReplayDoneMsg{ID: rc.ID, Err: feed.Replay(rc)}
	}
}

func (a App) copyAsCurl() (tea.Model, tea.Cmd) {
	rec := a.requests.Selected()
	if rec == nil {
		cmd := a.toast.Show("Nothing selected", true, 2*time.Second)
		return a, cmd
	}

	curlCmd := export.AsCurl(rec)
	return a, func() tea.Msg {
		return msgs.CopyDoneMsg{Err: clipboard.WriteAll(curlCmd)}
	}
}

func (a App) clearLog() (tea.Model, tea.Cmd) {
	if a.feed == nil {
		cmd := a.toast.Show("No log source", true, 2*time.Second)
		return a, cmd
	}

	feed := a.feed
	return a, func() tea.Msg {
		if err := feed.Clear(); err != nil {
			return msgs.ToastMsg{Text: "Clear failed: " + err.Error(), IsError: true, Duration: 3 * time.Second}
		}
		return msgs.ToastMsg{Text: "Log cleared", Duration: 2 * time.Second}
	}
}

func (a *App) cycleFocus() {
	if a.focus == msgs.FocusRequests {
		a.focus = msgs.FocusDetail
	} else {
		a.focus = msgs.FocusRequests
	}
	a.updateFocus()
}

func (a *App) updateFocus() {
	a.requests.SetFocused(a.focus == msgs.FocusRequests)
	a.detail.SetFocused(a.focus == msgs.FocusDetail)
}

// syncSelection pushes the record under the cursor into the detail panel
// and the status bar. Called after anything that can move the cursor or
// refresh record contents.
func (a *App) syncSelection() {
	sel := a.requests.Selected()
	a.detail.SetRecord(sel)
	a.statusBar.SetSelected(sel)
}

func (a *App) resizePanels() {
	l := a.layout
	a.requests.SetSize(l.ListWidth, l.ContentHeight)
	a.detail.SetSize(l.DetailWidth, l.ContentHeight)
	a.statusBar.SetWidth(a.width)
	a.help.SetSize(a.width, a.height)
	a.updateFocus()
}

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var panels string
	if a.layout.SinglePanel {
		switch a.focus {
		case msgs.FocusRequests:
			panels = a.requests.View()
		case msgs.FocusDetail:
			panels = a.detail.View()
		}
	} else {
		panels = lipgloss.JoinHorizontal(lipgloss.Top, a.requests.View(), a.detail.View())
	}

	statusBar := a.statusBar.View()
	main := lipgloss.JoinVertical(lipgloss.Left, panels, statusBar)

	if a.help.Visible {
		main = a.overlayCenter(a.help.View())
	}
	if a.toast.Visible {
		main = overlayTopRight(main, a.toast.View(), a.width)
	}

	return main
}

func (a App) overlayCenter(overlay string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlay,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(a.theme.Base),
	)
}

func overlayTopRight(bg, overlay string, width int) string {
	overlayWidth := lipgloss.Width(overlay)
	gap := width - overlayWidth - 2
	if gap < 0 {
		gap = 0
	}
	positioned := lipgloss.NewStyle().MarginLeft(gap).Render(overlay)
	return positioned + "\n" + bg
}
