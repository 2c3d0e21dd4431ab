// Package detail implements the inspection panel for a single captured
// exchange, with sub-tabs for the response body, both header sets, the
// timing breakdown, and the request body.
package detail

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reqlens/reqlens/internal/ui/theme"
	"github.com/reqlens/reqlens/pkg/record"
)

type subTab int

const (
	tabBody subTab = iota
	tabHeaders
	tabTiming
	tabRequest
)

var subTabLabels = []string{"Body", "Headers", "Timing", "Request"}

// Model is the detail panel container.
type Model struct {
	body    BodyModel
	headers HeadersModel
	timing  TimingModel
	request RequestModel
	spinner spinner.Model

	styles  theme.Styles
	th      theme.Theme
	active  subTab
	focused bool
	rec     *record.Record
	width   int
	height  int
}

// New creates a new detail panel model.
func New(t theme.Theme, s theme.Styles) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(t.Mauve)

	return Model{
		body:    NewBodyModel(t, s),
		headers: NewHeadersModel(s),
		timing:  NewTimingModel(s),
		request: NewRequestModel(s),
		spinner: sp,
		styles:  s,
		th:      t,
	}
}

// SetRecord points the panel at a record, or clears it with nil. The same
// record is pushed again as its exchange progresses, so every sub-model is
// refreshed unconditionally.
func (m *Model) SetRecord(rec *record.Record) {
	m.rec = rec
	m.body.SetRecord(rec)
	m.headers.SetRecord(rec)
	m.timing.SetRecord(rec)
	m.request.SetRecord(rec)
}

// Record returns the record currently shown, or nil.
func (m Model) Record() *record.Record {
	return m.rec
}

// SetFocused sets whether this panel has focus.
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	// Border takes 2 columns and 2 rows, tab bar and summary one row each.
	innerW := w - 2
	innerH := h - 4
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}

	m.body.SetSize(innerW, innerH)
	m.headers.SetSize(innerW, innerH)
	m.timing.SetSize(innerW, innerH)
	m.request.SetSize(innerW, innerH)
}

// Capturing reports whether the body search input is consuming keystrokes,
// so app-level shortcuts stay out of the way.
func (m Model) Capturing() bool {
	return m.active == tabBody && m.body.searchCapturing()
}

// Searching reports whether the body search is open, capturing or not.
func (m Model) Searching() bool {
	return m.active == tabBody && m.body.Searching()
}

// Tick restarts the pending spinner. Safe to issue repeatedly; stale ticks
// are dropped by the spinner itself.
func (m Model) Tick() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.Capturing() {
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "1":
			m.active = tabBody
			return m, nil
		case "2":
			m.active = tabHeaders
			return m, nil
		case "3":
			m.active = tabTiming
			return m, nil
		case "4":
			m.active = tabRequest
			return m, nil
		case "]":
			m.active = (m.active + 1) % subTab(len(subTabLabels))
			return m, nil
		case "[":
			if m.active == 0 {
				m.active = subTab(len(subTabLabels) - 1)
			} else {
				m.active--
			}
			return m, nil
		}
	case spinner.TickMsg:
		if m.rec != nil && m.rec.Status.IsPending() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.active {
	case tabBody:
		m.body, cmd = m.body.Update(msg)
	case tabHeaders:
		m.headers, cmd = m.headers.Update(msg)
	case tabTiming:
		m.timing, cmd = m.timing.Update(msg)
	case tabRequest:
		m.request, cmd = m.request.Update(msg)
	}

	return m, cmd
}

func (m Model) View() string {
	border := m.styles.UnfocusedBorder
	if m.focused {
		border = m.styles.FocusedBorder
	}

	innerW := m.width - 2
	if innerW < 0 {
		innerW = 0
	}
	innerH := m.height - 2
	if innerH < 0 {
		innerH = 0
	}

	var content string
	if m.rec == nil {
		content = m.renderEmpty(innerW, innerH)
	} else {
		content = m.renderRecord(innerW, innerH)
	}

	return border.Width(innerW).Height(innerH).Render(content)
}

func (m Model) renderEmpty(w, h int) string {
	msg := m.styles.Muted.Render("Select a request to inspect it")
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, msg)
}

func (m Model) renderRecord(w, h int) string {
	tabs := m.renderTabs(w)
	summary := m.renderSummary(w)

	contentH := h - 2
	if contentH < 0 {
		contentH = 0
	}

	var body string
	switch m.active {
	case tabBody:
		if m.rec.Status.IsPending() {
			msg := m.spinner.View() + " waiting for response..."
			body = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Center, msg)
		} else {
			body = m.body.View()
		}
	case tabHeaders:
		body = m.headers.View()
	case tabTiming:
		body = m.timing.View()
	case tabRequest:
		body = m.request.View()
	}

	body = lipgloss.NewStyle().Width(w).Height(contentH).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, tabs, summary, body)
}

func (m Model) renderTabs(width int) string {
	var tabs []string
	for i, label := range subTabLabels {
		if subTab(i) == m.active {
			tabs = append(tabs, m.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(label))
		}
	}
	row := strings.Join(tabs, " ")
	return lipgloss.NewStyle().Width(width).Render(row)
}

// renderSummary is the one-line exchange summary above the content: method,
// URL, and the status with its duration.
func (m Model) renderSummary(w int) string {
	rec := m.rec
	method := m.styles.MethodStyle(rec.Method).Render(rec.Method)
	statusStyle := lipgloss.NewStyle().Foreground(m.th.StatusColor(rec.Status)).Bold(true)

	var status string
	switch {
	case rec.Status.IsPending():
		status = statusStyle.Render("pending")
	case rec.Status.IsError():
		status = statusStyle.Render("ERROR " + rec.Error)
	default:
		code := rec.Status.Code
		status = statusStyle.Render(fmt.Sprintf("%d %s", code, http.StatusText(code))) +
			m.styles.Muted.Render(" "+formatMs(rec.DurationMs))
	}

	url := rec.URL
	avail := w - lipgloss.Width(method) - lipgloss.Width(status) - 2
	if avail < 8 {
		avail = 8
	}
	if lipgloss.Width(url) > avail {
		url = truncateTo(url, avail)
	}

	line := method + " " + m.styles.Normal.Render(url) + " " + status
	return lipgloss.NewStyle().Width(w).MaxHeight(1).Render(line)
}

// truncateTo shortens s to the given display width.
func truncateTo(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
