// Package requests implements the request-list panel: every captured
// exchange as one line, newest first, with cursor navigation and fuzzy
// filtering.
package requests

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/reqlens/reqlens/internal/ui/msgs"
	"github.com/reqlens/reqlens/internal/ui/theme"
	"github.com/reqlens/reqlens/pkg/record"
	"github.com/reqlens/reqlens/pkg/reqlog"
)

// Model is the request-list panel.
type Model struct {
	records  reqlog.Snapshot
	filtered []int // indices into records that match the filter
	cursor   int   // index into filtered
	offset   int   // first visible row

	selectedID string

	width   int
	height  int
	focused bool

	filtering   bool
	filterInput textinput.Model

	theme  theme.Theme
	styles theme.Styles
}

// New creates a new request-list model.
func New(t theme.Theme, s theme.Styles) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 128

	return Model{
		theme:       t,
		styles:      s,
		filterInput: ti,
	}
}

// SetRecords replaces the displayed log with a fresh snapshot. The cursor
// follows the record the user is on: while it sits on the newest entry it
// keeps tracking the head as traffic arrives, and once the user has moved
// down it stays pinned to that record by ID until the record is evicted.
func (m *Model) SetRecords(snap reqlog.Snapshot) {
	m.records = snap
	m.applyFilter()

	if m.cursor > 0 && m.selectedID != "" {
		for vi, idx := range m.filtered {
			if m.records[idx].ID == m.selectedID {
				m.cursor = vi
				m.ensureVisible()
				return
			}
		}
	}

	m.cursor = 0
	m.offset = 0
	m.selectedID = ""
	if rec := m.Selected(); rec != nil {
		m.selectedID = rec.ID
	}
}

// SetSize sets the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.ensureVisible()
}

// SetFocused sets whether this panel has focus.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Selected returns the record under the cursor, or nil when the list is
// empty.
func (m Model) Selected() *record.Record {
	if len(m.filtered) == 0 || m.cursor < 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	return m.records[m.filtered[m.cursor]]
}

// Filtering reports whether the filter input is capturing keystrokes, so
// the app can keep global shortcuts out of the way.
func (m Model) Filtering() bool {
	return m.filtering
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.filtering {
		return m.updateFilter(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if len(m.filtered) == 0 {
		if msg.String() == "/" {
			m.filtering = true
			m.filterInput.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g":
		m.cursor = 0
	case "G":
		m.cursor = len(m.filtered) - 1
	case "enter", "l":
		rec := m.Selected()
		if rec != nil {
			m.selectedID = rec.ID
			id := rec.ID
			return m, func() tea.Msg {
				return msgs.RecordSelectedMsg{ID: id}
			}
		}
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	}

	m.ensureVisible()
	if rec := m.Selected(); rec != nil {
		m.selectedID = rec.ID
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc":
			m.filtering = false
			m.filterInput.Blur()
			if msg.String() == "esc" {
				m.filterInput.SetValue("")
				m.applyFilter()
			}
			m.clampCursor()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	m.clampCursor()
	return m, cmd
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.ensureVisible()
	m.selectedID = ""
	if rec := m.Selected(); rec != nil {
		m.selectedID = rec.ID
	}
}

// applyFilter narrows the visible list with a fuzzy match over
// "METHOD host/path" keys. Matches are shown in log order, newest first,
// rather than by match score.
func (m *Model) applyFilter() {
	query := strings.TrimSpace(m.filterInput.Value())
	m.filtered = m.filtered[:0]

	if query == "" {
		for i := range m.records {
			m.filtered = append(m.filtered, i)
		}
		return
	}

	keys := make([]string, len(m.records))
	for i, rec := range m.records {
		keys[i] = rec.Method + " " + displayURL(rec.URL)
	}
	matches := fuzzy.Find(query, keys)
	idxs := make([]int, 0, len(matches))
	for _, match := range matches {
		idxs = append(idxs, match.Index)
	}
	sort.Ints(idxs)
	m.filtered = append(m.filtered, idxs...)
}

func (m *Model) ensureVisible() {
	rows := m.visibleRows()
	if rows <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// visibleRows is the number of list rows that fit: the inner height minus
// the title and the blank line under it, minus the filter line when shown.
func (m Model) visibleRows() int {
	rows := m.height - 2 - 2
	if m.filtering {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// View implements tea.Model.
func (m Model) View() string {
	border := m.styles.UnfocusedBorder
	if m.focused {
		border = m.styles.FocusedBorder
	}

	innerW := m.width - 2
	if innerW < 1 {
		innerW = 1
	}
	innerH := m.height - 2
	if innerH < 1 {
		innerH = 1
	}

	var lines []string
	lines = append(lines, m.styles.Title.Render("Requests"))
	lines = append(lines, "")

	if len(m.filtered) == 0 {
		if m.filterInput.Value() != "" {
			lines = append(lines, m.styles.Muted.Render("  No matches"))
		} else {
			lines = append(lines, m.styles.Muted.Render("  Waiting for traffic"))
		}
	} else {
		rows := m.visibleRows()
		end := m.offset + rows
		if end > len(m.filtered) {
			end = len(m.filtered)
		}
		start := m.offset
		if start > len(m.filtered)-1 {
			start = max(0, len(m.filtered)-1)
		}
		for vi := start; vi < end; vi++ {
			rec := m.records[m.filtered[vi]]
			lines = append(lines, m.renderItem(rec, vi == m.cursor, innerW))
		}
	}

	content := strings.Join(lines, "\n")
	if m.filtering {
		content = m.fitHeight(content, innerH-1)
		content += "\n" + m.filterInput.View()
	} else {
		content = m.fitHeight(content, innerH)
	}

	return border.
		Width(innerW).
		Height(innerH).
		Render(content)
}

func (m Model) renderItem(rec *record.Record, isCursor bool, maxWidth int) string {
	badge := m.styles.MethodStyle(rec.Method).Render(padMethod(rec.Method))
	status := m.styles.StatusStyle(rec.Status).Render(statusCell(rec.Status))

	url := displayURL(rec.URL)
	used := lipgloss.Width(badge) + lipgloss.Width(status) + 2
	avail := maxWidth - used
	if avail < 1 {
		avail = 1
	}
	if lipgloss.Width(url) > avail {
		url = stripForWidth(url, avail)
	}

	line := badge + " " + status + " " + m.styles.Normal.Render(url)

	if isCursor {
		plain := stripForWidth(line, maxWidth)
		return m.styles.Cursor.Width(maxWidth).Render(plain)
	}

	return line
}

// statusCell renders a status as a fixed three-column cell.
func statusCell(st record.Status) string {
	switch {
	case st.IsPending():
		return "..."
	case st.IsError():
		return "ERR"
	default:
		return strconv.Itoa(st.Code)
	}
}

// displayURL drops the scheme so list lines start at the host.
func displayURL(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		return raw[i+3:]
	}
	return raw
}

// padMethod pads an HTTP method to 6 chars.
func padMethod(method string) string {
	if len(method) >= 6 {
		return method[:6]
	}
	return method + strings.Repeat(" ", 6-len(method))
}

// fitHeight truncates or pads content to the given height.
func (m Model) fitHeight(content string, h int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// stripForWidth returns the raw text for cursor rendering.
// We use lipgloss to measure and truncate.
func stripForWidth(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
