package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reqlens/reqlens/internal/ui/theme"
)

// SearchBar is the in-body search input plus match bookkeeping. The body
// viewer feeds it plain text and jumps the viewport to the line of the
// current match.
type SearchBar struct {
	input   textinput.Model
	active  bool
	query   string
	matches []int // line numbers containing the query
	current int   // index into matches
	match   lipgloss.Style
	styles  theme.Styles
	width   int
}

// NewSearchBar creates a search bar themed for match highlighting.
func NewSearchBar(t theme.Theme, s theme.Styles) SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 256
	ti.Prompt = "/ "
	return SearchBar{
		input:  ti,
		match:  lipgloss.NewStyle().Background(t.Yellow).Foreground(t.Base).Bold(true),
		styles: s,
	}
}

// Active returns whether the search bar is visible.
func (m SearchBar) Active() bool {
	return m.active
}

// Query returns the current search query.
func (m SearchBar) Query() string {
	return m.query
}

// Capturing reports whether the input field is consuming keystrokes.
func (m SearchBar) Capturing() bool {
	return m.active && m.input.Focused()
}

// Open activates the search bar with an empty query.
func (m *SearchBar) Open() {
	m.active = true
	m.input.SetValue("")
	m.input.Focus()
	m.query = ""
	m.matches = nil
	m.current = 0
}

// Close deactivates the search bar.
func (m *SearchBar) Close() {
	m.active = false
	m.input.Blur()
	m.query = ""
	m.matches = nil
	m.current = 0
}

// SetWidth sets the search bar width.
func (m *SearchBar) SetWidth(w int) {
	m.width = w
	m.input.Width = w - 20
	if m.input.Width < 10 {
		m.input.Width = 10
	}
}

// Update handles messages while the search bar is open.
func (m SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd) {
	if !m.active {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.Close()
			return m, nil
		case "enter":
			m.query = m.input.Value()
			m.input.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.query = m.input.Value()
	return m, cmd
}

// SetMatches updates the match positions.
func (m *SearchBar) SetMatches(matches []int) {
	m.matches = matches
	if len(matches) == 0 || m.current >= len(matches) {
		m.current = 0
	}
}

// NextMatch moves to the next match, wrapping around.
func (m *SearchBar) NextMatch() {
	if len(m.matches) > 0 {
		m.current = (m.current + 1) % len(m.matches)
	}
}

// PrevMatch moves to the previous match, wrapping around.
func (m *SearchBar) PrevMatch() {
	if len(m.matches) > 0 {
		m.current = (m.current - 1 + len(m.matches)) % len(m.matches)
	}
}

// CurrentMatchLine returns the line number of the current match, or -1.
func (m SearchBar) CurrentMatchLine() int {
	if len(m.matches) > 0 && m.current < len(m.matches) {
		return m.matches[m.current]
	}
	return -1
}

// View renders the input line with a match counter.
func (m SearchBar) View() string {
	if !m.active {
		return ""
	}

	var info string
	if m.query != "" {
		if len(m.matches) == 0 {
			info = m.styles.Error.Render(" No matches")
		} else {
			info = m.styles.Muted.Render(fmt.Sprintf(" %d/%d", m.current+1, len(m.matches)))
		}
	}

	bar := m.input.View() + info
	return lipgloss.NewStyle().Width(m.width).Render(bar)
}

// Highlight marks every occurrence of the query in content, case
// insensitively, and returns the marked text with the list of matching
// line numbers. Content must be plain text; match styling would collide
// with existing escape sequences.
func (m SearchBar) Highlight(content string) (string, []int) {
	if m.query == "" {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	query := strings.ToLower(m.query)
	var matchLines []int

	for i, line := range lines {
		marked, ok := m.markLine(line, query)
		if ok {
			matchLines = append(matchLines, i)
			lines[i] = marked
		}
	}

	return strings.Join(lines, "\n"), matchLines
}

// markLine styles each occurrence of query within line, preserving the
// original casing of the matched text.
func (m SearchBar) markLine(line, query string) (string, bool) {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, query) {
		return line, false
	}

	var b strings.Builder
	for {
		idx := strings.Index(lower, query)
		if idx < 0 {
			b.WriteString(line)
			break
		}
		b.WriteString(line[:idx])
		b.WriteString(m.match.Render(line[idx : idx+len(query)]))
		line = line[idx+len(query):]
		lower = lower[idx+len(query):]
	}
	return b.String(), true
}
