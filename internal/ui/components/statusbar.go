package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/reqlens/reqlens/internal/ui/theme"
	"github.com/reqlens/reqlens/pkg/record"
)

// clearStatusMsg clears a temporary status message.
type clearStatusMsg struct{}

// StatusBar is a full-width bottom status bar summarizing the request log
// and the selected record.
type StatusBar struct {
	count    int
	capacity int
	selected *record.Record
	source   string
	message  string
	width    int
	theme    theme.Theme
	styles   theme.Styles
}

// NewStatusBar creates a new status bar.
func NewStatusBar(t theme.Theme, s theme.Styles) StatusBar {
	return StatusBar{
		theme:  t,
		styles: s,
	}
}

// SetCounts sets the record count and log capacity. A capacity of zero
// means unknown, as when viewing a remote instance, and only the count is
// shown.
func (m *StatusBar) SetCounts(count, capacity int) {
	m.count = count
	m.capacity = capacity
}

// SetSelected sets the record summarized on the left.
func (m *StatusBar) SetSelected(rec *record.Record) {
	m.selected = rec
}

// SetSource names the snapshot source shown in the center ("LIVE" for the
// in-process log, "ATTACHED" when following another process).
func (m *StatusBar) SetSource(s string) {
	m.source = s
}

// SetWidth sets the available width.
func (m *StatusBar) SetWidth(w int) {
	m.width = w
}

// SetMessage sets a temporary status message.
func (m *StatusBar) SetMessage(text string) {
	m.message = text
}

// Init implements tea.Model.
func (m StatusBar) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatusBar) Update(msg tea.Msg) (StatusBar, tea.Cmd) {
	switch msg.(type) {
	case clearStatusMsg:
		m.message = ""
	}
	return m, nil
}

// View renders the status bar.
func (m StatusBar) View() string {
	barStyle := lipgloss.NewStyle().
		Background(m.theme.Surface).
		Foreground(m.theme.Text).
		Width(m.width)

	on := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Background(m.theme.Surface)
	}

	// Left section: request count plus the selected record's summary.
	var leftParts []string

	if m.message != "" {
		leftParts = append(leftParts, on(m.theme.Text).Render(m.message))
	} else {
		counts := fmt.Sprintf("%d requests", m.count)
		if m.capacity > 0 {
			counts = fmt.Sprintf("%d/%d requests", m.count, m.capacity)
		}
		leftParts = append(leftParts, on(m.theme.Subtext).Render(counts))

		if rec := m.selected; rec != nil {
			leftParts = append(leftParts,
				on(m.theme.StatusColor(rec.Status)).Bold(true).Render(rec.Status.String()))

			if rec.Status.Terminal() {
				leftParts = append(leftParts, on(m.theme.Subtext).Render(formatMs(rec.DurationMs)))
			}
			if rec.Size != nil && rec.Size.Transferred > 0 {
				leftParts = append(leftParts, on(m.theme.Subtext).Render(
					humanize.IBytes(uint64(rec.Size.Transferred))))
			}
		}
	}

	left := strings.Join(leftParts, " │ ")

	// Center: snapshot source
	center := ""
	if m.source != "" {
		center = on(m.theme.Mauve).Bold(true).Render("[" + m.source + "]")
	}

	// Right: hints
	hint := on(m.theme.Muted).Render("?:help  q:quit")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(hint)

	totalContent := leftWidth + centerWidth + rightWidth
	if totalContent >= m.width {
		gap := m.width - totalContent
		if gap < 1 {
			gap = 1
		}
		line := " " + left + strings.Repeat(" ", gap) + center + " " + hint
		return barStyle.Render(line)
	}

	remaining := m.width - totalContent - 2
	gap1 := remaining / 2
	gap2 := remaining - gap1

	line := " " + left +
		strings.Repeat(" ", gap1) + center +
		strings.Repeat(" ", gap2) + hint

	return barStyle.Render(line)
}

// formatMs renders a millisecond duration compactly.
func formatMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}
