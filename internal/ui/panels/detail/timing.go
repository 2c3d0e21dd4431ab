package detail

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/reqlens/reqlens/internal/ui/theme"
	"github.com/reqlens/reqlens/pkg/record"
)

// TimingModel displays the phase breakdown and transfer sizes of a
// finished exchange.
type TimingModel struct {
	styles  theme.Styles
	width   int
	height  int
	has     bool
	content string
}

// NewTimingModel creates a new timing display.
func NewTimingModel(s theme.Styles) TimingModel {
	return TimingModel{
		styles: s,
	}
}

// SetRecord populates the timing rows. Pending records have nothing to
// show yet.
func (m *TimingModel) SetRecord(rec *record.Record) {
	if rec == nil || rec.Status.IsPending() {
		m.has = false
		return
	}
	m.has = true

	var b strings.Builder

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s  %s\n",
			m.styles.Key.Width(12).Render(label),
			m.styles.Normal.Render(value),
		)
	}

	row("Started", rec.StartTime.Format("15:04:05.000"))
	if t := rec.Timing; t != nil {
		row("DNS", formatMs(t.DNS))
		row("Connect", formatMs(t.TCP))
		row("TTFB", formatMs(t.TTFB))
		row("Download", formatMs(t.Download))
		row("Total", formatMs(t.Total))
	} else {
		row("Duration", formatMs(rec.DurationMs))
	}

	if s := rec.Size; s != nil {
		b.WriteString("\n")
		row("Transferred", formatBytes(s.Transferred))
		row("Resource", formatBytes(s.Resource))
		if s.Encoding != "" {
			row("Encoding", s.Encoding)
		}
	}

	m.content = strings.TrimRight(b.String(), "\n")
}

// SetSize updates the dimensions.
func (m *TimingModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m TimingModel) Init() tea.Cmd {
	return nil
}

func (m TimingModel) Update(msg tea.Msg) (TimingModel, tea.Cmd) {
	return m, nil
}

func (m TimingModel) View() string {
	if !m.has {
		return m.styles.Muted.Render("No timing data yet")
	}
	return m.content
}

// formatMs renders a millisecond count, switching to seconds past 1s.
func formatMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}

// formatBytes returns a human-readable byte count.
func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
