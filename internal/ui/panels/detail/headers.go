package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/reqlens/reqlens/internal/ui/theme"
	"github.com/reqlens/reqlens/pkg/record"
)

// HeadersModel displays both header sets of an exchange, each in the order
// it was captured. Repeated names show up once per value.
type HeadersModel struct {
	viewport viewport.Model
	styles   theme.Styles
	width    int
	height   int
	has      bool
}

// NewHeadersModel creates a new headers viewer.
func NewHeadersModel(s theme.Styles) HeadersModel {
	vp := viewport.New(0, 0)
	return HeadersModel{
		viewport: vp,
		styles:   s,
	}
}

// SetRecord populates the header display from a record.
func (m *HeadersModel) SetRecord(rec *record.Record) {
	if rec == nil || (len(rec.RequestHeaders) == 0 && len(rec.ResponseHeaders) == 0) {
		m.has = false
		m.viewport.SetContent("")
		return
	}
	m.has = true

	var b strings.Builder
	m.writeSection(&b, "Response", rec.ResponseHeaders)
	m.writeSection(&b, "Request", rec.RequestHeaders)
	m.viewport.SetContent(strings.TrimRight(b.String(), "\n"))
}

func (m *HeadersModel) writeSection(b *strings.Builder, title string, hs []record.Header) {
	if len(hs) == 0 {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	for _, h := range hs {
		key := m.styles.Key.Render(h.Name)
		sep := m.styles.Muted.Render(" : ")
		val := m.styles.Normal.Render(h.Value)
		fmt.Fprintf(b, "%s%s%s\n", key, sep, val)
	}
}

// SetSize updates the viewport dimensions.
func (m *HeadersModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h
}

func (m HeadersModel) Init() tea.Cmd {
	return nil
}

func (m HeadersModel) Update(msg tea.Msg) (HeadersModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m HeadersModel) View() string {
	if !m.has {
		return m.styles.Muted.Render("No headers captured")
	}
	return m.viewport.View()
}
