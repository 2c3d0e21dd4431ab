package detail

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tidwall/pretty"

	"github.com/reqlens/reqlens/internal/ui/theme"
	"github.com/reqlens/reqlens/pkg/record"
)

// RequestModel displays the outgoing half of the exchange: the body the
// application sent, highlighted the same way as the response.
type RequestModel struct {
	viewport viewport.Model
	styles   theme.Styles
	width    int
	height   int
	has      bool
	raw      string
	contType string
}

// NewRequestModel creates a new request body viewer.
func NewRequestModel(s theme.Styles) RequestModel {
	vp := viewport.New(0, 0)
	return RequestModel{
		viewport: vp,
		styles:   s,
	}
}

// SetRecord loads the record's request side into the viewer.
func (m *RequestModel) SetRecord(rec *record.Record) {
	m.raw = ""
	m.contType = ""
	m.has = false

	if rec == nil {
		m.viewport.SetContent("")
		return
	}
	m.raw = rec.RequestBody
	m.contType = rec.RequestHeader("Content-Type")
	m.has = rec.RequestBody != ""
	m.renderContent()
}

// SetSize updates the viewport dimensions.
func (m *RequestModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h
}

func (m *RequestModel) renderContent() {
	if !m.has {
		return
	}
	if m.raw == record.BinaryBody {
		m.viewport.SetContent(m.styles.Muted.Render(record.BinaryBody))
		return
	}

	src := m.raw
	lexerName := detectLexer(m.contType)
	if lexerName == "json" && !strings.HasSuffix(src, record.TruncationMark) {
		src = string(pretty.Pretty([]byte(src)))
	}
	m.viewport.SetContent(highlight(src, lexerName, m.width, false))
}

func (m RequestModel) Init() tea.Cmd {
	return nil
}

func (m RequestModel) Update(msg tea.Msg) (RequestModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m RequestModel) View() string {
	if !m.has {
		return m.styles.Muted.Render("No request body")
	}
	return m.viewport.View()
}
