package detail

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/pretty"

	"github.com/reqlens/reqlens/internal/ui/theme"
	"github.com/reqlens/reqlens/pkg/record"
)

// BodyModel displays the response body with syntax highlighting, or the
// failure message for an errored exchange.
type BodyModel struct {
	viewport  viewport.Model
	search    SearchBar
	styles    theme.Styles
	width     int
	height    int
	wrap      bool
	hasBody   bool
	searching bool
	raw       string
	contType  string
	errText   string
}

// NewBodyModel creates a new body viewer.
func NewBodyModel(t theme.Theme, s theme.Styles) BodyModel {
	vp := viewport.New(0, 0)
	return BodyModel{
		viewport: vp,
		search:   NewSearchBar(t, s),
		styles:   s,
	}
}

// SetRecord loads the record's response side into the viewer.
func (m *BodyModel) SetRecord(rec *record.Record) {
	m.raw = ""
	m.contType = ""
	m.errText = ""
	m.hasBody = false

	if rec == nil {
		m.viewport.SetContent("")
		return
	}
	if rec.Status.IsError() {
		m.errText = rec.Error
		m.hasBody = true
		m.renderContent()
		return
	}
	m.raw = rec.ResponseBody
	m.contType = rec.ResponseHeader("Content-Type")
	m.hasBody = rec.ResponseBody != ""
	m.renderContent()
}

// SetSize updates the viewport dimensions.
func (m *BodyModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.search.SetWidth(w)
	vpH := h
	if m.searching {
		vpH-- // search bar takes the last line
	}
	m.viewport.Width = w
	m.viewport.Height = vpH
	if m.hasBody {
		m.renderContent()
	}
}

// Searching returns whether search is active.
func (m BodyModel) Searching() bool {
	return m.searching
}

// searchCapturing reports whether the search input is eating keystrokes,
// as opposed to being open but confirmed.
func (m BodyModel) searchCapturing() bool {
	return m.searching && m.search.Capturing()
}

func (m *BodyModel) renderContent() {
	if !m.hasBody {
		return
	}
	if m.errText != "" {
		m.viewport.SetContent(m.styles.Error.Render("request failed: " + m.errText))
		return
	}
	if m.raw == record.BinaryBody {
		m.viewport.SetContent(m.styles.Muted.Render(record.BinaryBody))
		return
	}

	src := m.raw
	lexerName := detectLexer(m.contType)

	// Pretty-print JSON before highlighting. A truncated capture is no
	// longer valid JSON, so it is left as captured.
	if lexerName == "json" && !strings.HasSuffix(src, record.TruncationMark) {
		src = string(pretty.Pretty([]byte(src)))
	}

	highlighted := highlight(src, lexerName, m.width, m.wrap)
	m.viewport.SetContent(highlighted)
}

func (m *BodyModel) renderContentWithSearch() {
	if !m.hasBody {
		return
	}

	content := m.raw
	if m.errText != "" {
		content = "request failed: " + m.errText
	} else if detectLexer(m.contType) == "json" && !strings.HasSuffix(content, record.TruncationMark) {
		content = string(pretty.Pretty([]byte(content)))
	}
	if m.wrap && m.width > 0 {
		content = wrapText(content, m.width)
	}

	// Plain text for match styling; chroma output would collide with it.
	highlighted, matchLines := m.search.Highlight(content)
	m.search.SetMatches(matchLines)
	m.viewport.SetContent(highlighted)

	if len(matchLines) > 0 {
		m.viewport.SetYOffset(matchLines[0])
	}
}

func (m BodyModel) Init() tea.Cmd {
	return nil
}

func (m BodyModel) Update(msg tea.Msg) (BodyModel, tea.Cmd) {
	if m.searchCapturing() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if !m.search.Active() {
			m.searching = false
			m.viewport.Height = m.height
			m.renderContent()
		} else if m.search.Query() != "" {
			m.renderContentWithSearch()
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "/", "ctrl+f":
			m.searching = true
			m.search.Open()
			m.viewport.Height = m.height - 1
			return m, nil
		case "w":
			m.wrap = !m.wrap
			m.renderContent()
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		case "n":
			if m.searching && m.search.Query() != "" {
				m.search.NextMatch()
				if line := m.search.CurrentMatchLine(); line >= 0 {
					m.viewport.SetYOffset(line)
				}
				return m, nil
			}
		case "N":
			if m.searching && m.search.Query() != "" {
				m.search.PrevMatch()
				if line := m.search.CurrentMatchLine(); line >= 0 {
					m.viewport.SetYOffset(line)
				}
				return m, nil
			}
		case "esc":
			if m.searching {
				m.searching = false
				m.search.Close()
				m.viewport.Height = m.height
				m.renderContent()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m BodyModel) View() string {
	if !m.hasBody {
		return m.styles.Muted.Render("No response body")
	}
	if m.searching {
		return m.viewport.View() + "\n" + m.search.View()
	}
	return m.viewport.View()
}

// detectLexer maps a Content-Type to a chroma lexer name.
func detectLexer(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "html"):
		return "html"
	case strings.Contains(ct, "xml"):
		return "xml"
	case strings.Contains(ct, "css"):
		return "css"
	case strings.Contains(ct, "javascript"):
		return "javascript"
	default:
		return "text"
	}
}

// highlight applies chroma syntax highlighting to source text.
func highlight(source, lexerName string, width int, wrap bool) string {
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get("monokai")
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}

	result := buf.String()
	if wrap && width > 0 {
		result = wrapText(result, width)
	}
	return result
}

// wrapText wraps long lines using lipgloss.
func wrapText(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
