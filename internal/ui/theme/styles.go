package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/reqlens/reqlens/pkg/record"
)

// Styles holds pre-computed Lip Gloss styles for the current theme.
type Styles struct {
	// Panel borders
	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style

	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	URL      lipgloss.Style
	Key      lipgloss.Style
	Value    lipgloss.Style
	Hint     lipgloss.Style

	// HTTP method styles
	MethodGET    lipgloss.Style
	MethodPOST   lipgloss.Style
	MethodPUT    lipgloss.Style
	MethodPATCH  lipgloss.Style
	MethodDELETE lipgloss.Style

	// Status badges
	StatusPending lipgloss.Style

	// Components
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	StatusBar   lipgloss.Style
	Selected    lipgloss.Style
	Cursor      lipgloss.Style
}

// NewStyles creates a Styles set from a Theme.
func NewStyles(t Theme) Styles {
	return Styles{
		FocusedBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocused),
		UnfocusedBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderUnfocused),

		Title:    lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(t.Subtext),
		Normal:   lipgloss.NewStyle().Foreground(t.Text),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
		Bold:     lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(t.Red),
		Success:  lipgloss.NewStyle().Foreground(t.Green),
		Warning:  lipgloss.NewStyle().Foreground(t.Yellow),
		URL:      lipgloss.NewStyle().Foreground(t.Blue).Underline(true),
		Key:      lipgloss.NewStyle().Foreground(t.Mauve),
		Value:    lipgloss.NewStyle().Foreground(t.Text),
		Hint:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true),

		MethodGET:    lipgloss.NewStyle().Foreground(t.Green).Bold(true),
		MethodPOST:   lipgloss.NewStyle().Foreground(t.Yellow).Bold(true),
		MethodPUT:    lipgloss.NewStyle().Foreground(t.Blue).Bold(true),
		MethodPATCH:  lipgloss.NewStyle().Foreground(t.Peach).Bold(true),
		MethodDELETE: lipgloss.NewStyle().Foreground(t.Red).Bold(true),

		StatusPending: lipgloss.NewStyle().Foreground(t.StatusPending).Italic(true),

		TabActive: lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Surface).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(t.Subtext).
			Padding(0, 2),
		StatusBar: lipgloss.NewStyle().
			Background(t.Surface).
			Foreground(t.Text).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(t.Surface).
			Foreground(t.Text),
		Cursor: lipgloss.NewStyle().
			Background(t.Overlay).
			Foreground(t.Text),
	}
}

// MethodStyle returns the style for an HTTP method.
func (s Styles) MethodStyle(method string) lipgloss.Style {
	switch method {
	case "GET":
		return s.MethodGET
	case "POST":
		return s.MethodPOST
	case "PUT":
		return s.MethodPUT
	case "PATCH":
		return s.MethodPATCH
	case "DELETE":
		return s.MethodDELETE
	default:
		return s.Normal
	}
}

// StatusStyle returns the style for a request status badge.
func (s Styles) StatusStyle(st record.Status) lipgloss.Style {
	if st.IsPending() {
		return s.StatusPending
	}
	if st.IsError() {
		return s.Error
	}
	switch {
	case st.Code >= 200 && st.Code < 300:
		return s.Success
	case st.Code >= 400 && st.Code < 500:
		return s.Warning
	case st.Code >= 500:
		return s.Error
	default:
		return s.Normal
	}
}
