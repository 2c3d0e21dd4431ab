package layout

// PanelLayout holds calculated dimensions for the request-list/detail split.
type PanelLayout struct {
	Width  int
	Height int

	ListWidth   int
	DetailWidth int

	ContentHeight int // height minus status bar

	SinglePanel bool
}

const (
	statusBarHeight = 1
	minListWidth    = 32
	maxListWidth    = 60
)

// Calculate computes the panel layout from terminal dimensions. Narrow
// terminals collapse to a single panel that shows whichever side has focus.
func Calculate(width, height int) PanelLayout {
	l := PanelLayout{
		Width:         width,
		Height:        height,
		ContentHeight: height - statusBarHeight,
	}

	if l.ContentHeight < 1 {
		l.ContentHeight = 1
	}

	if width < 70 {
		l.SinglePanel = true
		l.ListWidth = width
		l.DetailWidth = width
		return l
	}

	l.ListWidth = clamp(width*2/5, minListWidth, maxListWidth)
	l.DetailWidth = width - l.ListWidth

	return l
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
