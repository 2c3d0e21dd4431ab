package layout

import "testing"

func TestCalculate_WideScreen(t *testing.T) {
	l := Calculate(160, 40)

	if l.SinglePanel {
		t.Error("should not be single panel at 160 cols")
	}
	if l.ListWidth < minListWidth {
		t.Errorf("list too narrow: %d < %d", l.ListWidth, minListWidth)
	}
	if l.ListWidth > maxListWidth {
		t.Errorf("list too wide: %d > %d", l.ListWidth, maxListWidth)
	}
	if total := l.ListWidth + l.DetailWidth; total != 160 {
		t.Errorf("panel widths should sum to 160, got %d", total)
	}
	if l.ContentHeight != 39 {
		t.Errorf("content height = %d, want 39 (one row for the status bar)", l.ContentHeight)
	}
}

func TestCalculate_MediumScreen(t *testing.T) {
	l := Calculate(70, 30)

	if l.SinglePanel {
		t.Error("should not be single panel at 70 cols")
	}
	if l.ListWidth != minListWidth {
		t.Errorf("list width = %d, want clamped minimum %d", l.ListWidth, minListWidth)
	}
	if total := l.ListWidth + l.DetailWidth; total != 70 {
		t.Errorf("panel widths should sum to 70, got %d", total)
	}
}

func TestCalculate_NarrowScreen(t *testing.T) {
	l := Calculate(50, 20)

	if !l.SinglePanel {
		t.Error("should be single panel at 50 cols")
	}
	if l.ListWidth != 50 || l.DetailWidth != 50 {
		t.Errorf("single panel should use full width, got list=%d detail=%d", l.ListWidth, l.DetailWidth)
	}
}

func TestCalculate_TinyTerminal(t *testing.T) {
	l := Calculate(10, 1)

	if l.ContentHeight < 1 {
		t.Errorf("content height must stay positive, got %d", l.ContentHeight)
	}
}
