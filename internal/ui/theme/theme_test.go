package theme

import (
	"testing"

	"github.com/reqlens/reqlens/pkg/record"
)

func TestNormalizeKey(t *testing.T) {
	got := normalizeKey("  Catppuccin Mocha  ")
	if got != "catppuccin-mocha" {
		t.Fatalf("normalizeKey() = %q, want catppuccin-mocha", got)
	}
}

func TestGetBuiltInTheme(t *testing.T) {
	got, ok := Get("  catppuccin mocha ")
	if !ok {
		t.Fatal("expected built-in theme to be found")
	}
	if got.Name != "Catppuccin Mocha" {
		t.Fatalf("theme name = %q, want Catppuccin Mocha", got.Name)
	}
}

func TestNamesIncludesBuiltIns(t *testing.T) {
	names := Names()
	if len(names) != 3 {
		t.Fatalf("expected 3 built-in themes, got %d", len(names))
	}

	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}

	for _, want := range []string{"Catppuccin Mocha", "Catppuccin Latte", "Nord"} {
		if !have[want] {
			t.Fatalf("theme %q not found in Names()", want)
		}
	}
}

func TestResolveBuiltInTheme(t *testing.T) {
	got := Resolve("nord")
	if got.Name != "Nord" {
		t.Fatalf("Resolve(nord) returned %q, want Nord", got.Name)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	got := Resolve("not-a-real-theme")
	if got.Name != CatppuccinMocha.Name {
		t.Fatalf("Resolve(unknown) name = %q, want %q", got.Name, CatppuccinMocha.Name)
	}
}

func TestThemeMethodColor(t *testing.T) {
	theme := Default()

	if got := theme.MethodColor("GET"); got != theme.Green {
		t.Fatalf("GET color = %q, want %q", got, theme.Green)
	}
	if got := theme.MethodColor("POST"); got != theme.Yellow {
		t.Fatalf("POST color = %q, want %q", got, theme.Yellow)
	}
	if got := theme.MethodColor("UNKNOWN"); got != theme.Text {
		t.Fatalf("UNKNOWN color = %q, want %q", got, theme.Text)
	}
}

func TestThemeStatusColor(t *testing.T) {
	theme := Default()

	if got := theme.StatusColor(record.Pending()); got != theme.StatusPending {
		t.Fatalf("pending color = %q, want %q", got, theme.StatusPending)
	}
	if got := theme.StatusColor(record.Failed()); got != theme.StatusError {
		t.Fatalf("error color = %q, want %q", got, theme.StatusError)
	}
	if got := theme.StatusColor(record.Code(204)); got != theme.Green {
		t.Fatalf("2xx color = %q, want %q", got, theme.Green)
	}
	if got := theme.StatusColor(record.Code(302)); got != theme.Blue {
		t.Fatalf("3xx color = %q, want %q", got, theme.Blue)
	}
	if got := theme.StatusColor(record.Code(404)); got != theme.Yellow {
		t.Fatalf("4xx color = %q, want %q", got, theme.Yellow)
	}
	if got := theme.StatusColor(record.Code(500)); got != theme.Red {
		t.Fatalf("5xx color = %q, want %q", got, theme.Red)
	}
}

func TestStatusStyleTracksStatusKind(t *testing.T) {
	s := NewStyles(Default())

	if got := s.StatusStyle(record.Pending()); got.GetItalic() != true {
		t.Fatal("pending status should render italic")
	}
	if got := s.StatusStyle(record.Failed()); got.GetForeground() != s.Error.GetForeground() {
		t.Fatal("failed status should use the error style")
	}
	if got := s.StatusStyle(record.Code(200)); got.GetForeground() != s.Success.GetForeground() {
		t.Fatal("2xx status should use the success style")
	}
}
