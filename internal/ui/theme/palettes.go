package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CatppuccinMocha is the default dark theme.
var CatppuccinMocha = Theme{
	Name:    "Catppuccin Mocha",
	Base:    lipgloss.Color("#1e1e2e"),
	Mantle:  lipgloss.Color("#181825"),
	Crust:   lipgloss.Color("#11111b"),
	Surface: lipgloss.Color("#313244"),
	Overlay: lipgloss.Color("#45475a"),

	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Muted:   lipgloss.Color("#585b70"),

	Rosewater: lipgloss.Color("#f5e0dc"),
	Flamingo:  lipgloss.Color("#f2cdcd"),
	Pink:      lipgloss.Color("#f5c2e7"),
	Mauve:     lipgloss.Color("#cba6f7"),
	Red:       lipgloss.Color("#f38ba8"),
	Maroon:    lipgloss.Color("#eba0ac"),
	Peach:     lipgloss.Color("#fab387"),
	Yellow:    lipgloss.Color("#f9e2af"),
	Green:     lipgloss.Color("#a6e3a1"),
	Teal:      lipgloss.Color("#94e2d5"),
	Sky:       lipgloss.Color("#89dceb"),
	Sapphire:  lipgloss.Color("#74c7ec"),
	Blue:      lipgloss.Color("#89b4fa"),
	Lavender:  lipgloss.Color("#b4befe"),

	BorderFocused:   lipgloss.Color("#cba6f7"),
	BorderUnfocused: lipgloss.Color("#585b70"),
	StatusOK:        lipgloss.Color("#a6e3a1"),
	StatusError:     lipgloss.Color("#f38ba8"),
	StatusWarning:   lipgloss.Color("#f9e2af"),
	StatusPending:   lipgloss.Color("#a6adc8"),
}

// CatppuccinLatte is the light counterpart.
var CatppuccinLatte = Theme{
	Name:    "Catppuccin Latte",
	Base:    lipgloss.Color("#eff1f5"),
	Mantle:  lipgloss.Color("#e6e9ef"),
	Crust:   lipgloss.Color("#dce0e8"),
	Surface: lipgloss.Color("#ccd0da"),
	Overlay: lipgloss.Color("#9ca0b0"),

	Text:    lipgloss.Color("#4c4f69"),
	Subtext: lipgloss.Color("#6c6f85"),
	Muted:   lipgloss.Color("#8c8fa1"),

	Rosewater: lipgloss.Color("#dc8a78"),
	Flamingo:  lipgloss.Color("#dd7878"),
	Pink:      lipgloss.Color("#ea76cb"),
	Mauve:     lipgloss.Color("#8839ef"),
	Red:       lipgloss.Color("#d20f39"),
	Maroon:    lipgloss.Color("#e64553"),
	Peach:     lipgloss.Color("#fe640b"),
	Yellow:    lipgloss.Color("#df8e1d"),
	Green:     lipgloss.Color("#40a02b"),
	Teal:      lipgloss.Color("#179299"),
	Sky:       lipgloss.Color("#04a5e5"),
	Sapphire:  lipgloss.Color("#209fb5"),
	Blue:      lipgloss.Color("#1e66f5"),
	Lavender:  lipgloss.Color("#7287fd"),

	BorderFocused:   lipgloss.Color("#8839ef"),
	BorderUnfocused: lipgloss.Color("#8c8fa1"),
	StatusOK:        lipgloss.Color("#40a02b"),
	StatusError:     lipgloss.Color("#d20f39"),
	StatusWarning:   lipgloss.Color("#df8e1d"),
	StatusPending:   lipgloss.Color("#6c6f85"),
}

// Nord is the dark alternative.
var Nord = Theme{
	Name:    "Nord",
	Base:    lipgloss.Color("#2e3440"),
	Mantle:  lipgloss.Color("#292e39"),
	Crust:   lipgloss.Color("#242933"),
	Surface: lipgloss.Color("#3b4252"),
	Overlay: lipgloss.Color("#434c5e"),

	Text:    lipgloss.Color("#eceff4"),
	Subtext: lipgloss.Color("#d8dee9"),
	Muted:   lipgloss.Color("#4c566a"),

	Rosewater: lipgloss.Color("#d08770"),
	Flamingo:  lipgloss.Color("#d08770"),
	Pink:      lipgloss.Color("#b48ead"),
	Mauve:     lipgloss.Color("#b48ead"),
	Red:       lipgloss.Color("#bf616a"),
	Maroon:    lipgloss.Color("#bf616a"),
	Peach:     lipgloss.Color("#d08770"),
	Yellow:    lipgloss.Color("#ebcb8b"),
	Green:     lipgloss.Color("#a3be8c"),
	Teal:      lipgloss.Color("#8fbcbb"),
	Sky:       lipgloss.Color("#88c0d0"),
	Sapphire:  lipgloss.Color("#81a1c1"),
	Blue:      lipgloss.Color("#5e81ac"),
	Lavender:  lipgloss.Color("#b48ead"),

	BorderFocused:   lipgloss.Color("#88c0d0"),
	BorderUnfocused: lipgloss.Color("#4c566a"),
	StatusOK:        lipgloss.Color("#a3be8c"),
	StatusError:     lipgloss.Color("#bf616a"),
	StatusWarning:   lipgloss.Color("#ebcb8b"),
	StatusPending:   lipgloss.Color("#d8dee9"),
}

// Catalog maps normalized theme names to themes.
var Catalog = map[string]Theme{}

func init() {
	register(CatppuccinMocha)
	register(CatppuccinLatte)
	register(Nord)
}

func register(t Theme) {
	Catalog[normalizeKey(t.Name)] = t
}

// Default returns the default theme.
func Default() Theme {
	return CatppuccinMocha
}

// Get returns a theme by name.
func Get(name string) (Theme, bool) {
	t, ok := Catalog[normalizeKey(name)]
	return t, ok
}

// Names returns all registered theme names.
func Names() []string {
	var names []string
	for _, t := range Catalog {
		names = append(names, t.Name)
	}
	return names
}

// Resolve looks up a theme by name, falling back to the default.
func Resolve(name string) Theme {
	if t, ok := Get(name); ok {
		return t
	}
	return Default()
}

func normalizeKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}
