package ui

import (
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// palette colours the scene. User, Server and Token follow the classic
// blue user, green auth server and purple card.
type palette struct {
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Accent  lipgloss.Color
	User    lipgloss.Color
	Server  lipgloss.Color
	Token   lipgloss.Color
	Gate    lipgloss.Color
	Denied  lipgloss.Color
	Area    lipgloss.Color
	Lane    lipgloss.Color
	Glamour string
}

var palettes = map[string]palette{
	"catppuccin": {
		Text:    lipgloss.Color("#cdd6f4"),
		Muted:   lipgloss.Color("#a6adc8"),
		Border:  lipgloss.Color("#585b70"),
		Accent:  lipgloss.Color("#f9e2af"),
		User:    lipgloss.Color("#89b4fa"),
		Server:  lipgloss.Color("#a6e3a1"),
		Token:   lipgloss.Color("#cba6f7"),
		Gate:    lipgloss.Color("#fab387"),
		Denied:  lipgloss.Color("#f38ba8"),
		Area:    lipgloss.Color("#94e2d5"),
		Lane:    lipgloss.Color("#45475a"),
		Glamour: "dark",
	},
	"dracula": {
		Text:    lipgloss.Color("#f8f8f2"),
		Muted:   lipgloss.Color("#6272a4"),
		Border:  lipgloss.Color("#44475a"),
		Accent:  lipgloss.Color("#f1fa8c"),
		User:    lipgloss.Color("#8be9fd"),
		Server:  lipgloss.Color("#50fa7b"),
		Token:   lipgloss.Color("#bd93f9"),
		Gate:    lipgloss.Color("#ffb86c"),
		Denied:  lipgloss.Color("#ff5555"),
		Area:    lipgloss.Color("#ff79c6"),
		Lane:    lipgloss.Color("#343746"),
		Glamour: "dracula",
	},
	"gruvbox": {
		Text:    lipgloss.Color("#ebdbb2"),
		Muted:   lipgloss.Color("#a89984"),
		Border:  lipgloss.Color("#665c54"),
		Accent:  lipgloss.Color("#fabd2f"),
		User:    lipgloss.Color("#83a598"),
		Server:  lipgloss.Color("#b8bb26"),
		Token:   lipgloss.Color("#d3869b"),
		Gate:    lipgloss.Color("#fe8019"),
		Denied:  lipgloss.Color("#fb4934"),
		Area:    lipgloss.Color("#8ec07c"),
		Lane:    lipgloss.Color("#3c3836"),
		Glamour: "dark",
	},
	"solarized_dark": {
		Text:    lipgloss.Color("#fdf6e3"),
		Muted:   lipgloss.Color("#93a1a1"),
		Border:  lipgloss.Color("#586e75"),
		Accent:  lipgloss.Color("#b58900"),
		User:    lipgloss.Color("#268bd2"),
		Server:  lipgloss.Color("#859900"),
		Token:   lipgloss.Color("#6c71c4"),
		Gate:    lipgloss.Color("#cb4b16"),
		Denied:  lipgloss.Color("#dc322f"),
		Area:    lipgloss.Color("#2aa198"),
		Lane:    lipgloss.Color("#073642"),
		Glamour: "dark",
	},
}

const defaultTheme = "catppuccin"

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes[defaultTheme]
}

func themeNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func nextThemeName(current string, step int) string {
	names := themeNames()
	if len(names) == 0 {
		return current
	}
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	idx = (idx + step) % len(names)
	if idx < 0 {
		idx += len(names)
	}
	return names[idx]
}

// renderMarkdown renders narration for the given width. Rendering errors fall
// back to the raw text.
func renderMarkdown(md string, p palette, width int) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(p.Glamour), glamour.WithWordWrap(width))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
