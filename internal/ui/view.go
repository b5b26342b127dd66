package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/jwtviz/internal/engine"
)

const sidebarWidth = 34

func (m model) mainWidth() int {
	w := m.width
	if w <= 0 {
		w = 110
	}
	mw := w - sidebarWidth - 3
	if mw < 30 {
		mw = 30
	}
	return mw
}

func (m model) narrationWidth() int { return m.mainWidth() - 4 }

func (m model) View() string {
	p := paletteFor(m.theme)
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1)

	lane := box.Width(m.mainWidth()).Render(renderLane(m.ctrl, p, m.mainWidth()-4))
	story := box.Width(m.mainWidth()).Render(m.rendered)
	main := lipgloss.JoinVertical(lipgloss.Left, lane, story, m.renderChat(p))
	side := box.Width(sidebarWidth).Render(m.renderSidebar(p))

	body := lipgloss.JoinHorizontal(lipgloss.Top, main, side)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTopBar(p), body, m.renderBottomBar(p))
}

func (m model) renderTopBar(p palette) string {
	left := "JWT FLOW • " + m.ctrl.Heading()
	if m.ctrl.Pending() {
		left += " …"
	}
	right := fmt.Sprintf("%s • %s", m.ctrl.Mode(), m.theme)
	if m.status != "" {
		right = m.status + " • " + right
	}
	w := m.mainWidth() + sidebarWidth + 3
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Render(left + strings.Repeat(" ", gap) + right)
}

func (m model) renderBottomBar(p palette) string {
	help := "[n] next  [0-6] jump  [p] full story  [r] reset  [/] ask  [s] new token  [t] theme  [q] quit"
	if m.chatting {
		help = "[enter] send  [esc] back  [ctrl+c] quit"
	}
	return lipgloss.NewStyle().Foreground(p.Muted).Render(help)
}

func (m model) renderSidebar(p palette) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	muted := lipgloss.NewStyle().Foreground(p.Muted)
	var b strings.Builder

	b.WriteString(title.Render("STEPS") + "\n")
	for _, s := range m.ctrl.Registry().All() {
		marker := "  "
		switch {
		case s.ID == m.ctrl.LogicalStep() && s.ID == m.ctrl.VisualStep():
			marker = "▶ "
		case s.ID == m.ctrl.LogicalStep():
			marker = "› "
		case s.ID == m.ctrl.VisualStep() && m.ctrl.Mode() == engine.ModeFullStory:
			marker = "● "
		}
		line := fmt.Sprintf("%s%d %s", marker, s.ID, s.Title)
		if marker == "  " {
			line = muted.Render(line)
		}
		b.WriteString(line + "\n")
	}

	step := m.ctrl.Registry().Lookup(m.ctrl.VisualStep())
	b.WriteString("\n" + title.Render("CONCEPT") + "\n")
	b.WriteString(step.Concept + "\n")
	b.WriteString(muted.Render(step.Action) + "\n")

	b.WriteString("\n" + title.Render("SAMPLE TOKEN") + "\n")
	switch {
	case m.tokenErr != "":
		b.WriteString(muted.Render(m.tokenErr) + "\n")
	case m.token.Token == "":
		b.WriteString(muted.Render("fetching…") + "\n")
	default:
		b.WriteString(lipgloss.NewStyle().Foreground(p.Denied).Render("header ") + m.token.Header + "\n")
		b.WriteString(lipgloss.NewStyle().Foreground(p.Token).Render("payload ") + m.token.Payload + "\n")
		b.WriteString(lipgloss.NewStyle().Foreground(p.Area).Render("signature ") + abbreviate(m.token.Signature, 16) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) renderChat(p palette) string {
	if !m.chatting && len(m.chatLog) == 0 {
		return ""
	}
	you := lipgloss.NewStyle().Bold(true).Foreground(p.User)
	bot := lipgloss.NewStyle().Bold(true).Foreground(p.Server)
	var b strings.Builder
	for _, l := range m.chatLog {
		if l.user {
			b.WriteString(you.Render("you ") + l.text + "\n")
		} else {
			b.WriteString(bot.Render("guide ") + l.text + "\n")
		}
	}
	if m.chatInFlight {
		b.WriteString(lipgloss.NewStyle().Foreground(p.Muted).Render("guide is typing…") + "\n")
	}
	if m.chatting {
		b.WriteString("> " + m.chatInput + "█")
	}
	return lipgloss.NewStyle().Width(m.mainWidth()).Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
