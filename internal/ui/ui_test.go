package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaanHessen/jwtviz/internal/engine"
	"github.com/DaanHessen/jwtviz/internal/narration"
	"github.com/DaanHessen/jwtviz/internal/scene"
	"github.com/DaanHessen/jwtviz/internal/steps"
	"github.com/DaanHessen/jwtviz/internal/text"
)

type downNarrator struct{}

func (downNarrator) Narration(context.Context, int) (string, error) { return "", errors.New("refused") }
func (downNarrator) Ask(context.Context, string) (string, error) { return "", errors.New("refused") }
func (downNarrator) SampleToken(context.Context) (narration.SampleToken, error) {
	return narration.SampleToken{}, errors.New("refused")
}

func newTestModel(t *testing.T, n text.Narrator) model {
	t.Helper()
	return initialModel(context.Background(), Options{
		Narrator: n,
		Registry: steps.Default(),
		Scene:    scene.Default(),
		Theme:    "catppuccin",
	})
}

func press(t *testing.T, m model, key string) (model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func feed(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func TestAdvanceWaitsForNarration(t *testing.T) {
	m := newTestModel(t, text.NewOfflineNarrator())
	m, cmd := press(t, m, "n")
	require.NotNil(t, cmd)
	assert.Equal(t, steps.ID(1), m.ctrl.LogicalStep())
	assert.Equal(t, steps.ID(0), m.ctrl.VisualStep())

	m = feed(t, m, cmd())
	assert.Equal(t, steps.ID(1), m.ctrl.VisualStep())
	assert.Equal(t, narration.DefaultCatalog()[1], m.ctrl.Narration())
	assert.Equal(t, narration.DefaultCatalog()[1], m.renderedFor)
	assert.NotEmpty(t, m.rendered)
}

func TestUnreachableGatewayStillAnimates(t *testing.T) {
	m := newTestModel(t, downNarrator{})
	m, cmd := press(t, m, "4")
	m = feed(t, m, cmd())
	assert.Equal(t, steps.ID(4), m.ctrl.VisualStep())
	assert.Equal(t, engine.FallbackNarration, m.ctrl.Narration())

	m = feed(t, m, tokenMsg{err: errors.New("refused")})
	assert.Contains(t, m.View(), "sample token unavailable")
}

func TestStaleNarrationIgnored(t *testing.T) {
	m := newTestModel(t, text.NewOfflineNarrator())
	m, first := press(t, m, "3")
	m, second := press(t, m, "5")
	m = feed(t, m, first())
	assert.Equal(t, steps.ID(0), m.ctrl.VisualStep())
	m = feed(t, m, second())
	assert.Equal(t, steps.ID(5), m.ctrl.VisualStep())
}

func TestFramesDriveController(t *testing.T) {
	m := newTestModel(t, text.NewOfflineNarrator())
	start := time.Unix(0, 0)
	m = feed(t, m, frameMsg(start))
	m = feed(t, m, frameMsg(start.Add(500*time.Millisecond)))
	assert.InDelta(t, 0.5, m.ctrl.Clock(), 1e-9)
}

func TestFullStoryCues(t *testing.T) {
	m := newTestModel(t, text.NewOfflineNarrator())
	m, cmd := press(t, m, "p")
	require.NotNil(t, cmd)
	assert.Equal(t, engine.ModeFullStory, m.ctrl.Mode())
	m = feed(t, m, cueMsg(engine.Cue{At: 0, Step: 2, Playback: 1}))
	assert.Equal(t, steps.ID(2), m.ctrl.VisualStep())
	assert.Contains(t, m.View(), "Full Story")
}

func TestChatRoundTrip(t *testing.T) {
	m := newTestModel(t, text.NewOfflineNarrator())
	m, _ = press(t, m, "/")
	require.True(t, m.chatting)
	m, _ = press(t, m, "is it safe")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.chatInFlight)
	m = feed(t, m, cmd())
	require.Len(t, m.chatLog, 3)
	assert.Equal(t, chatGreeting, m.chatLog[0].text)
	assert.Equal(t, "is it safe", m.chatLog[1].text)
	assert.Equal(t, narration.DefaultRules()[2].Answer, m.chatLog[2].text)

	m, _ = press(t, m, "esc")
	assert.False(t, m.chatting)
	assert.Equal(t, steps.ID(0), m.ctrl.LogicalStep())
}

func TestChatFailureShowsApology(t *testing.T) {
	m := newTestModel(t, downNarrator{})
	m, _ = press(t, m, "/")
	m, _ = press(t, m, "hi")
	m, cmd := press(t, m, "enter")
	m = feed(t, m, cmd())
	assert.Equal(t, text.ChatUnavailable, m.chatLog[len(m.chatLog)-1].text)
}

func TestThemeCycles(t *testing.T) {
	m := newTestModel(t, text.NewOfflineNarrator())
	seen := map[string]bool{m.theme: true}
	for i := 0; i < len(palettes)-1; i++ {
		m, _ = press(t, m, "t")
		seen[m.theme] = true
	}
	assert.Len(t, seen, len(palettes))
	assert.Equal(t, "dracula", nextThemeName("catppuccin", 1))
	assert.Equal(t, "solarized_dark", nextThemeName("catppuccin", -1))
}

func TestLaneColumn(t *testing.T) {
	assert.Equal(t, 0, laneColumn(0, 53))
	assert.Equal(t, 52, laneColumn(-26, 53))
	assert.Equal(t, 26, laneColumn(-13, 53))
	assert.Equal(t, 0, laneColumn(3, 53))
	assert.Equal(t, 52, laneColumn(-40, 53))
}

func TestLaneShowsGateState(t *testing.T) {
	c := engine.New(steps.Default(), scene.Default())
	c.MountAll()
	p := paletteFor(defaultTheme)
	assert.Contains(t, renderLane(c, p, 60), "┃")

	req := c.ResetToStep(steps.Verification)
	c.Resolve(engine.Response{Token: req.Token, Step: req.Step, Text: "ok"})
	for i := 0; i < 120; i++ {
		c.Tick(1.0 / 60)
	}
	lane := renderLane(c, p, 60)
	assert.Contains(t, lane, "╱")
	assert.NotContains(t, lane, "◆")
}

func TestSceneReloadMessage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	doc := `
entities:
  user:
    rate: 1
    steps:
      1: {position: [0, 0, -4]}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	spec, err := scene.Load(path)
	require.NoError(t, err)

	m := newTestModel(t, text.NewOfflineNarrator())
	m = feed(t, m, sceneMsg{spec: spec})
	assert.Equal(t, "scene reloaded", m.status)
	_, ok := m.ctrl.Entity(scene.Gate)
	assert.False(t, ok)

	m = feed(t, m, sceneMsg{err: errors.New("bad yaml")})
	assert.True(t, strings.HasPrefix(m.status, "scene reload failed"))
}

func TestChatOpensWithGreeting(t *testing.T) {
	m := newTestModel(t, text.NewOfflineNarrator())
	require.Len(t, m.chatLog, 1)
	assert.False(t, m.chatLog[0].user)
	assert.Contains(t, m.View(), "AI Tutor")
}
