package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/DaanHessen/jwtviz/internal/engine"
	"github.com/DaanHessen/jwtviz/internal/narration"
	"github.com/DaanHessen/jwtviz/internal/scene"
	"github.com/DaanHessen/jwtviz/internal/steps"
	"github.com/DaanHessen/jwtviz/internal/text"
)

const frameInterval = time.Second / 60

const chatHistory = 6

const chatGreeting = `Hello! I'm your AI Tutor. Ask me things like "Why does this step work?" or "What happens if the token expires?"`

type (
	frameMsg     time.Time
	narrationMsg engine.Response
	cueMsg       engine.Cue
	chatMsg      struct {
		seq    uint64
		answer string
		err    error
	}
	tokenMsg struct {
		tok narration.SampleToken
		err error
	}
	sceneMsg struct {
		spec scene.Spec
		err  error
	}
)

type chatLine struct {
	user bool
	text string
}

type model struct {
	ctx      context.Context
	ctrl     *engine.Controller
	narrator text.Narrator
	watcher  *scene.Watcher
	logger   *zap.Logger

	theme  string
	width  int
	height int

	lastFrame    time.Time
	rendered     string
	renderedFor  string
	renderedKey  string
	token        narration.SampleToken
	tokenErr     string
	status       string
	chatting     bool
	chatInput    string
	chatLog      []chatLine
	chatSeq      uint64
	chatInFlight bool
}

func initialModel(ctx context.Context, opts Options) model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctrl := engine.New(opts.Registry, opts.Scene)
	ctrl.MountAll()
	theme := opts.Theme
	if _, ok := palettes[theme]; !ok {
		theme = defaultTheme
	}
	m := model{
		ctx:      ctx,
		ctrl:     ctrl,
		narrator: opts.Narrator,
		watcher:  opts.Watcher,
		logger:   logger.Named("UI"),
		theme:    theme,
		chatLog:  []chatLine{{text: chatGreeting}},
	}
	m.syncNarration()
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		frame(),
		m.fetchNarration(m.ctrl.Start()),
		m.fetchToken(),
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForScene(m.watcher))
	}
	return tea.Batch(cmds...)
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m model) fetchNarration(req engine.Request) tea.Cmd {
	ctx, n := m.ctx, m.narrator
	return func() tea.Msg {
		body, err := n.Narration(ctx, int(req.Step))
		return narrationMsg(engine.Response{Token: req.Token, Step: req.Step, Text: body, Err: err})
	}
}

func (m model) fetchToken() tea.Cmd {
	ctx, n := m.ctx, m.narrator
	return func() tea.Msg {
		tok, err := n.SampleToken(ctx)
		return tokenMsg{tok: tok, err: err}
	}
}

func (m model) ask(seq uint64, question string) tea.Cmd {
	ctx, n := m.ctx, m.narrator
	return func() tea.Msg {
		answer, err := n.Ask(ctx, question)
		return chatMsg{seq: seq, answer: answer, err: err}
	}
}

func schedule(cues []engine.Cue) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(cues))
	for _, cue := range cues {
		cue := cue
		cmds = append(cmds, tea.Tick(cue.At, func(time.Time) tea.Msg { return cueMsg(cue) }))
	}
	return tea.Batch(cmds...)
}

// waitForScene blocks on the watcher and reloads the scene file when it changes.
func waitForScene(w *scene.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			spec, err := scene.Load(path)
			return sceneMsg{spec: spec, err: err}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return sceneMsg{err: err}
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case frameMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			m.ctrl.Tick(now.Sub(m.lastFrame).Seconds())
		}
		m.lastFrame = now
		cmd = frame()
	case narrationMsg:
		r := engine.Response(msg)
		if !m.ctrl.Resolve(r) {
			m.logger.Debug("Dropped stale narration", zap.Uint64("token", r.Token), zap.Int("step", int(r.Step)))
		} else if r.Err != nil {
			m.logger.Warn("Narration fetch failed", zap.Int("step", int(r.Step)), zap.Error(r.Err))
		}
	case cueMsg:
		m.ctrl.ApplyCue(engine.Cue(msg))
	case tokenMsg:
		if msg.err != nil {
			m.tokenErr = "sample token unavailable"
			m.logger.Warn("Sample token fetch failed", zap.Error(msg.err))
		} else {
			m.token, m.tokenErr = msg.tok, ""
		}
	case chatMsg:
		if msg.seq == m.chatSeq {
			m.chatInFlight = false
			answer := msg.answer
			if msg.err != nil {
				m.logger.Warn("Chat failed", zap.Error(msg.err))
				answer = text.ChatUnavailable
			}
			m.pushChat(chatLine{text: answer})
		}
	case sceneMsg:
		if msg.err != nil {
			m.status = "scene reload failed: " + msg.err.Error()
			m.logger.Warn("Scene reload failed", zap.Error(msg.err))
		} else {
			m.ctrl.ApplySpec(msg.spec)
			m.ctrl.MountAll()
			m.status = "scene reloaded"
			m.logger.Info("Scene reloaded", zap.Strings("entities", msg.spec.Names()))
		}
		if m.watcher != nil {
			cmd = waitForScene(m.watcher)
		}
	case tea.KeyMsg:
		if m.chatting {
			return m.updateChat(msg)
		}
		return m.updateKeys(msg)
	}
	m.syncNarration()
	return m, cmd
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", " ", "enter", "right":
		cmd = m.fetchNarration(m.ctrl.Advance())
	case "0", "1", "2", "3", "4", "5", "6":
		cmd = m.fetchNarration(m.ctrl.ResetToStep(steps.ID(key[0] - '0')))
	case "r":
		cmd = m.fetchNarration(m.ctrl.ResetToStep(steps.Introduction))
	case "p":
		cmd = schedule(m.ctrl.PlayFullStory())
	case "s":
		cmd = m.fetchToken()
	case "t":
		m.theme = nextThemeName(m.theme, 1)
		m.status = "theme: " + m.theme
	case "/":
		m.chatting = true
		m.chatInput = ""
	}
	m.syncNarration()
	return m, cmd
}

func (m model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.chatting = false
		m.chatInput = ""
	case tea.KeyEnter:
		q := strings.TrimSpace(m.chatInput)
		m.chatInput = ""
		if q == "" {
			return m, nil
		}
		m.chatSeq++
		m.chatInFlight = true
		m.pushChat(chatLine{user: true, text: q})
		return m, m.ask(m.chatSeq, q)
	case tea.KeyBackspace:
		if r := []rune(m.chatInput); len(r) > 0 {
			m.chatInput = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.chatInput += " "
	case tea.KeyRunes:
		m.chatInput += string(msg.Runes)
	}
	return m, nil
}

func (m *model) pushChat(l chatLine) {
	m.chatLog = append(m.chatLog, l)
	if len(m.chatLog) > chatHistory {
		m.chatLog = m.chatLog[len(m.chatLog)-chatHistory:]
	}
}

// syncNarration re-renders the narration markdown when its text, the width or
// the theme changed.
func (m *model) syncNarration() {
	key := m.theme + "|" + strconv.Itoa(m.narrationWidth())
	if m.ctrl.Narration() == m.renderedFor && key == m.renderedKey {
		return
	}
	m.renderedFor = m.ctrl.Narration()
	m.renderedKey = key
	m.rendered = strings.TrimRight(renderMarkdown(m.renderedFor, paletteFor(m.theme), m.narrationWidth()), "\n")
}
