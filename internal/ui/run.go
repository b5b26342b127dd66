package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/DaanHessen/jwtviz/internal/scene"
	"github.com/DaanHessen/jwtviz/internal/steps"
	"github.com/DaanHessen/jwtviz/internal/text"
)

// Options configures the visualization.
type Options struct {
	Narrator text.Narrator
	Registry *steps.Registry
	Scene    scene.Spec
	// Watcher, when set, hot-reloads the scene file it watches.
	Watcher *scene.Watcher
	Theme   string
	Logger  *zap.Logger
}

// Run boots the TUI program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	m := initialModel(ctx, opts)
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
