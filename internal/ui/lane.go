package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/jwtviz/internal/engine"
	"github.com/DaanHessen/jwtviz/internal/scene"
)

// The lane runs from the user's start (z = 0) to the far end of the
// protected area (z = laneDepth).
const (
	laneDepth     = -26.0
	protectedFrom = -20.0
)

// laneColumn maps a z coordinate onto one of width columns.
func laneColumn(z float64, width int) int {
	if width <= 1 {
		return 0
	}
	col := int(math.Round(z / laneDepth * float64(width-1)))
	if col < 0 {
		return 0
	}
	if col > width-1 {
		return width - 1
	}
	return col
}

type cell struct {
	r     rune
	color lipgloss.Color
}

type row []cell

func newRow(width int, r rune, c lipgloss.Color) row {
	out := make(row, width)
	for i := range out {
		out[i] = cell{r: r, color: c}
	}
	return out
}

func (r row) put(col int, s string, c lipgloss.Color) {
	for i, ch := range []rune(s) {
		if x := col + i; x >= 0 && x < len(r) {
			r[x] = cell{r: ch, color: c}
		}
	}
}

func (r row) render() string {
	var b strings.Builder
	for i := 0; i < len(r); {
		j := i
		for j < len(r) && r[j].color == r[i].color {
			j++
		}
		var seg strings.Builder
		for _, c := range r[i:j] {
			seg.WriteRune(c.r)
		}
		b.WriteString(lipgloss.NewStyle().Foreground(r[i].color).Render(seg.String()))
		i = j
	}
	return b.String()
}

// jitter turns the sub-cell shake offset into a one column nudge.
func jitter(ctrl *engine.Controller, name string) int {
	e, ok := ctrl.Entity(name)
	if !ok || !e.Shaking {
		return 0
	}
	pose, _ := ctrl.Pose(name)
	switch dx := pose.Position.X - e.Position.Current().X; {
	case dx > 0:
		return 1
	case dx < 0:
		return -1
	}
	return 0
}

// renderLane draws the scene side-on: token above, actors on the ground row,
// the protected area shaded behind the gate and the camera focus below.
func renderLane(ctrl *engine.Controller, p palette, width int) string {
	if width < 20 {
		width = 20
	}
	sky := newRow(width, ' ', p.Lane)
	ground := newRow(width, '·', p.Lane)
	floor := newRow(width, ' ', p.Lane)

	areaStart := laneColumn(protectedFrom, width)
	for x := areaStart; x < width; x++ {
		ground[x] = cell{r: '░', color: p.Area}
	}
	floor.put(areaStart+1, "PROTECTED", p.Area)

	if pose, ok := ctrl.Pose(scene.Server); ok && pose.Visible {
		ground.put(laneColumn(pose.Position.Z, width)-2, "[AUTH]", p.Server)
	}

	if pose, ok := ctrl.Pose(scene.Gate); ok && pose.Visible {
		col := laneColumn(pose.Position.Z, width) + jitter(ctrl, scene.Gate)
		glyph, color := "┃", p.Gate
		if pose.Rotation >= math.Pi/4 {
			glyph, color = "╱", p.Server
		}
		if e, _ := ctrl.Entity(scene.Gate); e != nil && e.Shaking {
			color = p.Denied
		}
		sky.put(col, glyph, color)
		ground.put(col, glyph, color)
	}

	if pose, ok := ctrl.Pose(scene.User); ok && pose.Visible {
		col := laneColumn(pose.Position.Z, width) + jitter(ctrl, scene.User)
		color := p.User
		if e, _ := ctrl.Entity(scene.User); e != nil && e.Shaking {
			color = p.Denied
		}
		ground.put(col, "☺", color)
	}

	if pose, ok := ctrl.Pose(scene.Token); ok && pose.Visible {
		sky.put(laneColumn(pose.Position.Z, width), "◆", p.Token)
	}

	if pose, ok := ctrl.Pose(scene.Camera); ok {
		floor.put(laneColumn(pose.Position.Z, width), "▲", p.Accent)
	}

	return strings.Join([]string{sky.render(), ground.render(), floor.render()}, "\n")
}
