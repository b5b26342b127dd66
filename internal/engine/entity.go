package engine

import (
	"math"

	"github.com/DaanHessen/jwtviz/internal/scene"
	"github.com/DaanHessen/jwtviz/internal/tween"
)

// Entity is the animated state of one actor in the scene.
type Entity struct {
	Name     string
	Position *tween.Tween[tween.Vec3]
	Rotation *tween.Tween[tween.Scalar]
	Visible  bool
	Shaking  bool
	Mounted  bool

	spec scene.EntitySpec
}

// Pose is what the renderer draws for an entity on this frame.
type Pose struct {
	Position tween.Vec3
	Rotation float64
	Visible  bool
}

func newEntity(name string, spec scene.EntitySpec) *Entity {
	return &Entity{
		Name:     name,
		Position: tween.New(spec.Origin.Vec(), spec.Rate),
		Rotation: tween.New(tween.Scalar(spec.OriginRotation), spec.RotationRate),
		Visible:  spec.Visible,
		spec:     spec,
	}
}

// reset snaps the entity back to its origin.
func (e *Entity) reset() {
	e.Position.Snap(e.spec.Origin.Vec())
	e.Rotation.Snap(tween.Scalar(e.spec.OriginRotation))
	e.Visible = e.spec.Visible
	e.Shaking = false
}

func (e *Entity) enter(k scene.Keyframe) {
	if k.Position != nil {
		e.Position.Retarget(k.Position.Vec())
	}
	if k.Rotation != nil {
		e.Rotation.Retarget(tween.Scalar(*k.Rotation))
	}
	if k.Visible != nil {
		e.Visible = *k.Visible
	}
	if k.Shake != nil {
		e.Shaking = *k.Shake
	}
}

// respec swaps rates and effects without moving the entity.
func (e *Entity) respec(spec scene.EntitySpec) {
	e.spec = spec
	e.Position.SetRate(spec.Rate)
	e.Rotation.SetRate(spec.RotationRate)
}

func (e *Entity) step(delta float64) {
	e.Position.Step(delta)
	e.Rotation.Step(delta)
}

// pose superimposes the idle float and the denial shake on the interpolated position.
func (e *Entity) pose(clock float64) Pose {
	p := e.Position.Current()
	if f := e.spec.Float; !f.Zero() {
		p.Y += wave(f, clock)
	}
	if s := e.spec.Shake; e.Shaking && !s.Zero() {
		p.X += wave(s, clock)
	}
	return Pose{Position: p, Rotation: float64(e.Rotation.Current()), Visible: e.Visible}
}

func wave(w scene.Wave, t float64) float64 {
	return w.Amplitude * math.Sin(t*w.Frequency)
}
