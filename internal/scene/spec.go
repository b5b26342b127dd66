// Package scene describes where every animated entity should be at each step.
package scene

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/DaanHessen/jwtviz/internal/steps"
	"github.com/DaanHessen/jwtviz/internal/tween"
)

//go:embed default.yaml
var defaultYAML []byte

// Entity names used by the default layout.
const (
	User   = "user"
	Token  = "token"
	Gate   = "gate"
	Server = "server"
	Camera = "camera"
)

// Point is an [x, y, z] triple as written in YAML.
type Point [3]float64

func (p Point) Vec() tween.Vec3 { return tween.V(p[0], p[1], p[2]) }

// Wave is a sine effect: amplitude * sin(t * frequency).
type Wave struct {
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

func (w Wave) Zero() bool { return w.Amplitude == 0 }

// Keyframe lists what changes when an entity enters a step. Nil fields are left alone.
type Keyframe struct {
	Position *Point   `yaml:"position"`
	Rotation *float64 `yaml:"rotation"`
	Visible  *bool    `yaml:"visible"`
	Shake    *bool    `yaml:"shake"`
}

type EntitySpec struct {
	Rate           float64          `yaml:"rate"`
	RotationRate   float64          `yaml:"rotation_rate"`
	Origin         Point            `yaml:"origin"`
	OriginRotation float64          `yaml:"origin_rotation"`
	Visible        bool             `yaml:"visible"`
	Float          Wave             `yaml:"float"`
	Shake          Wave             `yaml:"shake"`
	Steps          map[int]Keyframe `yaml:"steps"`
}

// Keyframe returns the keyframe for id, if any.
func (e EntitySpec) Keyframe(id steps.ID) (Keyframe, bool) {
	k, ok := e.Steps[int(id)]
	return k, ok
}

type Cue struct {
	At   float64 `yaml:"at"`
	Step int     `yaml:"step"`
}

// Playback is the fixed full-story script. Offsets are seconds from start.
type Playback struct {
	Duration float64 `yaml:"duration"`
	Cues     []Cue   `yaml:"cues"`
}

type Spec struct {
	Entities  map[string]EntitySpec `yaml:"entities"`
	FullStory Playback              `yaml:"full_story"`
}

// Names returns entity names in a stable order.
func (s Spec) Names() []string {
	names := make([]string, 0, len(s.Entities))
	for n := range s.Entities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default returns the embedded layout. It panics if the embedded file is broken.
func Default() Spec {
	s, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("scene: embedded default: %v", err))
	}
	return s
}

// Load reads and validates a scene file.
func Load(path string) (Spec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("read scene %s: %w", path, err)
	}
	s, err := Parse(b)
	if err != nil {
		return Spec{}, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scene document against the default step registry.
func Parse(b []byte) (Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Spec{}, fmt.Errorf("decode: %w", err)
	}
	if err := s.Validate(steps.Default()); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// Validate checks rates, step keys and the playback script.
func (s Spec) Validate(reg *steps.Registry) error {
	if len(s.Entities) == 0 {
		return fmt.Errorf("no entities")
	}
	for _, name := range s.Names() {
		e := s.Entities[name]
		if e.Rate < 0 || e.RotationRate < 0 {
			return fmt.Errorf("entity %q: negative rate", name)
		}
		for k := range e.Steps {
			id := steps.ID(k)
			if id == steps.FullStory || !reg.Has(id) {
				return fmt.Errorf("entity %q: unknown step %d", name, k)
			}
		}
	}
	last := 0.0
	for i, c := range s.FullStory.Cues {
		if c.At < last {
			return fmt.Errorf("full_story cue %d: offset %.2f before %.2f", i, c.At, last)
		}
		if !reg.Has(steps.ID(c.Step)) || steps.ID(c.Step) == steps.FullStory {
			return fmt.Errorf("full_story cue %d: unknown step %d", i, c.Step)
		}
		last = c.At
	}
	if len(s.FullStory.Cues) > 0 && s.FullStory.Duration < last {
		return fmt.Errorf("full_story duration %.2f shorter than last cue %.2f", s.FullStory.Duration, last)
	}
	return nil
}
