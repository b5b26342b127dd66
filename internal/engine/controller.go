// Package engine drives the JWT flow animation: which step is selected, which
// step the scene shows, and where every entity is on the current frame.
package engine

import (
	"sort"
	"time"

	"github.com/DaanHessen/jwtviz/internal/scene"
	"github.com/DaanHessen/jwtviz/internal/steps"
)

const (
	PlaceholderNarration = "Loading explanation..."
	FallbackNarration    = "The narrator is unreachable right now, so follow the animation for this step."
)

// Mode is manual stepping or scripted full-story playback.
type Mode int

const (
	ModeManual Mode = iota
	ModeFullStory
)

func (m Mode) String() string {
	if m == ModeFullStory {
		return "full story"
	}
	return "manual"
}

// Request asks the narration gateway for one step. Token identifies the
// transition that issued it; only the latest token is honoured.
type Request struct {
	Token uint64
	Step  steps.ID
}

// Response settles a Request. Err set means the fetch failed for any reason.
type Response struct {
	Token uint64
	Step  steps.ID
	Text  string
	Err   error
}

// Cue is one scheduled step change of a full-story playback.
type Cue struct {
	At       time.Duration
	Step     steps.ID
	Playback uint64
	Final    bool
}

// Controller owns the logical step, the lagging visual step and every
// entity's animation state. It is not safe for concurrent use; the render
// loop is its only caller.
type Controller struct {
	registry *steps.Registry
	spec     scene.Spec
	entities map[string]*Entity

	logical   steps.ID
	visual    steps.ID
	narration string
	pending   bool
	seq       uint64
	mode      Mode
	playback  uint64
	clock     float64
}

func New(registry *steps.Registry, spec scene.Spec) *Controller {
	if registry == nil {
		registry = steps.Default()
	}
	c := &Controller{
		registry:  registry,
		spec:      spec,
		entities:  make(map[string]*Entity, len(spec.Entities)),
		narration: PlaceholderNarration,
	}
	for name, es := range spec.Entities {
		c.entities[name] = newEntity(name, es)
	}
	return c
}

func (c *Controller) LogicalStep() steps.ID { return c.logical }
func (c *Controller) VisualStep() steps.ID { return c.visual }
func (c *Controller) Narration() string { return c.narration }
func (c *Controller) Pending() bool { return c.pending }
func (c *Controller) Mode() Mode { return c.mode }
func (c *Controller) Clock() float64 { return c.clock }
func (c *Controller) Registry() *steps.Registry { return c.registry }

// Heading is the title for the logical step.
func (c *Controller) Heading() string { return c.registry.Heading(c.logical) }

// Start issues the narration request for the initial step.
func (c *Controller) Start() Request {
	return c.issue(c.logical)
}

// Advance moves the logical step to its successor and requests narration for
// it. The visual step does not change until the response is resolved.
// During full-story playback it continues from the step on screen.
func (c *Controller) Advance() Request {
	from := c.logical
	if from == steps.FullStory {
		from = c.visual
	}
	c.logical = c.registry.Next(from)
	c.mode = ModeManual
	return c.issue(c.logical)
}

// ResetToStep jumps to id. Unknown ids become step 0, but the request keeps
// the raw id so the gateway answers for what was asked. Any running
// full-story playback is abandoned.
func (c *Controller) ResetToStep(id steps.ID) Request {
	c.logical = c.registry.Normalize(id)
	if c.logical == steps.FullStory {
		c.logical = steps.Introduction
	}
	c.mode = ModeManual
	c.playback++
	return c.issue(id)
}

func (c *Controller) issue(id steps.ID) Request {
	c.seq++
	c.pending = true
	c.narration = PlaceholderNarration
	return Request{Token: c.seq, Step: id}
}

// Resolve applies a narration response. Responses for anything but the most
// recent request are dropped and Resolve reports false. A failed fetch still
// moves the visual step, with FallbackNarration as the text.
func (c *Controller) Resolve(r Response) bool {
	if r.Token != c.seq {
		return false
	}
	c.pending = false
	if r.Err != nil || r.Text == "" {
		c.narration = FallbackNarration
	} else {
		c.narration = r.Text
	}
	c.setVisual(c.showable(r.Step))
	return true
}

// PlayFullStory starts scripted playback and returns its schedule. Cues
// bypass the gateway; each one shows the step's description.
func (c *Controller) PlayFullStory() []Cue {
	c.playback++
	c.seq++ // an in-flight narration must not land in the middle of the script
	c.pending = false
	c.mode = ModeFullStory
	c.logical = steps.FullStory
	c.narration = c.registry.Lookup(steps.FullStory).Description

	fs := c.spec.FullStory
	cues := make([]Cue, 0, len(fs.Cues)+1)
	for _, sc := range fs.Cues {
		cues = append(cues, Cue{
			At:       seconds(sc.At),
			Step:     steps.ID(sc.Step),
			Playback: c.playback,
		})
	}
	cues = append(cues, Cue{At: seconds(fs.Duration), Step: steps.Introduction, Playback: c.playback, Final: true})
	return cues
}

// ApplyCue applies a scheduled playback step. Cues from an abandoned
// playback report false. The final cue returns to manual mode at step 0.
func (c *Controller) ApplyCue(cue Cue) bool {
	if cue.Playback != c.playback {
		return false
	}
	id := c.showable(cue.Step)
	if cue.Final {
		c.mode = ModeManual
		c.logical = steps.Introduction
		id = steps.Introduction
	}
	c.narration = c.registry.Lookup(id).Description
	c.setVisual(id)
	return true
}

// showable maps id to a step the scene can display. FullStory has no layout
// of its own.
func (c *Controller) showable(id steps.ID) steps.ID {
	id = c.registry.Normalize(id)
	if id == steps.FullStory {
		return steps.Introduction
	}
	return id
}

func (c *Controller) setVisual(id steps.ID) {
	c.visual = id
	c.applyStep(id)
}

// applyStep retargets every entity for id. Step 0 snaps everything home.
func (c *Controller) applyStep(id steps.ID) {
	for _, e := range c.entities {
		if id == steps.Introduction {
			e.reset()
		}
		if k, ok := e.spec.Keyframe(id); ok {
			e.enter(k)
		}
	}
}

// Tick advances every mounted entity by delta seconds of real time.
func (c *Controller) Tick(delta float64) {
	if delta < 0 {
		delta = 0
	}
	c.clock += delta
	for _, e := range c.entities {
		if !e.Mounted {
			continue
		}
		e.step(delta)
	}
}

// Mount attaches an entity to the render loop, starting from its origin
// with the current visual step applied.
func (c *Controller) Mount(name string) bool {
	e, ok := c.entities[name]
	if !ok {
		return false
	}
	if e.Mounted {
		return true
	}
	e.reset()
	if k, ok := e.spec.Keyframe(c.visual); ok && c.visual != steps.Introduction {
		e.enter(k)
	}
	e.Mounted = true
	return true
}

// MountAll mounts every entity in the scene.
func (c *Controller) MountAll() {
	for _, name := range c.Names() {
		c.Mount(name)
	}
}

func (c *Controller) Unmount(name string) {
	if e, ok := c.entities[name]; ok {
		e.Mounted = false
	}
}

// Entity returns the state of a mounted entity.
func (c *Controller) Entity(name string) (*Entity, bool) {
	e, ok := c.entities[name]
	if !ok || !e.Mounted {
		return nil, false
	}
	return e, true
}

// Pose returns what to draw for name on this frame.
func (c *Controller) Pose(name string) (Pose, bool) {
	e, ok := c.Entity(name)
	if !ok {
		return Pose{}, false
	}
	return e.pose(c.clock), true
}

// Names lists entities in a stable order.
func (c *Controller) Names() []string {
	names := make([]string, 0, len(c.entities))
	for n := range c.entities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ApplySpec swaps in a reloaded scene. Existing entities keep their current
// transform and head for the targets of the visual step under the new layout.
func (c *Controller) ApplySpec(spec scene.Spec) {
	c.spec = spec
	for name := range c.entities {
		if _, ok := spec.Entities[name]; !ok {
			delete(c.entities, name)
		}
	}
	for name, es := range spec.Entities {
		if e, ok := c.entities[name]; ok {
			e.respec(es)
			continue
		}
		c.entities[name] = newEntity(name, es)
	}
	c.applyStep(c.visual)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
