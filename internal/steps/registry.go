// Package steps holds the fixed sequence of stages in the illustrated JWT flow.
package steps

import "fmt"

// ID identifies a stage. Valid cycle ids are 0..6; FullStory is a sentinel.
type ID int

const (
	Introduction ID = iota
	LoginRequest
	TokenIssued
	AccessRequest
	Verification
	DeniedExpired
	DeniedInvalid

	// FullStory marks scripted playback; it is not part of the cycle.
	FullStory ID = -1
)

// Step is the display metadata for one stage.
type Step struct {
	ID          ID
	Title       string
	Concept     string
	Action      string
	Description string
	Next        ID
}

// Registry is an immutable lookup from ID to Step.
type Registry struct {
	byID  map[ID]Step
	order []ID
}

var defaultSteps = []Step{
	{Introduction, "Introduction", "Initial State", "Reset Scene",
		"The stage is set. Our User (Client) is ready to authenticate.", LoginRequest},
	{LoginRequest, "Login Request", "Authentication", "User moves to Server",
		"User sends credentials (username/password) to the Auth Server.", TokenIssued},
	{TokenIssued, "Token Issued", "Token Generation", "Server creates JWT",
		"Server validates credentials and signs a new JSON Web Token.", AccessRequest},
	{AccessRequest, "Access Request", "Authorization", "User+Token move to Gate",
		"User presents the JWT to the Protected Resource Gate.", Verification},
	{Verification, "Verification & Entry", "Validation", "Gate opens",
		"Gate verifies the JWT signature and grants access.", DeniedExpired},
	{DeniedExpired, "Denied: Expired Token", "Expiry", "Gate rejects an expired token",
		"A token past its exp claim is refused even though its signature is valid.", DeniedInvalid},
	{DeniedInvalid, "Denied: Invalid Token", "Signature Check", "Gate rejects a forged token",
		"A token whose signature does not match is refused at the gate.", Introduction},
}

var fullStory = Step{
	ID:          FullStory,
	Title:       "Full Story",
	Concept:     "Playback",
	Action:      "Play every step",
	Description: "Watch the whole flow play out from login to denial.",
	Next:        Introduction,
}

// Default returns the registry for the JWT flow.
func Default() *Registry {
	return New(defaultSteps)
}

// New builds a registry from an ordered cycle of steps. The FullStory sentinel is always present.
func New(list []Step) *Registry {
	r := &Registry{byID: make(map[ID]Step, len(list)+1)}
	for _, s := range list {
		if _, dup := r.byID[s.ID]; !dup {
			r.order = append(r.order, s.ID)
		}
		r.byID[s.ID] = s
	}
	r.byID[FullStory] = fullStory
	return r
}

// Has reports whether id is registered.
func (r *Registry) Has(id ID) bool {
	_, ok := r.byID[id]
	return ok
}

// Normalize returns id if registered and Introduction otherwise.
func (r *Registry) Normalize(id ID) ID {
	if r.Has(id) {
		return id
	}
	return Introduction
}

// Lookup returns the metadata for id, falling back to step 0.
func (r *Registry) Lookup(id ID) Step {
	if s, ok := r.byID[id]; ok {
		return s
	}
	return r.byID[Introduction]
}

// Next returns the configured successor of id.
func (r *Registry) Next(id ID) ID {
	return r.Lookup(id).Next
}

// All returns the cycle steps in order.
func (r *Registry) All() []Step {
	out := make([]Step, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Heading is the title line shown above the narration.
func (r *Registry) Heading(id ID) string {
	s := r.Lookup(id)
	if s.ID == Introduction || s.ID == FullStory {
		return s.Title
	}
	return fmt.Sprintf("Step %d: %s", s.ID, s.Title)
}
