// Package narration holds the text the gateway serves: per-step narration,
// the keyword chat responder and the illustrative sample token.
package narration

import (
	"context"
	"errors"
)

// ErrStepNotFound is returned for steps without narration.
var ErrStepNotFound = errors.New("step not found")

// Source looks up narration text for a step.
type Source interface {
	Narration(ctx context.Context, step int) (string, error)
}

// Catalog is the built-in, read-only narration table.
type Catalog map[int]string

// DefaultCatalog returns the narration for steps 0..6.
func DefaultCatalog() Catalog {
	return Catalog{
		0: "Hi there! I'm here to show you how a 'JWT' works. Think of it like a digital wristband for an exclusive club. Let's see how you get one!",
		1: "First, our little blue user needs to prove who they are. They walk up to the Auth Server (the green building) and say 'Hey, it's me!' (usually with a password).",
		2: "The server checks their ID. If it recognizes them, it prints a special card called a JWT. This card says 'I trust this person' and is signed by the server.",
		3: "Now the user has their JWT card (that glowing purple thing). They don't need to say their password again; they just show this card to the gate.",
		4: "The gate checks the card's signature. It looks authentic! The gate opens up automatically, and our user can breeze right through. Simple and secure!",
		5: "Uh oh. This card's expiry time has passed. The signature is still real, but the gate only trusts fresh cards, so it stays shut. Time to log in again!",
		6: "Someone tried to change what the card says. The signature no longer matches the contents, so the gate knows it was tampered with and refuses entry.",
	}
}

func (c Catalog) Narration(_ context.Context, step int) (string, error) {
	text, ok := c[step]
	if !ok {
		return "", ErrStepNotFound
	}
	return text, nil
}
