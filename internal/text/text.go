// Package text fetches the prose shown next to the animation: step narration,
// chat answers and the sample token.
package text

import (
	"context"
	"time"

	"github.com/DaanHessen/jwtviz/internal/narration"
)

// ChatUnavailable is shown when a chat question cannot be answered.
const ChatUnavailable = "Sorry, I couldn't reach the server."

// Narrator is the interface the UI uses to get prose.
type Narrator interface {
	Narration(ctx context.Context, step int) (string, error)
	Ask(ctx context.Context, message string) (string, error)
	SampleToken(ctx context.Context) (narration.SampleToken, error)
}

// offlineNarrator answers from the built-in catalog without a gateway.
type offlineNarrator struct {
	svc *narration.Service
}

// NewOfflineNarrator answers locally with the same texts and rules as the gateway.
func NewOfflineNarrator() Narrator {
	return &offlineNarrator{svc: narration.NewService(narration.DefaultCatalog(), []byte("jwtviz-offline"), nil)}
}

func (o *offlineNarrator) Narration(ctx context.Context, step int) (string, error) {
	return o.svc.Narration(ctx, step)
}

func (o *offlineNarrator) Ask(_ context.Context, message string) (string, error) {
	return o.svc.Ask(message), nil
}

func (o *offlineNarrator) SampleToken(_ context.Context) (narration.SampleToken, error) {
	return o.svc.SampleToken()
}

// WithFallback returns a narrator that prefers primary and falls back to backup on error.
func WithFallback(primary, fallback Narrator) Narrator { return &fallbackNarrator{p: primary, f: fallback} }

type fallbackNarrator struct{ p, f Narrator }

func (n *fallbackNarrator) Narration(ctx context.Context, step int) (string, error) {
	if n.p == nil {
		return n.f.Narration(ctx, step)
	}
	if s, err := n.p.Narration(ctx, step); err == nil {
		return s, nil
	}
	return n.f.Narration(ctx, step)
}

func (n *fallbackNarrator) Ask(ctx context.Context, message string) (string, error) {
	if n.p == nil {
		return n.f.Ask(ctx, message)
	}
	if s, err := n.p.Ask(ctx, message); err == nil {
		return s, nil
	}
	return n.f.Ask(ctx, message)
}

func (n *fallbackNarrator) SampleToken(ctx context.Context) (narration.SampleToken, error) {
	if n.p == nil {
		return n.f.SampleToken(ctx)
	}
	if tok, err := n.p.SampleToken(ctx); err == nil {
		return tok, nil
	}
	return n.f.SampleToken(ctx)
}

// DefaultTimeout bounds one gateway round trip when none is configured.
const DefaultTimeout = 5 * time.Second
