// Package tween moves a transform toward a target at a fixed progress rate.
package tween

// Shape is a transform that can be interpolated component-wise.
type Shape[T any] interface {
	Lerp(to T, t float64) T
	Equal(other T) bool
}

// Tween interpolates from the value captured at Retarget toward target.
// Progress is in [0,1]; at 1 the current value equals the target exactly.
type Tween[T Shape[T]] struct {
	from     T
	current  T
	target   T
	progress float64
	rate     float64
}

// New returns a settled tween at origin.
func New[T Shape[T]](origin T, rate float64) *Tween[T] {
	return &Tween[T]{from: origin, current: origin, target: origin, progress: 1, rate: rate}
}

func (tw *Tween[T]) Current() T { return tw.current }
func (tw *Tween[T]) Target() T { return tw.target }
func (tw *Tween[T]) Progress() float64 { return tw.progress }
func (tw *Tween[T]) Rate() float64 { return tw.rate }
func (tw *Tween[T]) Done() bool { return tw.progress >= 1 }

// SetRate changes the speed of the transition in progress. A rate of zero or
// less finishes it immediately.
func (tw *Tween[T]) SetRate(r float64) {
	tw.rate = r
	if r <= 0 && !tw.Done() {
		tw.Snap(tw.target)
	}
}

// Retarget starts a transition from the current value. Asking for the
// target already in effect changes nothing.
func (tw *Tween[T]) Retarget(target T) {
	if tw.target.Equal(target) {
		return
	}
	if tw.rate <= 0 {
		tw.Snap(target)
		return
	}
	tw.from = tw.current
	tw.target = target
	tw.progress = 0
}

// Snap jumps straight to v and settles there.
func (tw *Tween[T]) Snap(v T) {
	tw.from, tw.current, tw.target = v, v, v
	tw.progress = 1
}

// Step advances progress by delta*rate seconds.
func (tw *Tween[T]) Step(delta float64) {
	if tw.progress >= 1 {
		return
	}
	if delta < 0 {
		delta = 0
	}
	p := tw.progress + delta*tw.rate
	if p >= 1 || tw.rate <= 0 {
		tw.progress = 1
		tw.current = tw.target
		return
	}
	tw.progress = p
	tw.current = tw.from.Lerp(tw.target, p)
}
