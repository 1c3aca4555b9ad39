package engine

import (
	"time"

	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/logger"
)

const (
	// DefaultSettleDelay is the pause between a slide reaching its full
	// duration and the automatic move to the next one.
	DefaultSettleDelay = 500 * time.Millisecond
	// DefaultTransitionDuration is used for slides without a transition of
	// their own. Navigation is ignored for this long after a slide change.
	DefaultTransitionDuration = 600 * time.Millisecond
)

// Clock is a monotonic time source. Values are offsets from an arbitrary
// origin and never go backwards.
type Clock interface {
	Now() time.Duration
}

// Hooks are called synchronously from the goroutine driving the engine.
type Hooks struct {
	OnEnter       func(slideID, elementID string)
	OnExit        func(slideID, elementID string)
	OnSlideChange func(from, to int)
}

// Options configures an Engine.
type Options struct {
	AutoPlay bool
	// IntersectionGate keeps the engine invisible until the first
	// OnVisibilityChange(true), like a slider below the fold.
	IntersectionGate bool
	// ReducedMotion disables autoplay at start. Timing is never altered.
	ReducedMotion bool
	// SettleDelay defaults to DefaultSettleDelay; a negative value disables it.
	SettleDelay        time.Duration
	TransitionDuration time.Duration
	Hooks              Hooks
}

func (o *Options) applyDefaults() {
	switch {
	case o.SettleDelay == 0:
		o.SettleDelay = DefaultSettleDelay
	case o.SettleDelay < 0: // advance as soon as the slide is complete
		o.SettleDelay = 0
	}
	if o.TransitionDuration <= 0 {
		o.TransitionDuration = DefaultTransitionDuration
	}
}

// Frame is the state handed to renderers after every change.
type Frame struct {
	Index              int
	SlideID            string
	SlideCount         int
	Elapsed            time.Duration
	Duration           time.Duration
	Active             []string
	Playing            bool
	Visible            bool
	InTransition       bool
	Transition         time.Duration // length of the current slide's enter transition
	TransitionProgress float64       // 0..1
}

// Engine is the slide timeline state machine. It owns no timers: callers
// feed it ticks and UI events from a single goroutine.
type Engine struct {
	slides []deck.Slide
	opts   Options
	clock  Clock

	index   int
	playing bool // wantPlay while visible
	visible bool
	// wantPlay is the play intent: autoplay at start, then the last
	// SetPlaying. It survives hide/show cycles.
	wantPlay bool

	elapsed  time.Duration
	settled  time.Duration // time spent at full duration waiting to advance
	lastTick time.Duration
	ticked   bool

	changedAt       time.Duration
	transition      time.Duration
	transitionUntil time.Duration

	active []string
}

// New validates slides and builds an engine positioned on the first slide.
func New(slides []deck.Slide, clock Clock, opts Options) (*Engine, error) {
	if err := deck.Validate(slides); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	e := &Engine{
		slides:   append([]deck.Slide(nil), slides...),
		opts:     opts,
		clock:    clock,
		visible:  !opts.IntersectionGate,
		wantPlay: opts.AutoPlay && !opts.ReducedMotion,
	}
	e.playing = e.wantPlay && e.visible

	now := clock.Now()
	e.lastTick = now
	e.ticked = true
	e.changedAt = now
	e.refreshActive()
	return e, nil
}

// Now reads the engine's clock.
func (e *Engine) Now() time.Duration {
	return e.clock.Now()
}

// Len returns the number of slides.
func (e *Engine) Len() int {
	return len(e.slides)
}

// Slides returns the engine's slide list. Callers must not modify it.
func (e *Engine) Slides() []deck.Slide {
	return e.slides
}

// Current returns the slide being shown.
func (e *Engine) Current() deck.Slide {
	return e.slides[e.index]
}

// Index returns currentSlideIndex.
func (e *Engine) Index() int {
	return e.index
}

// Elapsed returns elapsedInSlide.
func (e *Engine) Elapsed() time.Duration {
	return e.elapsed
}

// Playing reports isPlaying. It is never true while hidden.
func (e *Engine) Playing() bool {
	return e.playing
}

// WantsPlay reports the play intent, which takes effect once visible.
func (e *Engine) WantsPlay() bool {
	return e.wantPlay
}

// Visible reports the last visibility signal.
func (e *Engine) Visible() bool {
	return e.visible
}

// Running reports whether ticks currently advance time. Drivers keep a
// tick source armed exactly while this is true.
func (e *Engine) Running() bool {
	return e.playing && e.visible
}

// Active returns the IDs of the currently active elements.
func (e *Engine) Active() []string {
	return append([]string(nil), e.active...)
}

// InTransition reports whether navigation is currently debounced.
func (e *Engine) InTransition() bool {
	return e.inTransition(e.clock.Now())
}

func (e *Engine) inTransition(now time.Duration) bool {
	return now < e.transitionUntil
}

// Tick advances elapsedInSlide to now. Repeated or older timestamps are
// ignored. Once the slide has been at full duration for the settle delay the
// engine moves to the next slide; at most one slide change happens per tick.
func (e *Engine) Tick(now time.Duration) Frame {
	if e.ticked && now <= e.lastTick {
		return e.frameAt(e.lastTick)
	}
	var delta time.Duration
	if e.ticked {
		delta = now - e.lastTick
	}
	e.lastTick = now
	e.ticked = true

	if !e.Running() {
		return e.frameAt(now)
	}

	duration := e.slides[e.index].Duration
	if e.elapsed < duration {
		e.elapsed += delta
		if e.elapsed < duration {
			e.refreshActive()
			return e.frameAt(now)
		}
		// carry the overshoot into the settle phase
		delta = e.elapsed - duration
		e.elapsed = duration
	}
	e.settled += delta
	e.refreshActive()

	if e.settled >= e.opts.SettleDelay {
		if !e.navigate(e.wrap(e.index+1), now) {
			logger.Debug("auto-advance deferred by transition",
				logger.Int("index", e.index),
				logger.Duration("until", e.transitionUntil-now))
		}
	}
	return e.frameAt(now)
}

// Next moves to the following slide, wrapping after the last. It returns
// false when a transition is still in flight.
func (e *Engine) Next() bool {
	return e.navigate(e.wrap(e.index+1), e.clock.Now())
}

// Prev moves to the preceding slide, wrapping before the first.
func (e *Engine) Prev() bool {
	return e.navigate(e.wrap(e.index-1), e.clock.Now())
}

// GoTo jumps to index. It is a no-op for the current index, for an index
// out of range and while a transition is in flight.
func (e *Engine) GoTo(index int) bool {
	if index < 0 || index >= len(e.slides) {
		logger.Debug("goto out of range", logger.Int("index", index), logger.Int("slides", len(e.slides)))
		return false
	}
	if index == e.index {
		return false
	}
	return e.navigate(index, e.clock.Now())
}

// SetPlaying starts or stops autoplay. Pausing keeps elapsedInSlide;
// resuming continues from it. While hidden only the intent is recorded.
func (e *Engine) SetPlaying(playing bool) {
	e.wantPlay = playing
	e.setPlaying(playing && e.visible)
}

func (e *Engine) setPlaying(playing bool) {
	if playing == e.playing {
		return
	}
	if playing {
		e.anchor()
	}
	e.playing = playing
}

// OnVisibilityChange records whether the slider is on screen. Losing
// visibility always pauses. Regaining it resumes the play intent: autoplay
// (unless motion is reduced) or the last explicit SetPlaying.
func (e *Engine) OnVisibilityChange(visible bool) {
	if visible == e.visible {
		return
	}
	e.visible = visible
	if !visible {
		e.setPlaying(false)
		return
	}
	e.anchor()
	e.setPlaying(e.wantPlay)
}

// Reload replaces the slide list in place. The position, elapsed time,
// play intent and visibility are kept; an index past the new end falls
// back to the first slide. No transition starts, and hooks fire only for
// elements whose active state actually changed.
func (e *Engine) Reload(slides []deck.Slide) error {
	if err := deck.Validate(slides); err != nil {
		return err
	}
	from := e.index
	oldID := e.slides[from].ID
	e.slides = append([]deck.Slide(nil), slides...)

	if from >= len(e.slides) {
		e.index = 0
		e.elapsed = 0
		e.settled = 0
	}
	if cur := e.slides[e.index]; cur.ID != oldID {
		e.exitAll(oldID)
	}
	if d := e.slides[e.index].Duration; e.elapsed >= d {
		e.elapsed = d
	} else {
		e.settled = 0
	}
	if e.index != from && e.opts.Hooks.OnSlideChange != nil {
		e.opts.Hooks.OnSlideChange(from, e.index)
	}
	e.refreshActive()
	return nil
}

// Frame returns the current render state. The boolean is false for a nil
// engine, which is the "nothing to render" signal.
func (e *Engine) Frame() (Frame, bool) {
	if e == nil || len(e.slides) == 0 {
		return Frame{}, false
	}
	return e.frameAt(e.clock.Now()), true
}

// anchor makes the next tick measure time from now, so a gap spent paused
// or hidden is not counted.
func (e *Engine) anchor() {
	now := e.clock.Now()
	if now > e.lastTick || !e.ticked {
		e.lastTick = now
		e.ticked = true
	}
}

func (e *Engine) wrap(i int) int {
	n := len(e.slides)
	return ((i % n) + n) % n
}

func (e *Engine) navigate(target int, now time.Duration) bool {
	if e.inTransition(now) {
		logger.Debug("navigation ignored during transition",
			logger.Int("from", e.index), logger.Int("to", target))
		return false
	}

	from := e.index
	e.exitAll(e.slides[from].ID)

	e.index = target
	e.elapsed = 0
	e.settled = 0
	if now > e.lastTick {
		e.lastTick = now
	}
	e.ticked = true
	e.changedAt = now
	e.transition = e.slides[target].TransitionDuration(e.opts.TransitionDuration)
	e.transitionUntil = now + e.transition

	if e.opts.Hooks.OnSlideChange != nil {
		e.opts.Hooks.OnSlideChange(from, target)
	}
	e.refreshActive()
	return true
}

// exitAll clears the active set, reporting each element as leaving slideID.
func (e *Engine) exitAll(slideID string) {
	if e.opts.Hooks.OnExit != nil {
		for _, id := range e.active {
			e.opts.Hooks.OnExit(slideID, id)
		}
	}
	e.active = nil
}

func (e *Engine) refreshActive() {
	slide := e.slides[e.index]
	next := ActiveElements(slide, e.elapsed)
	exited, entered := diffActive(e.active, next)
	e.active = next

	if e.opts.Hooks.OnExit != nil {
		for _, id := range exited {
			e.opts.Hooks.OnExit(slide.ID, id)
		}
	}
	if e.opts.Hooks.OnEnter != nil {
		for _, id := range entered {
			e.opts.Hooks.OnEnter(slide.ID, id)
		}
	}
}

func (e *Engine) frameAt(now time.Duration) Frame {
	slide := e.slides[e.index]
	f := Frame{
		Index:        e.index,
		SlideID:      slide.ID,
		SlideCount:   len(e.slides),
		Elapsed:      e.elapsed,
		Duration:     slide.Duration,
		Active:       e.Active(),
		Playing:      e.playing,
		Visible:      e.visible,
		InTransition: e.inTransition(now),
		Transition:   e.transition,
	}
	switch {
	case e.transition <= 0 || now >= e.transitionUntil:
		f.TransitionProgress = 1
	case now > e.changedAt:
		f.TransitionProgress = float64(now-e.changedAt) / float64(e.transition)
	}
	return f
}
