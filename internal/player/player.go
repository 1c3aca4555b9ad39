package player

import (
	"sync"
	"time"

	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/engine"
	"github.com/ivlev/slideshow/internal/gesture"
	"github.com/ivlev/slideshow/internal/logger"
	"github.com/ivlev/slideshow/internal/scheduler"
)

// DefaultTickInterval is roughly one frame at 60Hz.
const DefaultTickInterval = 16 * time.Millisecond

// Sink receives a frame after every state change. Publish is called with
// the player's lock held: it must not block and must not call back into
// the player.
type Sink interface {
	Publish(f engine.Frame)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(engine.Frame)

func (fn SinkFunc) Publish(f engine.Frame) { fn(f) }

// Options configures a Player.
type Options struct {
	Engine       engine.Options
	TickInterval time.Duration
	Gesture      gesture.Options
}

// Player owns an engine and the timer that drives it. A tick task is armed
// exactly while the engine is running and is cancelled on pause, on
// visibility loss and on Close.
type Player struct {
	mu     sync.Mutex
	eng    *engine.Engine
	clock  engine.Clock
	sched  scheduler.Scheduler
	opts   Options
	sinks  []Sink
	task   scheduler.Task
	gen    uint64
	closed bool
}

// New builds the engine for slides and arms the tick task if autoplay is on.
func New(slides []deck.Slide, sched scheduler.Scheduler, clock engine.Clock, opts Options, sinks ...Sink) (*Player, error) {
	eng, err := engine.New(slides, clock, opts.Engine)
	if err != nil {
		return nil, err
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}

	p := &Player{
		eng:   eng,
		clock: clock,
		sched: sched,
		opts:  opts,
		sinks: sinks,
	}

	p.mu.Lock()
	p.syncTask()
	p.mu.Unlock()
	return p, nil
}

// Subscribe adds a sink and immediately publishes the current frame to it.
func (p *Player) Subscribe(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sinks = append(p.sinks, s)
	if f, ok := p.eng.Frame(); ok {
		s.Publish(f)
	}
}

// Frame returns the current frame; false once the player is closed.
func (p *Player) Frame() (engine.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return engine.Frame{}, false
	}
	return p.eng.Frame()
}

// Slides returns the slide list currently playing.
func (p *Player) Slides() []deck.Slide {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Slides()
}

// Next, Prev and GoTo forward to the debounced engine navigation.
func (p *Player) Next() bool {
	return p.update(func(e *engine.Engine) bool { return e.Next() })
}

func (p *Player) Prev() bool {
	return p.update(func(e *engine.Engine) bool { return e.Prev() })
}

func (p *Player) GoTo(index int) bool {
	return p.update(func(e *engine.Engine) bool { return e.GoTo(index) })
}

// SetPlaying starts or pauses autoplay.
func (p *Player) SetPlaying(playing bool) {
	p.update(func(e *engine.Engine) bool {
		e.SetPlaying(playing)
		return true
	})
}

// Toggle flips between playing and paused.
func (p *Player) Toggle() {
	p.update(func(e *engine.Engine) bool {
		e.SetPlaying(!e.WantsPlay())
		return true
	})
}

// OnVisibilityChange forwards an intersection/visibility signal.
func (p *Player) OnVisibilityChange(visible bool) {
	p.update(func(e *engine.Engine) bool {
		e.OnVisibilityChange(visible)
		return true
	})
}

// Swipe resolves a drag and navigates accordingly.
func (p *Player) Swipe(start, end gesture.Point) gesture.Direction {
	dir := gesture.Resolve(start, end, p.opts.Gesture)
	p.Navigate(dir)
	return dir
}

// Navigate applies an already resolved gesture.
func (p *Player) Navigate(dir gesture.Direction) bool {
	switch dir {
	case gesture.Next:
		return p.Next()
	case gesture.Prev:
		return p.Prev()
	}
	return false
}

// NewTracker returns a touch tracker using the player's swipe settings.
func (p *Player) NewTracker() *gesture.Tracker {
	return gesture.NewTracker(p.opts.Gesture)
}

// Reload swaps in a new slide list. The engine keeps its position, play
// intent and visibility; see engine.Reload.
func (p *Player) Reload(slides []deck.Slide) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	if err := p.eng.Reload(slides); err != nil {
		return err
	}
	p.syncTask()
	p.publish()
	logger.Info("slides reloaded", logger.Int("slides", p.eng.Len()), logger.Int("index", p.eng.Index()))
	return nil
}

// Close cancels the tick task and waits for its goroutine. Further calls
// are no-ops; so are all other methods after Close.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	task := p.task
	p.task = nil
	p.gen++
	p.sinks = nil
	p.mu.Unlock()

	scheduler.Stop(task)
	logger.Debug("player closed")
}

// Active reports whether a tick task is currently armed.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.task != nil
}

func (p *Player) update(op func(*engine.Engine) bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	changed := op(p.eng)
	p.syncTask()
	if changed {
		p.publish()
	}
	return changed
}

func (p *Player) onTick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.gen {
		return
	}
	p.eng.Tick(p.clock.Now())
	p.publish()
}

// syncTask arms or cancels the tick task to match the engine. Must be
// called with the lock held.
func (p *Player) syncTask() {
	running := p.eng.Running()
	switch {
	case running && p.task == nil:
		p.gen++
		gen := p.gen
		p.task = p.sched.Every(p.opts.TickInterval, func() { p.onTick(gen) })
		logger.Debug("tick task armed", logger.Duration("interval", p.opts.TickInterval))
	case !running && p.task != nil:
		p.cancelTask()
		logger.Debug("tick task cancelled")
	}
}

func (p *Player) cancelTask() {
	if p.task == nil {
		return
	}
	p.task.Cancel()
	p.task = nil
	p.gen++
}

func (p *Player) publish() {
	f, ok := p.eng.Frame()
	if !ok {
		return
	}
	for _, s := range p.sinks {
		s.Publish(f)
	}
}
