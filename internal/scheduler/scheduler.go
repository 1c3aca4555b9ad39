package scheduler

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task is a scheduled repeating callback. Cancel is idempotent; a callback
// that already started may still finish.
type Task interface {
	Cancel()
}

// Waiter is implemented by tasks backed by a goroutine.
type Waiter interface {
	Wait()
}

// Stop cancels t and, when it has one, waits for its goroutine to exit.
func Stop(t Task) {
	if t == nil {
		return
	}
	t.Cancel()
	if w, ok := t.(Waiter); ok {
		w.Wait()
	}
}

// Scheduler arms repeating callbacks.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
}

// MonotonicClock reports time elapsed since it was created.
type MonotonicClock struct {
	clock clockwork.Clock
	start time.Time
}

// NewMonotonicClock returns a wall clock starting at zero.
func NewMonotonicClock() *MonotonicClock {
	return NewMonotonicClockFrom(clockwork.NewRealClock())
}

// NewMonotonicClockFrom measures offsets on clock.
func NewMonotonicClockFrom(clock clockwork.Clock) *MonotonicClock {
	return &MonotonicClock{clock: clock, start: clock.Now()}
}

// Now returns the offset from the clock's creation.
func (c *MonotonicClock) Now() time.Duration {
	return c.clock.Since(c.start)
}

// Ticker runs each task on its own goroutine driven by a clockwork ticker.
// The zero value uses the real clock.
type Ticker struct {
	Clock clockwork.Clock
}

// Every starts a goroutine calling fn every interval until cancelled.
func (s Ticker) Every(interval time.Duration, fn func()) Task {
	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	t := &tickerTask{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.run(clock.NewTicker(interval), fn)
	return t
}

type tickerTask struct {
	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func (t *tickerTask) run(ticker clockwork.Ticker, fn func()) {
	defer close(t.done)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.Chan():
			// a stop that raced with the tick wins
			select {
			case <-t.stop:
				return
			default:
			}
			fn()
		}
	}
}

// Cancel stops the ticker without waiting, so fn may cancel its own task.
func (t *tickerTask) Cancel() {
	t.once.Do(func() { close(t.stop) })
}

// Wait blocks until the task goroutine has exited. Call it after Cancel and
// never from inside fn.
func (t *tickerTask) Wait() {
	<-t.done
}
