package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// tickWait bounds how long Advance waits for a fake ticker to deliver.
const tickWait = time.Second

// Manual is a deterministic Scheduler and Clock backed by a clockwork fake
// clock. Time moves only through Advance, which steps the fake clock from
// deadline to deadline and runs each due task on the caller's goroutine.
type Manual struct {
	fake   *clockwork.FakeClock
	origin time.Time

	mu     sync.Mutex
	nextID int
	tasks  map[int]*manualTask
}

// NewManual returns a manual scheduler whose clock reads zero.
func NewManual() *Manual {
	fake := clockwork.NewFakeClock()
	return &Manual{
		fake:   fake,
		origin: fake.Now(),
		tasks:  make(map[int]*manualTask),
	}
}

type manualTask struct {
	m      *Manual
	id     int
	ticker clockwork.Ticker
	due    time.Duration
	every  time.Duration
	fn     func()
}

func (t *manualTask) Cancel() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if _, ok := t.m.tasks[t.id]; ok {
		delete(t.m.tasks, t.id)
		t.ticker.Stop()
	}
}

// Now implements the engine clock.
func (m *Manual) Now() time.Duration {
	return m.fake.Since(m.origin)
}

// Every registers fn to run every interval of manual time.
func (m *Manual) Every(interval time.Duration, fn func()) Task {
	if interval <= 0 {
		interval = time.Millisecond
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := &manualTask{
		m:      m,
		id:     m.nextID,
		ticker: m.fake.NewTicker(interval),
		due:    m.Now() + interval,
		every:  interval,
		fn:     fn,
	}
	m.tasks[t.id] = t
	return t
}

// Pending returns the number of live tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Advance moves the clock forward by d, firing every task that falls due.
// Tasks sharing a deadline fire in registration order.
func (m *Manual) Advance(d time.Duration) {
	target := m.Now() + d
	for {
		m.mu.Lock()
		t := m.earliestDue(target)
		if t == nil {
			m.fake.Advance(target - m.Now())
			m.mu.Unlock()
			return
		}
		m.fake.Advance(t.due - m.Now())
		t.due += t.every
		fired := t.receive()
		m.mu.Unlock()

		if fired {
			t.fn()
		}
	}
}

// receive consumes the tick the fake clock delivered for the deadline
// just reached.
func (t *manualTask) receive() bool {
	select {
	case <-t.ticker.Chan():
		return true
	case <-time.After(tickWait):
		return false
	}
}

// Set moves the clock to an absolute time without going backwards.
func (m *Manual) Set(at time.Duration) {
	if d := at - m.Now(); d > 0 {
		m.Advance(d)
	}
}

func (m *Manual) earliestDue(limit time.Duration) *manualTask {
	var due []*manualTask
	for _, t := range m.tasks {
		if t.due <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].id < due[j].id
		}
		return due[i].due < due[j].due
	})
	return due[0]
}
