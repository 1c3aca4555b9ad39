package player

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/engine"
	"github.com/ivlev/slideshow/internal/gesture"
	"github.com/ivlev/slideshow/internal/scheduler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const ms = time.Millisecond

func slides(durations ...time.Duration) []deck.Slide {
	out := make([]deck.Slide, len(durations))
	for i, d := range durations {
		out[i] = deck.Slide{ID: string(rune('a' + i)), Duration: d}
	}
	return out
}

type recorder struct {
	mu     sync.Mutex
	frames []engine.Frame
}

func (r *recorder) Publish(f engine.Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recorder) last() engine.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func TestPlayer_AutoAdvanceScenario(t *testing.T) {
	m := scheduler.NewManual()
	var visited []int
	p, err := New(slides(2000*ms, 3000*ms, 2000*ms), m, m, Options{
		TickInterval: 100 * ms,
		Engine: engine.Options{
			AutoPlay:           true,
			SettleDelay:        500 * ms,
			TransitionDuration: 300 * ms,
			Hooks: engine.Hooks{OnSlideChange: func(from, to int) {
				visited = append(visited, to)
			}},
		},
	})
	require.NoError(t, err)
	defer p.Close()

	m.Advance(8500 * ms)

	assert.Equal(t, []int{1, 2, 0}, visited)
	f, ok := p.Frame()
	require.True(t, ok)
	assert.Equal(t, 0, f.Index)
	assert.Zero(t, f.Elapsed)
}

func TestPlayer_TaskFollowsRunningState(t *testing.T) {
	m := scheduler.NewManual()
	p, err := New(slides(time.Second, time.Second), m, m, Options{
		TickInterval: 50 * ms,
		Engine:       engine.Options{AutoPlay: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, m.Pending())
	assert.True(t, p.Active())

	p.SetPlaying(false)
	assert.Equal(t, 0, m.Pending(), "pause cancels the tick")

	p.SetPlaying(true)
	assert.Equal(t, 1, m.Pending())

	p.OnVisibilityChange(false)
	assert.Equal(t, 0, m.Pending(), "hide cancels the tick")

	m.Advance(5 * time.Second)
	f, _ := p.Frame()
	assert.Zero(t, f.Elapsed)

	p.OnVisibilityChange(true)
	assert.Equal(t, 1, m.Pending())

	p.Close()
	assert.Equal(t, 0, m.Pending(), "close cancels the tick")
	assert.False(t, p.Active())
	assert.False(t, p.Next())
	_, ok := p.Frame()
	assert.False(t, ok)

	p.Close()
}

func TestPlayer_NoTaskWithoutAutoplay(t *testing.T) {
	m := scheduler.NewManual()
	p, err := New(slides(time.Second), m, m, Options{})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 0, m.Pending())
}

func TestPlayer_IntersectionGateArmsOnShow(t *testing.T) {
	m := scheduler.NewManual()
	p, err := New(slides(time.Second), m, m, Options{
		Engine: engine.Options{AutoPlay: true, IntersectionGate: true},
	})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 0, m.Pending())
	p.OnVisibilityChange(true)
	assert.Equal(t, 1, m.Pending())
}

func TestPlayer_Swipe(t *testing.T) {
	m := scheduler.NewManual()
	p, err := New(slides(time.Second, time.Second, time.Second), m, m, Options{})
	require.NoError(t, err)
	defer p.Close()

	dir := p.Swipe(gesture.Point{X: 300, Y: 100}, gesture.Point{X: 200, Y: 100})
	assert.Equal(t, gesture.Next, dir)
	f, _ := p.Frame()
	assert.Equal(t, 1, f.Index)

	m.Advance(time.Second)
	dir = p.Swipe(gesture.Point{X: 100, Y: 100}, gesture.Point{X: 120, Y: 100})
	assert.Equal(t, gesture.None, dir)
	f, _ = p.Frame()
	assert.Equal(t, 1, f.Index, "short drag is ignored")

	dir = p.Swipe(gesture.Point{X: 100, Y: 100}, gesture.Point{X: 200, Y: 100})
	assert.Equal(t, gesture.Prev, dir)
	f, _ = p.Frame()
	assert.Equal(t, 0, f.Index)
}

func TestPlayer_TrackerUsesSwipeOptions(t *testing.T) {
	m := scheduler.NewManual()
	p, err := New(slides(time.Second, time.Second), m, m, Options{Gesture: gesture.Options{Vertical: true}})
	require.NoError(t, err)
	defer p.Close()

	tr := p.NewTracker()
	tr.Start(gesture.Point{X: 0, Y: 400})
	tr.Move(gesture.Point{X: 5, Y: 300})
	assert.True(t, p.Navigate(tr.End(gesture.Point{X: 10, Y: 200})))
	f, _ := p.Frame()
	assert.Equal(t, 1, f.Index, "vertical drag up pages forward")

	assert.False(t, p.Navigate(gesture.None))
}

func TestPlayer_PublishesToSinks(t *testing.T) {
	m := scheduler.NewManual()
	rec := &recorder{}
	p, err := New(slides(time.Second, time.Second), m, m, Options{
		TickInterval: 100 * ms,
		Engine:       engine.Options{AutoPlay: true},
	}, rec)
	require.NoError(t, err)
	defer p.Close()

	m.Advance(300 * ms)
	require.Equal(t, 3, rec.len())
	assert.Equal(t, 300*ms, rec.last().Elapsed)

	require.True(t, p.Next())
	assert.Equal(t, 4, rec.len())
	assert.Equal(t, "b", rec.last().SlideID)

	late := &recorder{}
	p.Subscribe(late)
	assert.Equal(t, 1, late.len(), "subscribe publishes the current frame")
}

func TestPlayer_Reload(t *testing.T) {
	m := scheduler.NewManual()
	p, err := New(slides(time.Second, time.Second), m, m, Options{
		Engine: engine.Options{AutoPlay: true},
	})
	require.NoError(t, err)
	defer p.Close()

	require.True(t, p.Next())
	p.SetPlaying(false)

	require.NoError(t, p.Reload(slides(time.Second, time.Second, time.Second)))
	f, _ := p.Frame()
	assert.Equal(t, 1, f.Index, "position kept")
	assert.Equal(t, 3, f.SlideCount)
	assert.False(t, f.Playing, "pause kept")
	assert.Equal(t, 0, m.Pending())

	assert.ErrorIs(t, p.Reload(nil), deck.ErrNoSlides)
	assert.Len(t, p.Slides(), 3, "rejected reload keeps the old slides")
}

func TestPlayer_ReloadWhileHiddenAndPaused(t *testing.T) {
	m := scheduler.NewManual()
	var changes int
	p, err := New(slides(time.Second, time.Second), m, m, Options{
		Engine: engine.Options{
			AutoPlay: true,
			Hooks:    engine.Hooks{OnSlideChange: func(int, int) { changes++ }},
		},
	})
	require.NoError(t, err)
	defer p.Close()

	require.True(t, p.Next())
	m.Advance(time.Second)
	p.SetPlaying(false)
	p.OnVisibilityChange(false)
	changes = 0

	require.NoError(t, p.Reload(slides(time.Second, time.Second, time.Second)))
	assert.Zero(t, changes, "reload is not a slide change")
	assert.False(t, p.Active())

	p.OnVisibilityChange(true)
	f, _ := p.Frame()
	assert.False(t, f.Playing, "user pause survives reload and show")
	assert.Equal(t, 0, m.Pending())
	assert.True(t, p.Next(), "first navigation after reload is not debounced")
}

func TestPlayer_ToggleWhileHidden(t *testing.T) {
	m := scheduler.NewManual()
	p, err := New(slides(time.Second), m, m, Options{Engine: engine.Options{AutoPlay: true}})
	require.NoError(t, err)
	defer p.Close()

	p.OnVisibilityChange(false)
	p.Toggle()
	p.OnVisibilityChange(true)
	f, _ := p.Frame()
	assert.False(t, f.Playing, "toggle flips the intent, not the hidden state")
}

func TestPlayer_RealTickerStopsCleanly(t *testing.T) {
	frames := make(chan engine.Frame, 1)
	sink := SinkFunc(func(f engine.Frame) {
		select {
		case frames <- f:
		default:
		}
	})

	p, err := New(slides(time.Second, time.Second), scheduler.Ticker{}, scheduler.NewMonotonicClock(), Options{
		TickInterval: time.Millisecond,
		Engine:       engine.Options{AutoPlay: true},
	}, sink)
	require.NoError(t, err)

	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame published")
	}

	p.SetPlaying(false)
	p.SetPlaying(true)
	p.Close()
	goleak.VerifyNone(t)
}
