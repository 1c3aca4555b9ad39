package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/scheduler"
)

const ms = time.Millisecond

func slides(durations ...time.Duration) []deck.Slide {
	out := make([]deck.Slide, len(durations))
	for i, d := range durations {
		out[i] = deck.Slide{ID: string(rune('a' + i)), Duration: d}
	}
	return out
}

// run advances the clock in steps, ticking after each one.
func run(clk *scheduler.Manual, e *Engine, total, step time.Duration) {
	for elapsed := time.Duration(0); elapsed < total; elapsed += step {
		clk.Advance(step)
		e.Tick(clk.Now())
	}
}

func TestNew_RejectsEmptyAndMalformed(t *testing.T) {
	clk := scheduler.NewManual()

	_, err := New(nil, clk, Options{})
	assert.ErrorIs(t, err, deck.ErrNoSlides)

	bad := []deck.Slide{{
		ID:       "s",
		Duration: 1000 * ms,
		Elements: []deck.Element{{ID: "late", Start: 900 * ms, End: 1200 * ms}},
	}}
	_, err = New(bad, clk, Options{})
	require.Error(t, err)
	var we *deck.WindowError
	assert.True(t, errors.As(err, &we))
	assert.Equal(t, "late", we.ElementID)
}

func TestFrame_NilEngineSignalsNoRender(t *testing.T) {
	var e *Engine
	_, ok := e.Frame()
	assert.False(t, ok)
}

func TestNext_WrapsAfterNCalls(t *testing.T) {
	for n := 1; n <= 5; n++ {
		clk := scheduler.NewManual()
		ds := make([]time.Duration, n)
		for i := range ds {
			ds[i] = time.Second
		}
		e, err := New(slides(ds...), clk, Options{TransitionDuration: 100 * ms})
		require.NoError(t, err)

		for i := 0; i < n; i++ {
			clk.Advance(100 * ms)
			require.True(t, e.Next(), "next %d of %d", i, n)
		}
		assert.Equal(t, 0, e.Index(), "n=%d", n)
	}
}

func TestPrev_WrapsBackwards(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second, time.Second, time.Second), clk, Options{})
	require.NoError(t, err)

	require.True(t, e.Prev())
	assert.Equal(t, 2, e.Index())
}

func TestNavigation_DebouncedDuringTransition(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second, time.Second, time.Second), clk, Options{TransitionDuration: 300 * ms})
	require.NoError(t, err)

	require.True(t, e.Next())
	assert.True(t, e.InTransition())

	clk.Advance(100 * ms)
	assert.False(t, e.Next(), "next inside window")
	assert.False(t, e.Prev(), "prev inside window")
	assert.False(t, e.GoTo(2), "goto inside window")
	assert.Equal(t, 1, e.Index())

	clk.Advance(200 * ms)
	assert.False(t, e.InTransition())
	assert.True(t, e.Next())
	assert.Equal(t, 2, e.Index())
}

func TestNavigation_SlideTransitionOverridesDefault(t *testing.T) {
	clk := scheduler.NewManual()
	ss := slides(time.Second, time.Second)
	ss[1].Transition = &deck.Transition{Type: deck.TransitionFade, Duration: 50 * ms}
	e, err := New(ss, clk, Options{TransitionDuration: time.Second})
	require.NoError(t, err)

	require.True(t, e.Next())
	clk.Advance(50 * ms)
	assert.True(t, e.Next(), "slide 1 transition is only 50ms")
}

func TestGoTo(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second, time.Second, time.Second), clk, Options{AutoPlay: true})
	require.NoError(t, err)

	clk.Advance(400 * ms)
	e.Tick(clk.Now())
	require.Equal(t, 400*ms, e.Elapsed())

	assert.False(t, e.GoTo(0), "same index")
	assert.Equal(t, 400*ms, e.Elapsed(), "same index must not reset")
	assert.False(t, e.InTransition(), "same index must not start a transition")

	assert.False(t, e.GoTo(3))
	assert.False(t, e.GoTo(-1))
	assert.Equal(t, 0, e.Index())

	assert.True(t, e.GoTo(2))
	assert.Equal(t, 2, e.Index())
	assert.Zero(t, e.Elapsed())
}

func TestTick_IdempotentAndMonotonic(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second), clk, Options{AutoPlay: true})
	require.NoError(t, err)

	clk.Advance(300 * ms)
	first := e.Tick(clk.Now())
	second := e.Tick(clk.Now())
	assert.Equal(t, first, second)
	assert.Equal(t, 300*ms, e.Elapsed())

	e.Tick(100 * ms)
	assert.Equal(t, 300*ms, e.Elapsed(), "older timestamp must not decrease elapsed")
}

func TestSetPlaying_PauseKeepsElapsed(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(2*time.Second), clk, Options{AutoPlay: true})
	require.NoError(t, err)

	run(clk, e, 700*ms, 100*ms)
	require.Equal(t, 700*ms, e.Elapsed())

	e.SetPlaying(false)
	run(clk, e, 5*time.Second, 100*ms)
	assert.Equal(t, 700*ms, e.Elapsed(), "elapsed frozen while paused")
	assert.Equal(t, 0, e.Index())

	// a long gap without ticks must not be counted either
	clk.Advance(10 * time.Second)
	e.SetPlaying(true)
	clk.Advance(100 * ms)
	e.Tick(clk.Now())
	assert.Equal(t, 800*ms, e.Elapsed(), "resume continues from the paused value")
}

func TestVisibility(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second, time.Second), clk, Options{AutoPlay: true})
	require.NoError(t, err)
	require.True(t, e.Playing())

	e.OnVisibilityChange(false)
	assert.False(t, e.Playing())
	assert.False(t, e.Running())

	run(clk, e, 5*time.Second, 100*ms)
	assert.Equal(t, 0, e.Index(), "no auto-advance while hidden")
	assert.Zero(t, e.Elapsed())

	e.OnVisibilityChange(true)
	assert.True(t, e.Playing(), "autoplay resumes when shown again")

	e.SetPlaying(false)
	e.OnVisibilityChange(false)
	e.OnVisibilityChange(true)
	assert.False(t, e.Playing(), "explicit pause survives a hide/show cycle")
}

func TestIntersectionGate_StartsHidden(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second), clk, Options{AutoPlay: true, IntersectionGate: true})
	require.NoError(t, err)

	assert.False(t, e.Playing(), "nothing advances before the first show")
	assert.True(t, e.WantsPlay())
	f, _ := e.Frame()
	assert.False(t, f.Playing)

	e.OnVisibilityChange(true)
	assert.True(t, e.Playing())
	assert.True(t, e.Running())
}

func TestSetPlaying_WhileHiddenWaitsForShow(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second), clk, Options{IntersectionGate: true})
	require.NoError(t, err)

	e.SetPlaying(true)
	assert.False(t, e.Playing(), "hidden engine does not report playing")
	f, _ := e.Frame()
	assert.False(t, f.Playing)

	e.OnVisibilityChange(true)
	assert.True(t, e.Playing(), "explicit play takes effect once shown")

	e.OnVisibilityChange(false)
	e.SetPlaying(false)
	e.OnVisibilityChange(true)
	assert.False(t, e.Playing())
}

func TestReducedMotion_DisablesAutoplay(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second), clk, Options{AutoPlay: true, ReducedMotion: true})
	require.NoError(t, err)
	assert.False(t, e.Playing())

	e.OnVisibilityChange(false)
	e.OnVisibilityChange(true)
	assert.False(t, e.Playing())

	e.SetPlaying(true)
	assert.True(t, e.Playing(), "explicit play is still honoured")
}

func TestAutoAdvance_VisitsSlidesInOrder(t *testing.T) {
	clk := scheduler.NewManual()
	var visited []int
	var resets []time.Duration

	e, err := New(slides(2000*ms, 3000*ms, 2000*ms), clk, Options{
		AutoPlay:           true,
		SettleDelay:        500 * ms,
		TransitionDuration: 300 * ms,
		Hooks: Hooks{OnSlideChange: func(from, to int) {
			visited = append(visited, to)
		}},
	})
	require.NoError(t, err)

	step := 100 * ms
	for clk.Now() < 8500*ms {
		clk.Advance(step)
		before := e.Index()
		e.Tick(clk.Now())
		if e.Index() != before {
			resets = append(resets, e.Elapsed())
		}
	}

	assert.Equal(t, []int{1, 2, 0}, visited)
	assert.Equal(t, []time.Duration{0, 0, 0}, resets)
	assert.Equal(t, 0, e.Index())
}

func TestAutoAdvance_SettleDelay(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(1000*ms, 1000*ms), clk, Options{AutoPlay: true, SettleDelay: 500 * ms})
	require.NoError(t, err)

	run(clk, e, 1400*ms, 100*ms)
	assert.Equal(t, 0, e.Index(), "still settling")
	assert.Equal(t, 1000*ms, e.Elapsed(), "elapsed clamps at duration")

	run(clk, e, 100*ms, 100*ms)
	assert.Equal(t, 1, e.Index())
}

func TestAutoAdvance_OneSlidePerTick(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(100*ms, 100*ms, 100*ms), clk, Options{AutoPlay: true, SettleDelay: -1})
	require.NoError(t, err)

	clk.Advance(10 * time.Second)
	e.Tick(clk.Now())
	assert.Equal(t, 1, e.Index())
	assert.Zero(t, e.Elapsed())
}

func TestNavigationWinsOverPendingTick(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second, time.Second), clk, Options{AutoPlay: true})
	require.NoError(t, err)

	clk.Advance(600 * ms)
	stale := clk.Now()
	e.Tick(stale)
	require.Equal(t, 600*ms, e.Elapsed())

	clk.Advance(50 * ms)
	require.True(t, e.Next())
	e.Tick(stale) // captured before the navigation
	assert.Zero(t, e.Elapsed())

	clk.Advance(100 * ms)
	e.Tick(clk.Now())
	assert.Equal(t, 100*ms, e.Elapsed())
}

func TestFrame_TransitionProgress(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(time.Second, time.Second), clk, Options{TransitionDuration: 400 * ms})
	require.NoError(t, err)

	f, ok := e.Frame()
	require.True(t, ok)
	assert.Equal(t, 1.0, f.TransitionProgress)
	assert.Equal(t, 2, f.SlideCount)

	require.True(t, e.Next())
	clk.Advance(100 * ms)
	f, _ = e.Frame()
	assert.True(t, f.InTransition)
	assert.InDelta(t, 0.25, f.TransitionProgress, 1e-9)
	assert.Equal(t, "b", f.SlideID)
}

func TestReload_KeepsPositionWithoutTransition(t *testing.T) {
	clk := scheduler.NewManual()
	var changes [][2]int
	var entered, exited []string
	ss := slides(time.Second, 2*time.Second, time.Second)
	ss[1].Elements = []deck.Element{
		{ID: "x", Start: 0, End: 2 * time.Second},
		{ID: "y", Start: 0, End: 2 * time.Second},
	}
	e, err := New(ss, clk, Options{
		AutoPlay:           true,
		TransitionDuration: 300 * ms,
		Hooks: Hooks{
			OnSlideChange: func(from, to int) { changes = append(changes, [2]int{from, to}) },
			OnEnter:       func(_, id string) { entered = append(entered, id) },
			OnExit:        func(_, id string) { exited = append(exited, id) },
		},
	})
	require.NoError(t, err)

	require.True(t, e.Next())
	clk.Advance(400 * ms)
	e.Tick(clk.Now())
	require.Equal(t, 400*ms, e.Elapsed())
	changes, entered, exited = nil, nil, nil

	revised := slides(time.Second, 2*time.Second, time.Second, time.Second)
	revised[1].Elements = []deck.Element{
		{ID: "x", Start: 0, End: 2 * time.Second},
		{ID: "z", Start: 0, End: time.Second},
	}
	require.NoError(t, e.Reload(revised))

	assert.Equal(t, 1, e.Index())
	assert.Equal(t, 400*ms, e.Elapsed())
	assert.Equal(t, 4, e.Len())
	assert.False(t, e.InTransition(), "reload starts no transition")
	assert.Empty(t, changes)
	assert.Equal(t, []string{"z"}, entered)
	assert.Equal(t, []string{"y"}, exited)
	assert.True(t, e.Next(), "navigation right after reload is accepted")
}

func TestReload_ShrunkDeckAndPause(t *testing.T) {
	clk := scheduler.NewManual()
	var changes [][2]int
	e, err := New(slides(time.Second, time.Second, time.Second), clk, Options{
		AutoPlay: true,
		Hooks:    Hooks{OnSlideChange: func(from, to int) { changes = append(changes, [2]int{from, to}) }},
	})
	require.NoError(t, err)
	require.True(t, e.GoTo(2))
	e.SetPlaying(false)
	e.OnVisibilityChange(false)
	changes = nil

	require.NoError(t, e.Reload(slides(time.Second)))
	assert.Equal(t, 0, e.Index())
	assert.Zero(t, e.Elapsed())
	assert.Equal(t, [][2]int{{2, 0}}, changes)

	e.OnVisibilityChange(true)
	assert.False(t, e.Playing(), "pause made while hidden survives the reload")

	assert.ErrorIs(t, e.Reload(nil), deck.ErrNoSlides)
	assert.Equal(t, 1, e.Len(), "rejected reload leaves the slides alone")
}

func TestReload_ClampsElapsedToShorterSlide(t *testing.T) {
	clk := scheduler.NewManual()
	e, err := New(slides(2*time.Second), clk, Options{AutoPlay: true})
	require.NoError(t, err)
	clk.Advance(1500 * ms)
	e.Tick(clk.Now())

	require.NoError(t, e.Reload(slides(time.Second)))
	assert.Equal(t, time.Second, e.Elapsed())
}
