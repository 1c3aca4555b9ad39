package preview

import (
	"time"

	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/engine"
	"github.com/ivlev/slideshow/internal/gesture"
	"github.com/ivlev/slideshow/internal/renderer"
)

// Message types exchanged over the websocket.
const (
	TypeFrame      = "frame"
	TypeError      = "error"
	TypeControl    = "control"
	TypeGoTo       = "goto"
	TypeSwipe      = "swipe"
	TypeVisibility = "visibility"
	TypeTouch      = "touch"
)

// Touch phases, mirroring touchstart/touchmove/touchend/touchcancel.
const (
	PhaseStart  = "start"
	PhaseMove   = "move"
	PhaseEnd    = "end"
	PhaseCancel = "cancel"
)

// Message is the websocket envelope in both directions.
type Message struct {
	Type      string         `json:"type"`
	Frame     *FrameJSON     `json:"frame,omitempty"`
	View      *renderer.View `json:"view,omitempty"`
	Op        string         `json:"op,omitempty"`
	Index     int            `json:"index,omitempty"`
	Start     *gesture.Point `json:"start,omitempty"`
	End       *gesture.Point `json:"end,omitempty"`
	Phase     string         `json:"phase,omitempty"`
	Point     *gesture.Point `json:"point,omitempty"`
	Visible   *bool          `json:"visible,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
}

// FrameJSON is engine.Frame with durations in milliseconds.
type FrameJSON struct {
	Index              int      `json:"index"`
	SlideID            string   `json:"slideId"`
	SlideCount         int      `json:"slideCount"`
	ElapsedMs          int64    `json:"elapsedMs"`
	DurationMs         int64    `json:"durationMs"`
	Active             []string `json:"active"`
	Playing            bool     `json:"playing"`
	Visible            bool     `json:"visible"`
	InTransition       bool     `json:"inTransition"`
	TransitionProgress float64  `json:"transitionProgress"`
}

func frameJSON(f engine.Frame) *FrameJSON {
	active := f.Active
	if active == nil {
		active = []string{}
	}
	return &FrameJSON{
		Index:              f.Index,
		SlideID:            f.SlideID,
		SlideCount:         f.SlideCount,
		ElapsedMs:          f.Elapsed.Milliseconds(),
		DurationMs:         f.Duration.Milliseconds(),
		Active:             active,
		Playing:            f.Playing,
		Visible:            f.Visible,
		InTransition:       f.InTransition,
		TransitionProgress: f.TransitionProgress,
	}
}

// DeckJSON is the deck as served by GET /api/deck.
type DeckJSON struct {
	Title   string      `json:"title,omitempty"`
	TotalMs int64       `json:"totalMs"`
	Slides  []SlideJSON `json:"slides"`
}

type SlideJSON struct {
	ID           string        `json:"id"`
	DurationMs   int64         `json:"durationMs"`
	Background   string        `json:"background,omitempty"`
	Transition   string        `json:"transition,omitempty"`
	TransitionMs int64         `json:"transitionMs,omitempty"`
	Elements     []ElementJSON `json:"elements"`
}

type ElementJSON struct {
	ID      string           `json:"id"`
	Kind    deck.ElementKind `json:"kind,omitempty"`
	StartMs int64            `json:"startMs"`
	EndMs   int64            `json:"endMs"`
	Style   map[string]any   `json:"style,omitempty"`
}

func deckJSON(d *deck.Deck, fallback time.Duration) DeckJSON {
	out := DeckJSON{Title: d.Title, TotalMs: d.TotalDuration().Milliseconds(), Slides: make([]SlideJSON, 0, len(d.Slides))}
	for _, s := range d.Slides {
		sj := SlideJSON{
			ID:           s.ID,
			DurationMs:   s.Duration.Milliseconds(),
			Background:   s.Background,
			TransitionMs: s.TransitionDuration(fallback).Milliseconds(),
			Elements:     make([]ElementJSON, 0, len(s.Elements)),
		}
		if s.Transition != nil {
			sj.Transition = string(s.Transition.Type)
		}
		for _, el := range s.Elements {
			sj.Elements = append(sj.Elements, ElementJSON{
				ID:      el.ID,
				Kind:    el.Kind,
				StartMs: el.Start.Milliseconds(),
				EndMs:   el.End.Milliseconds(),
				Style:   el.Style,
			})
		}
		out.Slides = append(out.Slides, sj)
	}
	return out
}
