package renderer

import (
	"time"

	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/engine"
)

// DefaultElementFade is how long an element takes to fade in and out at the
// edges of its timeline window.
const DefaultElementFade = 300 * time.Millisecond

// View is what a front end needs to draw one frame.
type View struct {
	SlideID    string        `json:"slideId"`
	Index      int           `json:"index"`
	Count      int           `json:"count"`
	Background string        `json:"background,omitempty"`
	Opacity    float64       `json:"opacity"`
	TranslateX float64       `json:"translateX"` // fraction of the viewport width
	Scale      float64       `json:"scale"`
	Progress   float64       `json:"progress"` // elapsed / duration
	Playing    bool          `json:"playing"`
	Elements   []ElementView `json:"elements"`
}

// ElementView is the render state of one element.
type ElementView struct {
	ID      string           `json:"id"`
	Kind    deck.ElementKind `json:"kind,omitempty"`
	Active  bool             `json:"active"`
	Opacity float64          `json:"opacity"`
	Style   map[string]any   `json:"style,omitempty"`
}

// Render maps a slide and the engine frame onto concrete visual values.
// Styles are passed through untouched.
func Render(slide deck.Slide, f engine.Frame) View {
	v := View{
		SlideID:    slide.ID,
		Index:      f.Index,
		Count:      f.SlideCount,
		Background: slide.Background,
		Opacity:    1,
		Scale:      1,
		Progress:   ratio(f.Elapsed, f.Duration),
		Playing:    f.Playing,
	}

	p := easeInOutCubic(f.TransitionProgress)
	kind := deck.TransitionFade
	if slide.Transition != nil {
		kind = slide.Transition.Type
	}
	switch kind {
	case deck.TransitionFade:
		v.Opacity = p
	case deck.TransitionSlide:
		v.TranslateX = lerp(1, 0, p)
	case deck.TransitionZoom:
		v.Opacity = p
		v.Scale = lerp(0.8, 1, p)
	}

	active := make(map[string]bool, len(f.Active))
	for _, id := range f.Active {
		active[id] = true
	}

	v.Elements = make([]ElementView, 0, len(slide.Elements))
	for _, el := range slide.Elements {
		ev := ElementView{
			ID:     el.ID,
			Kind:   el.Kind,
			Active: active[el.ID],
			Style:  el.Style,
		}
		if ev.Active {
			ev.Opacity = elementOpacity(el, f.Elapsed)
		}
		v.Elements = append(v.Elements, ev)
	}
	return v
}

// elementOpacity fades an element in after Start and out before End. The
// fade shrinks for windows shorter than two fades.
func elementOpacity(el deck.Element, elapsed time.Duration) float64 {
	window := el.End - el.Start
	fade := DefaultElementFade
	if window < 2*fade {
		fade = window / 2
	}
	if fade <= 0 {
		return 1
	}
	in := easeInOutCubic(ratio(elapsed-el.Start, fade))
	out := easeInOutCubic(ratio(el.End-elapsed, fade))
	if out < in {
		return out
	}
	return in
}
