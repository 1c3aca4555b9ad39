package deck

import "time"

// Version is written into every deck file produced by this tool.
const Version = "1.0"

// Deck is the on-disk description of a slideshow.
type Deck struct {
	Version string  `yaml:"version" json:"version"`
	Title   string  `yaml:"title,omitempty" json:"title,omitempty"`
	Slides  []Slide `yaml:"slides" json:"slides"`
}

// Slide is one entry of the fixed ordered sequence. Slides are immutable
// once handed to the engine.
type Slide struct {
	ID         string        `yaml:"id" json:"id"`
	Duration   time.Duration `yaml:"duration" json:"duration"`
	Background string        `yaml:"background,omitempty" json:"background,omitempty"`
	Elements   []Element     `yaml:"elements,omitempty" json:"elements,omitempty"`
	Transition *Transition   `yaml:"transition,omitempty" json:"transition,omitempty"`
}

// ElementKind names what an element renders as.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindImage ElementKind = "image"
	KindShape ElementKind = "shape"
	KindVideo ElementKind = "video"
	KindQR    ElementKind = "qr"
)

// Element is a layer of a slide, visible during its timeline window.
// Start and End are offsets from the beginning of the slide's active period.
type Element struct {
	ID    string         `yaml:"id" json:"id"`
	Kind  ElementKind    `yaml:"kind,omitempty" json:"kind,omitempty"`
	Start time.Duration  `yaml:"start" json:"start"`
	End   time.Duration  `yaml:"end" json:"end"`
	Style map[string]any `yaml:"style,omitempty" json:"style,omitempty"` // opaque to the engine
}

// TransitionType selects how a renderer animates between slides.
type TransitionType string

const (
	TransitionNone  TransitionType = "none"
	TransitionFade  TransitionType = "fade"
	TransitionSlide TransitionType = "slide"
	TransitionZoom  TransitionType = "zoom"
)

// Transition describes the enter animation of a slide.
type Transition struct {
	Type     TransitionType `yaml:"type" json:"type"`
	Duration time.Duration  `yaml:"duration" json:"duration"`
}

// ActiveAt reports whether the element's window contains elapsed.
// Both bounds are inclusive.
func (e Element) ActiveAt(elapsed time.Duration) bool {
	return e.Start <= elapsed && elapsed <= e.End
}

// TransitionDuration returns the slide's own transition duration, or
// fallback when the slide does not declare one.
func (s Slide) TransitionDuration(fallback time.Duration) time.Duration {
	if s.Transition == nil {
		return fallback
	}
	if s.Transition.Type == TransitionNone {
		return 0
	}
	return s.Transition.Duration
}

// TotalDuration sums the display durations of all slides.
func (d *Deck) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range d.Slides {
		total += s.Duration
	}
	return total
}
