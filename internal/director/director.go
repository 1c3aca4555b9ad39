package director

import (
	"fmt"
	"image"
	"math"
	"path"
	"path/filepath"
	"time"

	"github.com/ivlev/slideshow/internal/analyzer"
	"github.com/ivlev/slideshow/internal/deck"
)

// Director turns analysed pages into timed slides. Each detected region
// becomes an element that appears in reading order and stays until the
// slide ends.
type Director struct {
	SlideDuration time.Duration
	Intro         time.Duration // background alone before the first element
	Outro         time.Duration // all elements shown together at the end
	MinDwell      time.Duration // gap between consecutive element entries
	MaxDwell      time.Duration
	MaxElements   int
	Transition    deck.Transition
	MediaPrefix   string // URL prefix for backgrounds
}

// NewDirector returns a director with the default pacing.
func NewDirector(slideDuration time.Duration) *Director {
	if slideDuration <= 0 {
		slideDuration = 5 * time.Second
	}
	return &Director{
		SlideDuration: slideDuration,
		Intro:         time.Second,
		Outro:         time.Second,
		MinDwell:      500 * time.Millisecond,
		MaxDwell:      2 * time.Second,
		MaxElements:   8,
		Transition:    deck.Transition{Type: deck.TransitionFade, Duration: 600 * time.Millisecond},
		MediaPrefix:   "/media",
	}
}

// Page is one exported page with the regions found on it.
type Page struct {
	Background string // file path of the exported image
	Width      int
	Height     int
	Regions    []analyzer.Region
}

// Build assembles a deck from pages in order.
func (d *Director) Build(title string, pages []Page) (*deck.Deck, error) {
	if len(pages) == 0 {
		return nil, deck.ErrNoSlides
	}
	out := &deck.Deck{Version: deck.Version, Title: title}
	for i, p := range pages {
		out.Slides = append(out.Slides, d.Slide(fmt.Sprintf("page-%d", i+1), p))
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Slide builds one slide. The slide is lengthened when its regions need
// more time than SlideDuration allows at MinDwell.
func (d *Director) Slide(id string, p Page) deck.Slide {
	regions := p.Regions
	if d.MaxElements > 0 && len(regions) > d.MaxElements {
		regions = regions[:d.MaxElements]
	}

	dwell := d.dwell(len(regions))
	duration := d.SlideDuration
	if need := d.Intro + time.Duration(len(regions))*dwell + d.Outro; need > duration {
		duration = need
	}

	transition := d.Transition
	slide := deck.Slide{
		ID:         id,
		Duration:   duration,
		Background: d.mediaURL(p.Background),
		Transition: &transition,
	}

	at := d.Intro
	for i, r := range regions {
		slide.Elements = append(slide.Elements, deck.Element{
			ID:    fmt.Sprintf("region-%d", i+1),
			Kind:  r.Kind,
			Start: at,
			End:   duration,
			Style: d.regionStyle(r.Rect, p.Width, p.Height),
		})
		at += dwell
	}
	return slide
}

// dwell spreads the time between intro and outro over n regions.
func (d *Director) dwell(n int) time.Duration {
	if n == 0 {
		return 0
	}
	available := d.SlideDuration - d.Intro - d.Outro
	if available <= 0 {
		available = d.SlideDuration
	}
	dwell := available / time.Duration(n)
	return min(max(dwell, d.MinDwell), d.MaxDwell)
}

// regionStyle places a region relative to the page, plus the zoom that
// would fit it into the viewport for a focus effect.
func (d *Director) regionStyle(r image.Rectangle, w, h int) map[string]any {
	style := map[string]any{"zoom": focusZoom(r, w, h)}
	if w > 0 && h > 0 {
		style["x"] = round3(float64(r.Min.X) / float64(w))
		style["y"] = round3(float64(r.Min.Y) / float64(h))
		style["w"] = round3(float64(r.Dx()) / float64(w))
		style["h"] = round3(float64(r.Dy()) / float64(h))
	}
	return style
}

func (d *Director) mediaURL(file string) string {
	if file == "" {
		return ""
	}
	return path.Join(d.MediaPrefix, filepath.Base(file))
}

// focusZoom fits block into 90% of the page, clamped to [1, 3].
func focusZoom(block image.Rectangle, w, h int) float64 {
	bw, bh := float64(block.Dx()), float64(block.Dy())
	if bw == 0 || bh == 0 || w == 0 || h == 0 {
		return 1
	}
	zoom := math.Min(float64(w)*0.9/bw, float64(h)*0.9/bh)
	return round3(math.Max(1, math.Min(3, zoom)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
