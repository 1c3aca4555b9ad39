package director

import (
	"fmt"
	"math"
	"time"

	"github.com/ivlev/slideshow/internal/deck"
)

// FitDuration rescales every slide, and the element windows inside it, so
// the deck plays for exactly total. Durations are rounded to milliseconds;
// the last slide absorbs the rounding remainder. On error d is unchanged.
func FitDuration(d *deck.Deck, total time.Duration) error {
	current := d.TotalDuration()
	if total <= 0 || current <= 0 {
		return fmt.Errorf("cannot fit %s deck into %s", current, total)
	}
	factor := float64(total) / float64(current)

	slides := make([]deck.Slide, len(d.Slides))
	var used time.Duration
	last := len(slides) - 1
	for i, src := range d.Slides {
		s := src
		if i == last {
			s.Duration = total - used
		} else {
			s.Duration = scaleMs(src.Duration, factor)
		}
		if s.Duration <= 0 {
			return fmt.Errorf("slide %q would have no time left", s.ID)
		}
		used += s.Duration

		s.Elements = make([]deck.Element, len(src.Elements))
		for j, el := range src.Elements {
			el.Start = min(scaleMs(el.Start, factor), s.Duration)
			if el.End == src.Duration {
				el.End = s.Duration
			} else {
				el.End = min(scaleMs(el.End, factor), s.Duration)
			}
			s.Elements[j] = el
		}
		slides[i] = s
	}
	if err := deck.Validate(slides); err != nil {
		return err
	}
	d.Slides = slides
	return nil
}

func scaleMs(d time.Duration, factor float64) time.Duration {
	ms := math.Round(float64(d.Milliseconds()) * factor)
	return time.Duration(ms) * time.Millisecond
}
