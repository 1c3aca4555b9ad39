package deck

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSlides is returned for an empty slide list.
	ErrNoSlides = errors.New("deck has no slides")
	// ErrInvalidDuration is returned for a slide with a non-positive duration.
	ErrInvalidDuration = errors.New("slide duration must be positive")
	// ErrDuplicateElement is returned when two elements of a slide share an ID.
	ErrDuplicateElement = errors.New("duplicate element id")
	// ErrInvalidWindow is wrapped by WindowError.
	ErrInvalidWindow = errors.New("element timeline window out of bounds")
)

// WindowError reports an element whose window violates
// 0 <= start <= end <= slide duration.
type WindowError struct {
	SlideID   string
	ElementID string
	Element   Element
	Duration  int64 // ms
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("slide %q element %q: window [%dms, %dms] not within [0, %dms]",
		e.SlideID, e.ElementID, e.Element.Start.Milliseconds(), e.Element.End.Milliseconds(), e.Duration)
}

func (e *WindowError) Unwrap() error { return ErrInvalidWindow }

// Validate checks every slide and returns all problems joined together.
func Validate(slides []Slide) error {
	if len(slides) == 0 {
		return ErrNoSlides
	}

	var errs []error
	for i, s := range slides {
		if s.Duration <= 0 {
			errs = append(errs, fmt.Errorf("slide %d (%q): %w", i, s.ID, ErrInvalidDuration))
		}
		seen := make(map[string]struct{}, len(s.Elements))
		for _, el := range s.Elements {
			if _, dup := seen[el.ID]; dup {
				errs = append(errs, fmt.Errorf("slide %q element %q: %w", s.ID, el.ID, ErrDuplicateElement))
			}
			seen[el.ID] = struct{}{}

			if el.Start < 0 || el.Start > el.End || el.End > s.Duration {
				errs = append(errs, &WindowError{
					SlideID:   s.ID,
					ElementID: el.ID,
					Element:   el,
					Duration:  s.Duration.Milliseconds(),
				})
			}
		}
	}
	return errors.Join(errs...)
}

// Validate checks the deck's slides.
func (d *Deck) Validate() error {
	return Validate(d.Slides)
}
