package engine

import (
	"time"

	"github.com/ivlev/slideshow/internal/deck"
)

// ActiveElements returns, in slide order, the IDs of elements whose window
// contains elapsed. It depends on nothing but its arguments, so a skipped
// tick can never leave an element active after its window closed.
func ActiveElements(slide deck.Slide, elapsed time.Duration) []string {
	var ids []string
	for _, el := range slide.Elements {
		if el.ActiveAt(elapsed) {
			ids = append(ids, el.ID)
		}
	}
	return ids
}

// diffActive splits the change between two active sets into the elements
// that left and the ones that entered, preserving input order.
func diffActive(prev, next []string) (exited, entered []string) {
	inNext := make(map[string]struct{}, len(next))
	for _, id := range next {
		inNext[id] = struct{}{}
	}
	inPrev := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		inPrev[id] = struct{}{}
		if _, ok := inNext[id]; !ok {
			exited = append(exited, id)
		}
	}
	for _, id := range next {
		if _, ok := inPrev[id]; !ok {
			entered = append(entered, id)
		}
	}
	return exited, entered
}
