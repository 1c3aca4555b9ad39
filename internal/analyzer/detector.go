package analyzer

import (
	"image"
	"sort"

	"github.com/ivlev/slideshow/internal/deck"
)

// Region is a block of content found on a page.
type Region struct {
	Rect       image.Rectangle
	Kind       deck.ElementKind
	Confidence float64 // 0..1
}

// Detector finds content regions on a rendered page.
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}

// ReadingOrder sorts regions top to bottom, then left to right. Regions
// whose tops are within tolerance pixels share a row.
func ReadingOrder(regions []Region, tolerance int) {
	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i].Rect.Min, regions[j].Rect.Min
		if abs(a.Y-b.Y) > tolerance {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// classify guesses the element kind from a region's shape: wide, short
// blocks are lines of text; everything else is treated as an image.
func classify(r image.Rectangle) deck.ElementKind {
	w, h := r.Dx(), r.Dy()
	if h > 0 && w >= 4*h {
		return deck.KindText
	}
	return deck.KindImage
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
