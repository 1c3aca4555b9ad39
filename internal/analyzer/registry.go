package analyzer

import (
	"fmt"
	"image"
)

// NewDetector returns the detector registered under name.
func NewDetector(name string) (Detector, error) {
	switch name {
	case "contrast", "":
		return NewContrastDetector(), nil
	case "none":
		return noneDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown detector %q", name)
	}
}

// noneDetector finds nothing, producing background-only slides.
type noneDetector struct{}

func (noneDetector) Detect(image.Image) ([]Region, error) { return nil, nil }
