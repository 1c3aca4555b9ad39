package analyzer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/slideshow/internal/deck"
)

func page(w, h int, blocks ...image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for _, r := range blocks {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestContrastDetector_SingleBlock(t *testing.T) {
	img := page(200, 200, image.Rect(50, 50, 150, 150))

	regions, err := NewContrastDetector().Detect(img)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0].Rect
	assert.InDelta(t, 50, r.Min.X, 5)
	assert.InDelta(t, 50, r.Min.Y, 5)
	assert.InDelta(t, 150, r.Max.X, 5)
	assert.InDelta(t, 150, r.Max.Y, 5)
	assert.Equal(t, deck.KindImage, regions[0].Kind)
	assert.Greater(t, regions[0].Confidence, 0.5)
	assert.LessOrEqual(t, regions[0].Confidence, 1.0)
}

func TestContrastDetector_ReadingOrderAndKinds(t *testing.T) {
	img := page(240, 200,
		image.Rect(40, 120, 90, 170), // picture, lower
		image.Rect(20, 20, 180, 30),  // headline, top
	)

	regions, err := NewContrastDetector().Detect(img)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, deck.KindText, regions[0].Kind, "headline first")
	assert.Less(t, regions[0].Rect.Min.Y, 30)
	assert.Equal(t, deck.KindImage, regions[1].Kind)
}

func TestContrastDetector_IgnoresNoiseAndBlankPages(t *testing.T) {
	d := NewContrastDetector()

	regions, err := d.Detect(page(100, 100))
	require.NoError(t, err)
	assert.Empty(t, regions)

	regions, err = d.Detect(page(100, 100, image.Rect(40, 40, 43, 43)))
	require.NoError(t, err)
	assert.Empty(t, regions, "speck below MinArea")
}

func TestContrastDetector_OffsetBounds(t *testing.T) {
	img := page(300, 300, image.Rect(150, 150, 250, 250))
	sub := img.SubImage(image.Rect(100, 100, 300, 300))

	regions, err := NewContrastDetector().Detect(sub)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.InDelta(t, 150, regions[0].Rect.Min.X, 5, "rect in source coordinates")
}

func TestReadingOrder(t *testing.T) {
	regions := []Region{
		{Rect: image.Rect(100, 105, 150, 150)},
		{Rect: image.Rect(0, 300, 50, 350)},
		{Rect: image.Rect(0, 100, 50, 150)},
	}
	ReadingOrder(regions, 10)
	assert.Equal(t, 0, regions[0].Rect.Min.X)
	assert.Equal(t, 100, regions[1].Rect.Min.X, "same row, further right")
	assert.Equal(t, 300, regions[2].Rect.Min.Y)
}

func TestNewDetector(t *testing.T) {
	d, err := NewDetector("")
	require.NoError(t, err)
	assert.IsType(t, &ContrastDetector{}, d)

	d, err = NewDetector("none")
	require.NoError(t, err)
	regions, err := d.Detect(page(10, 10))
	assert.NoError(t, err)
	assert.Nil(t, regions)

	_, err = NewDetector("ocr")
	assert.Error(t, err)
}
