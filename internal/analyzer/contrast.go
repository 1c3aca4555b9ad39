package analyzer

import (
	"image"
	"image/color"
	"math"
)

// ContrastDetector finds regions by Sobel edge detection, dilation to join
// nearby strokes, and connected components.
type ContrastDetector struct {
	EdgeThreshold float64 // gradient magnitude
	Radius        int     // dilation radius in pixels
	MinArea       int     // smallest region kept, in pixels²
	RowTolerance  int     // regions whose tops differ by less share a row
}

// NewContrastDetector returns a detector tuned for slide pages.
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		EdgeThreshold: 30,
		Radius:        2,
		MinArea:       500,
		RowTolerance:  16,
	}
}

// Detect returns content regions in reading order.
func (d *ContrastDetector) Detect(img image.Image) ([]Region, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, nil
	}

	lum := luminance(img)
	edges := lum.sobel(d.EdgeThreshold)
	joined := edges.dilate(d.Radius)

	var regions []Region
	for _, r := range joined.components() {
		area := r.Dx() * r.Dy()
		if area < d.MinArea {
			continue
		}
		density := float64(edges.count(r)) / float64(area)
		r = r.Add(b.Min)
		regions = append(regions, Region{
			Rect:       r,
			Kind:       classify(r),
			Confidence: 0.5 + 0.5*math.Min(1, density*4),
		})
	}
	ReadingOrder(regions, d.RowTolerance)
	return regions, nil
}

// plane is a row-major grid of 8-bit luminance values with origin (0, 0).
type plane struct {
	w, h int
	pix  []uint8
}

// mask is a row-major grid of set pixels.
type mask struct {
	w, h int
	bits []bool
}

func luminance(img image.Image) plane {
	b := img.Bounds()
	p := plane{w: b.Dx(), h: b.Dy(), pix: make([]uint8, b.Dx()*b.Dy())}
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			p.pix[y*p.w+x] = g.Y
		}
	}
	return p
}

func (p plane) at(x, y int) float64 {
	return float64(p.pix[y*p.w+x])
}

// sobel marks pixels whose gradient magnitude exceeds threshold. The
// one-pixel border is never marked.
func (p plane) sobel(threshold float64) mask {
	m := mask{w: p.w, h: p.h, bits: make([]bool, p.w*p.h)}
	for y := 1; y < p.h-1; y++ {
		for x := 1; x < p.w-1; x++ {
			gx := p.at(x+1, y-1) + 2*p.at(x+1, y) + p.at(x+1, y+1) -
				p.at(x-1, y-1) - 2*p.at(x-1, y) - p.at(x-1, y+1)
			gy := p.at(x-1, y+1) + 2*p.at(x, y+1) + p.at(x+1, y+1) -
				p.at(x-1, y-1) - 2*p.at(x, y-1) - p.at(x+1, y-1)
			if math.Hypot(gx, gy) > threshold {
				m.bits[y*p.w+x] = true
			}
		}
	}
	return m
}

// dilate grows every set pixel into a (2r+1)² square, as two separable
// passes over prefix counts.
func (m mask) dilate(r int) mask {
	if r <= 0 {
		return m
	}
	horiz := make([]bool, len(m.bits))
	prefix := make([]int, m.w+1)
	for y := 0; y < m.h; y++ {
		row := m.bits[y*m.w : (y+1)*m.w]
		for x, set := range row {
			prefix[x+1] = prefix[x]
			if set {
				prefix[x+1]++
			}
		}
		for x := 0; x < m.w; x++ {
			lo, hi := max(0, x-r), min(m.w, x+r+1)
			horiz[y*m.w+x] = prefix[hi]-prefix[lo] > 0
		}
	}

	out := mask{w: m.w, h: m.h, bits: make([]bool, len(m.bits))}
	prefix = make([]int, m.h+1)
	for x := 0; x < m.w; x++ {
		for y := 0; y < m.h; y++ {
			prefix[y+1] = prefix[y]
			if horiz[y*m.w+x] {
				prefix[y+1]++
			}
		}
		for y := 0; y < m.h; y++ {
			lo, hi := max(0, y-r), min(m.h, y+r+1)
			out.bits[y*m.w+x] = prefix[hi]-prefix[lo] > 0
		}
	}
	return out
}

// components returns the bounding box of every 4-connected set region.
func (m mask) components() []image.Rectangle {
	seen := make([]bool, len(m.bits))
	var rects []image.Rectangle
	var stack []int

	for start, set := range m.bits {
		if !set || seen[start] {
			continue
		}
		minX, minY := m.w, m.h
		maxX, maxY := -1, -1
		stack = append(stack[:0], start)
		seen[start] = true

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%m.w, i/m.w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for _, n := range [4][2]int{{x + 1, y}, {x - 1, y}, {x, y + 1}, {x, y - 1}} {
				nx, ny := n[0], n[1]
				if nx < 0 || ny < 0 || nx >= m.w || ny >= m.h {
					continue
				}
				j := ny*m.w + nx
				if m.bits[j] && !seen[j] {
					seen[j] = true
					stack = append(stack, j)
				}
			}
		}
		rects = append(rects, image.Rect(minX, minY, maxX+1, maxY+1))
	}
	return rects
}

func (m mask) count(r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if m.bits[y*m.w+x] {
				n++
			}
		}
	}
	return n
}
