package director

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/slideshow/internal/deck"
)

// QRSize is the edge length of generated QR images in pixels.
const QRSize = 512

// QRSlide writes a QR code for url into dir and returns a closing slide
// showing it for the director's slide duration.
func (d *Director) QRSlide(url, dir string) (deck.Slide, error) {
	if url == "" {
		return deck.Slide{}, fmt.Errorf("qr slide needs a url")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return deck.Slide{}, err
	}
	file := filepath.Join(dir, "qr.png")
	if err := qrcode.WriteFile(url, qrcode.Medium, QRSize, file); err != nil {
		return deck.Slide{}, fmt.Errorf("encode qr: %w", err)
	}

	transition := d.Transition
	duration := max(d.SlideDuration, time.Second)
	return deck.Slide{
		ID:         "qr",
		Duration:   duration,
		Transition: &transition,
		Elements: []deck.Element{{
			ID:    "qr",
			Kind:  deck.KindQR,
			Start: 0,
			End:   duration,
			Style: map[string]any{"src": d.mediaURL(file), "url": url},
		}},
	}, nil
}
