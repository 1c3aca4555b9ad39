package director

import (
	"context"
	"image"

	"github.com/ivlev/slideshow/internal/analyzer"
	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/logger"
	"github.com/ivlev/slideshow/internal/source"
)

// BuildOptions configures FromSource.
type BuildOptions struct {
	Title    string
	MediaDir string
	Export   source.ExportOptions
	Detector analyzer.Detector // nil produces background-only slides
	QRURL    string            // appends a QR slide when set
}

// FromSource exports every page of src, detects regions on each page and
// builds the deck.
func (d *Director) FromSource(ctx context.Context, src source.Source, opts BuildOptions) (*deck.Deck, error) {
	regions := make([][]analyzer.Region, src.Pages())

	export := opts.Export
	if opts.Detector != nil {
		export.Inspect = func(index int, img image.Image) error {
			found, err := opts.Detector.Detect(img)
			if err != nil {
				return err
			}
			regions[index] = found
			return nil
		}
	}

	exported, err := source.Export(ctx, src, opts.MediaDir, export)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, len(exported))
	for i, p := range exported {
		pages[i] = Page{Background: p.Path, Width: p.Width, Height: p.Height, Regions: regions[i]}
		logger.Debug("page analysed", logger.Int("page", i+1), logger.Int("regions", len(regions[i])))
	}

	out, err := d.Build(opts.Title, pages)
	if err != nil {
		return nil, err
	}

	if opts.QRURL != "" {
		qr, err := d.QRSlide(opts.QRURL, opts.MediaDir)
		if err != nil {
			return nil, err
		}
		out.Slides = append(out.Slides, qr)
	}

	logger.Info("deck built", logger.Int("slides", len(out.Slides)), logger.Duration("total", out.TotalDuration()))
	return out, nil
}
