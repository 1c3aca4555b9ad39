package source

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/slideshow/internal/logger"
)

// DefaultDPI is used for PDF rasterisation when none is given.
const DefaultDPI = 150

// ExportOptions controls page export.
type ExportOptions struct {
	DPI      int
	MaxWidth int // pages wider than this are downscaled; 0 keeps the size
	Workers  int // defaults to the number of CPUs
	// Inspect sees every exported page before it is written. It runs on
	// the worker goroutines and must not retain img.
	Inspect func(index int, img image.Image) error
}

// Page is one exported background image.
type Page struct {
	Index  int
	Path   string
	Width  int
	Height int
}

// Export renders every page of src into dir as page_NNN.png.
func Export(ctx context.Context, src Source, dir string, opts ExportOptions) ([]Page, error) {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	n := src.Pages()
	pages := make([]Page, n)
	canvases := newCanvasPool(opts.Workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			page, err := exportPage(src, i, dir, opts, canvases)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("pages exported", logger.Int("pages", n), logger.String("dir", dir))
	return pages, nil
}

func exportPage(src Source, index int, dir string, opts ExportOptions, canvases *canvasPool) (Page, error) {
	img, err := src.Render(index, opts.DPI)
	if err != nil {
		return Page{}, err
	}

	scaled, canvas := downscale(img, opts.MaxWidth, canvases)
	if canvas != nil {
		defer canvases.put(canvas)
	}

	if opts.Inspect != nil {
		if err := opts.Inspect(index, scaled); err != nil {
			return Page{}, err
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("page_%03d.png", index+1))
	if err := writePNG(path, scaled); err != nil {
		return Page{}, err
	}

	b := scaled.Bounds()
	logger.Debug("page exported", logger.Int("page", index+1), logger.Int("width", b.Dx()), logger.Int("height", b.Dy()))
	return Page{Index: index, Path: path, Width: b.Dx(), Height: b.Dy()}, nil
}

// downscale fits img into maxWidth keeping its aspect ratio. The second
// result is the canvas to hand back once the image is no longer used.
func downscale(img image.Image, maxWidth int, canvases *canvasPool) (image.Image, *image.RGBA) {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img, nil
	}
	size := image.Pt(maxWidth, max(1, b.Dy()*maxWidth/b.Dx()))
	dst := canvases.get(size)
	draw.CatmullRom.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst, dst
}

// canvasPool keeps scaled page canvases for reuse within one export. Pages
// of a deck usually share a size, so each worker ends up reusing a single
// canvas. At most limit canvases per size are kept.
type canvasPool struct {
	mu    sync.Mutex
	limit int
	free  map[image.Point][]*image.RGBA
}

func newCanvasPool(limit int) *canvasPool {
	return &canvasPool{limit: max(1, limit), free: make(map[image.Point][]*image.RGBA)}
}

// get returns a canvas of the given size. Its pixels are stale; callers
// overwrite every one of them.
func (p *canvasPool) get(size image.Point) *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	if list := p.free[size]; len(list) > 0 {
		img := list[len(list)-1]
		p.free[size] = list[:len(list)-1]
		return img
	}
	return image.NewRGBA(image.Rectangle{Max: size})
}

func (p *canvasPool) put(img *image.RGBA) {
	size := img.Rect.Size()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free[size]) < p.limit {
		p.free[size] = append(p.free[size], img)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
