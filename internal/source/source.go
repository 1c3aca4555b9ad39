package source

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/slideshow/internal/system"
)

// Source yields the pages a deck is authored from.
type Source interface {
	Pages() int
	Size(index int) (width, height int, err error)
	Render(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a source by path: a PDF file, a single image or a directory
// of images.
func Open(path string) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewPDF(path)
	}
	return NewImages(path)
}

// PDF renders pages of a PDF document through MuPDF.
type PDF struct {
	doc  *fitz.Document
	path string
}

// NewPDF opens a PDF document.
func NewPDF(path string) (*PDF, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &PDF{doc: doc, path: path}, nil
}

func (p *PDF) Pages() int {
	return p.doc.NumPage()
}

func (p *PDF) Size(index int) (int, int, error) {
	rect, err := p.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return rect.Dx(), rect.Dy(), nil
}

// Render opens its own document handle so pages can be rendered from
// several goroutines; a fitz.Document is not safe for concurrent use.
func (p *PDF) Render(index int, dpi int) (image.Image, error) {
	doc, err := fitz.New(p.path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.ImageDPI(index, float64(dpi))
}

func (p *PDF) Close() error {
	return p.doc.Close()
}

// Images serves image files as pages, sorted by name.
type Images struct {
	paths []string
}

// NewImages lists the images in a directory, or wraps a single file.
func NewImages(path string) (*Images, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return &Images{paths: []string{path}}, nil
	}

	paths, err := system.ListFiles(path, system.ImageExtensions...)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images in %s", path)
	}
	return &Images{paths: paths}, nil
}

func (s *Images) Pages() int {
	return len(s.paths)
}

func (s *Images) Size(index int) (int, int, error) {
	if err := s.check(index); err != nil {
		return 0, 0, err
	}
	f, err := os.Open(s.paths[index])
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", s.paths[index], err)
	}
	return cfg.Width, cfg.Height, nil
}

// Render decodes the image; dpi is ignored.
func (s *Images) Render(index int, _ int) (image.Image, error) {
	if err := s.check(index); err != nil {
		return nil, err
	}
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.paths[index], err)
	}
	return img, nil
}

func (s *Images) Close() error {
	return nil
}

func (s *Images) check(index int) error {
	if index < 0 || index >= len(s.paths) {
		return fmt.Errorf("page %d out of range [0, %d)", index, len(s.paths))
	}
	return nil
}
