// Package render rasterizes PDF pages into bounded RGB images.
package render

import (
	"context"
	"fmt"
	"image"
	"iter"
	"log/slog"
	"sync/atomic"
)

const (
	// DefaultMaxWidth is the default target width of a rendered page.
	DefaultMaxWidth = 1024

	// DefaultMaxHeight is the default maximum height of a rendered page.
	DefaultMaxHeight = 1024

	// pointsPerInch is the native PDF unit density reported by Document.Bound.
	pointsPerInch = 72.0
)

// Document is an open paginated document.
// *fitz.Document satisfies it directly.
type Document interface {
	NumPage() int
	Bound(page int) (image.Rectangle, error)
	ImageDPI(page int, dpi float64) (*image.RGBA, error)
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(path string) (Document, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (Document, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Document, error) {
	return f(path)
}

// Page is one rendered page. The image is fully opaque.
type Page struct {
	Index int
	Image *image.RGBA
}

// Config configures a Rasterizer.
type Config struct {
	MaxWidth  int
	MaxHeight int
	Opener    Opener // defaults to FitzOpener
	Logger    *slog.Logger
}

// Rasterizer renders every page of a document at a bounded resolution.
type Rasterizer struct {
	maxWidth  int
	maxHeight int
	opener    Opener
	logger    *slog.Logger
}

// NewRasterizer creates a Rasterizer, filling unset fields with defaults.
func NewRasterizer(cfg Config) *Rasterizer {
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = DefaultMaxWidth
	}
	if cfg.MaxHeight <= 0 {
		cfg.MaxHeight = DefaultMaxHeight
	}
	if cfg.Opener == nil {
		cfg.Opener = FitzOpener{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Rasterizer{
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
		opener:    cfg.Opener,
		logger:    cfg.Logger,
	}
}

// Pages returns a lazy sequence of the document's pages in ascending order.
//
// The document is opened on first iteration and closed when iteration ends.
// The first failure is yielded as a *DocumentError and ends the sequence;
// later pages are never rendered. The sequence can be iterated only once.
func (r *Rasterizer) Pages(ctx context.Context, path string) iter.Seq2[Page, error] {
	var used atomic.Bool
	return func(yield func(Page, error) bool) {
		if used.Swap(true) {
			yield(Page{}, &DocumentError{Path: path, Page: -1, Err: ErrConsumed})
			return
		}

		doc, err := r.opener.Open(path)
		if err != nil {
			yield(Page{}, &DocumentError{Path: path, Page: -1, Err: err})
			return
		}
		defer func() {
			if err := doc.Close(); err != nil {
				r.logger.Warn("render.close_error", "path", path, "error", err)
			}
		}()

		count := doc.NumPage()
		r.logger.Debug("render.open", "path", path, "pages", count)

		for i := 0; i < count; i++ {
			if err := ctx.Err(); err != nil {
				yield(Page{}, &DocumentError{Path: path, Page: i, Err: err})
				return
			}
			img, err := r.renderPage(doc, i)
			if err != nil {
				yield(Page{}, &DocumentError{Path: path, Page: i, Err: err})
				return
			}
			if !yield(Page{Index: i, Image: img}, nil) {
				return
			}
		}
	}
}

// All renders every page and returns them in order, or the first error.
func (r *Rasterizer) All(ctx context.Context, path string) ([]Page, error) {
	var pages []Page
	for page, err := range r.Pages(ctx, path) {
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (r *Rasterizer) renderPage(doc Document, index int) (*image.RGBA, error) {
	bounds, err := doc.Bound(index)
	if err != nil {
		return nil, fmt.Errorf("page bounds: %w", err)
	}
	dpi, err := dpiFor(bounds, r.maxWidth, r.maxHeight)
	if err != nil {
		return nil, err
	}

	img, err := doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, fmt.Errorf("render at %.1f dpi: %w", dpi, err)
	}

	out := flatten(fit(img, r.maxWidth, r.maxHeight))
	r.logger.Debug("render.page",
		"page", index,
		"dpi", dpi,
		"width", out.Bounds().Dx(),
		"height", out.Bounds().Dy(),
	)
	return out, nil
}
