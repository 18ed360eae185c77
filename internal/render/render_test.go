package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// fakeDoc renders each page as a solid color sized from its point bounds.
type fakeDoc struct {
	pages   []image.Rectangle
	failAt  int // -1 = never
	closed  bool
	renders []int
	// overshoot adds pixels to every render to exercise the downscale path
	overshoot int
}

func (d *fakeDoc) NumPage() int { return len(d.pages) }

func (d *fakeDoc) Bound(page int) (image.Rectangle, error) {
	return d.pages[page], nil
}

func (d *fakeDoc) ImageDPI(page int, dpi float64) (*image.RGBA, error) {
	d.renders = append(d.renders, page)
	if page == d.failAt {
		return nil, errors.New("corrupt content stream")
	}
	b := d.pages[page]
	w := int(math.Round(float64(b.Dx())*dpi/pointsPerInch)) + d.overshoot
	h := int(math.Round(float64(b.Dy())*dpi/pointsPerInch)) + d.overshoot
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{R: uint8(page * 40), G: 100, B: 200, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func letterPages(n int) []image.Rectangle {
	pages := make([]image.Rectangle, n)
	for i := range pages {
		pages[i] = image.Rect(0, 0, 612, 792) // US Letter in points
	}
	return pages
}

func newTestRasterizer(doc *fakeDoc) *Rasterizer {
	return NewRasterizer(Config{
		Opener: OpenerFunc(func(string) (Document, error) { return doc, nil }),
	})
}

func TestRasterizer_PagesInOrder(t *testing.T) {
	doc := &fakeDoc{pages: letterPages(3), failAt: -1}
	r := newTestRasterizer(doc)

	pages, err := r.All(context.Background(), "report.pdf")
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	for i, p := range pages {
		if p.Index != i {
			t.Errorf("pages[%d].Index = %d", i, p.Index)
		}
		b := p.Image.Bounds()
		if b.Dx() > DefaultMaxWidth || b.Dy() > DefaultMaxHeight {
			t.Errorf("page %d is %dx%d, exceeds bound", i, b.Dx(), b.Dy())
		}
		// portrait letter is height-bound
		if b.Dy() != DefaultMaxHeight {
			t.Errorf("page %d height = %d, want %d", i, b.Dy(), DefaultMaxHeight)
		}
	}
	if !doc.closed {
		t.Error("document was not closed")
	}
}

func TestRasterizer_DownscalesOvershoot(t *testing.T) {
	doc := &fakeDoc{pages: []image.Rectangle{image.Rect(0, 0, 1000, 1000)}, failAt: -1, overshoot: 7}
	r := NewRasterizer(Config{
		MaxWidth:  200,
		MaxHeight: 300,
		Opener:    OpenerFunc(func(string) (Document, error) { return doc, nil }),
	})

	pages, err := r.All(context.Background(), "square.pdf")
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	b := pages[0].Image.Bounds()
	if b.Dx() > 200 || b.Dy() > 300 {
		t.Fatalf("page is %dx%d, want within 200x300", b.Dx(), b.Dy())
	}
	if b.Min != (image.Point{}) {
		t.Errorf("image origin = %v, want (0,0)", b.Min)
	}
}

func TestRasterizer_OutputIsOpaque(t *testing.T) {
	doc := &transparentDoc{}
	r := NewRasterizer(Config{
		MaxWidth:  10,
		MaxHeight: 10,
		Opener:    OpenerFunc(func(string) (Document, error) { return doc, nil }),
	})
	pages, err := r.All(context.Background(), "clear.pdf")
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	got := pages[0].Image.RGBAAt(0, 0)
	if got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("transparent pixel flattened to %v, want white", got)
	}
}

type transparentDoc struct{}

func (transparentDoc) NumPage() int { return 1 }
func (transparentDoc) Bound(int) (image.Rectangle, error) {
	return image.Rect(0, 0, 72, 72), nil
}
func (transparentDoc) ImageDPI(int, float64) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil
}
func (transparentDoc) Close() error { return nil }

func TestRasterizer_FailFast(t *testing.T) {
	doc := &fakeDoc{pages: letterPages(4), failAt: 1}
	r := newTestRasterizer(doc)

	var got []int
	var gotErr error
	for page, err := range r.Pages(context.Background(), "bad.pdf") {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, page.Index)
	}

	var docErr *DocumentError
	if !errors.As(gotErr, &docErr) {
		t.Fatalf("expected *DocumentError, got %v", gotErr)
	}
	if docErr.Page != 1 {
		t.Errorf("DocumentError.Page = %d, want 1", docErr.Page)
	}
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("pages before failure = %v, want [0]", got)
	}
	for _, p := range doc.renders {
		if p > 1 {
			t.Errorf("page %d rendered after failure", p)
		}
	}
	if !doc.closed {
		t.Error("document was not closed after failure")
	}
}

func TestRasterizer_OpenFailure(t *testing.T) {
	r := NewRasterizer(Config{
		Opener: OpenerFunc(func(string) (Document, error) { return nil, errors.New("not a pdf") }),
	})

	_, err := r.All(context.Background(), "missing.pdf")
	var docErr *DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected *DocumentError, got %v", err)
	}
	if docErr.Page != -1 {
		t.Errorf("DocumentError.Page = %d, want -1", docErr.Page)
	}
}

func TestRasterizer_NotRestartable(t *testing.T) {
	doc := &fakeDoc{pages: letterPages(2), failAt: -1}
	r := newTestRasterizer(doc)
	seq := r.Pages(context.Background(), "once.pdf")

	for _, err := range seq {
		if err != nil {
			t.Fatalf("first iteration error = %v", err)
		}
	}

	var second error
	for _, err := range seq {
		second = err
	}
	if !errors.Is(second, ErrConsumed) {
		t.Fatalf("second iteration error = %v, want ErrConsumed", second)
	}
}

func TestRasterizer_EarlyBreakCloses(t *testing.T) {
	doc := &fakeDoc{pages: letterPages(5), failAt: -1}
	r := newTestRasterizer(doc)

	for range r.Pages(context.Background(), "five.pdf") {
		break
	}
	if !doc.closed {
		t.Error("document was not closed after early break")
	}
	if len(doc.renders) != 1 {
		t.Errorf("rendered %d pages, want 1", len(doc.renders))
	}
}

func TestRasterizer_ContextCancelled(t *testing.T) {
	doc := &fakeDoc{pages: letterPages(2), failAt: -1}
	r := newTestRasterizer(doc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.All(ctx, "cancelled.pdf")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestDPIFor(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		want   float64
	}{
		{"letter portrait", image.Rect(0, 0, 612, 792), 72.0 * 1024.0 / 792.0},
		{"landscape", image.Rect(0, 0, 792, 612), 72.0 * 1024.0 / 792.0},
		{"small square", image.Rect(0, 0, 512, 512), 144.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dpiFor(tt.bounds, 1024, 1024)
			if err != nil {
				t.Fatalf("dpiFor() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("dpiFor() = %f, want %f", got, tt.want)
			}
		})
	}

	if _, err := dpiFor(image.Rectangle{}, 1024, 1024); err == nil {
		t.Error("expected error for empty bounds")
	}
}

func TestPreflight(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Preflight(filepath.Join(t.TempDir(), "nope.pdf"))
		var docErr *DocumentError
		if !errors.As(err, &docErr) || docErr.Page != -1 {
			t.Fatalf("expected open-level DocumentError, got %v", err)
		}
	})

	t.Run("not a pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.pdf")
		if err := os.WriteFile(path, []byte("plain text, not a PDF"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Preflight(path)
		var docErr *DocumentError
		if !errors.As(err, &docErr) {
			t.Fatalf("expected *DocumentError, got %v", err)
		}
	})
}
