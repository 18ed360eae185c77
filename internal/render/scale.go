package render

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// dpiFor returns the render density that fits a page of the given point size
// inside maxW x maxH pixels while keeping its aspect ratio.
func dpiFor(bounds image.Rectangle, maxW, maxH int) (float64, error) {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("invalid page size %dx%d", w, h)
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return pointsPerInch * scale, nil
}

// fit downsamples img when rounding in the renderer left it larger than the bound.
func fit(img *image.RGBA, maxW, maxH int) *image.RGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= maxW && h <= maxH {
		return img
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// flatten composites img over white into a new opaque buffer anchored at (0,0).
func flatten(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
