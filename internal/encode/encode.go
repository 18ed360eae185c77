// Package encode serializes rendered pages to PNG and transport-safe text.
package encode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/soilextract/soilextract/internal/render"
)

// MediaType is the MIME type of every encoded page.
const MediaType = "image/png"

// EncodingError reports a failure to serialize a page image.
type EncodingError struct {
	Page int
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode page %d: %v", e.Page, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// PageImage is one encoded page. Data holds PNG bytes.
type PageImage struct {
	Index  int
	Width  int
	Height int
	Data   []byte
}

// Base64 returns the standard base64 encoding of the PNG bytes.
func (p PageImage) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// DataURI returns the page as a data:image/png;base64 URI.
func (p PageImage) DataURI() string {
	return "data:" + MediaType + ";base64," + p.Base64()
}

// Encoder writes pages as PNG. PNG is lossless, so digits and table rules
// survive exactly as rendered.
type Encoder struct {
	enc png.Encoder
}

// NewEncoder returns an Encoder using the given compression level.
// Unknown levels fall back to png.DefaultCompression.
func NewEncoder(level png.CompressionLevel) *Encoder {
	switch level {
	case png.DefaultCompression, png.NoCompression, png.BestSpeed, png.BestCompression:
	default:
		level = png.DefaultCompression
	}
	return &Encoder{enc: png.Encoder{CompressionLevel: level}}
}

// Encode serializes one rendered page.
func (e *Encoder) Encode(page render.Page) (PageImage, error) {
	if page.Image == nil {
		return PageImage{}, &EncodingError{Page: page.Index, Err: fmt.Errorf("nil image")}
	}
	var buf bytes.Buffer
	if err := e.enc.Encode(&buf, page.Image); err != nil {
		return PageImage{}, &EncodingError{Page: page.Index, Err: err}
	}
	b := page.Image.Bounds()
	return PageImage{
		Index:  page.Index,
		Width:  b.Dx(),
		Height: b.Dy(),
		Data:   buf.Bytes(),
	}, nil
}

// Decode parses PNG bytes produced by Encode.
func Decode(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// ParseCompression maps a config name to a PNG compression level.
func ParseCompression(name string) png.CompressionLevel {
	switch name {
	case "none":
		return png.NoCompression
	case "speed", "fast":
		return png.BestSpeed
	case "best":
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}
