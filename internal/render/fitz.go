package render

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzOpener opens documents with MuPDF through go-fitz.
type FitzOpener struct{}

// Open opens the PDF at path. The returned *fitz.Document is not safe for
// concurrent rendering; Rasterizer renders its pages sequentially.
func (FitzOpener) Open(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return doc, nil
}
