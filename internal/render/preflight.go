package render

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Preflight parses the PDF structure with pdfcpu and returns its page count.
// It catches corrupt or non-PDF input before the renderer is involved.
func Preflight(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &DocumentError{Path: path, Page: -1, Err: err}
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, &DocumentError{Path: path, Page: -1, Err: fmt.Errorf("pdf preflight: %w", err)}
	}
	return count, nil
}
