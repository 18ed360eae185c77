package render

import (
	"errors"
	"fmt"
)

// ErrConsumed is returned when a page sequence is iterated a second time.
var ErrConsumed = errors.New("page sequence already consumed")

// DocumentError reports a failure to open or render a document.
// Page is the 0-based page index, or -1 when the document itself could not be opened.
type DocumentError struct {
	Path string
	Page int
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("document %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("document %s: page %d: %v", e.Path, e.Page, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
