package pipeline

import (
	"errors"
	"fmt"

	"github.com/soilextract/soilextract/internal/encode"
	"github.com/soilextract/soilextract/internal/providers"
	"github.com/soilextract/soilextract/internal/render"
	"github.com/soilextract/soilextract/internal/reply"
	"github.com/soilextract/soilextract/internal/report"
)

// Kind classifies an extraction failure by the stage that produced it.
type Kind string

const (
	KindDocument      Kind = "document"
	KindEncoding      Kind = "encoding"
	KindTransport     Kind = "transport"
	KindNoMessages    Kind = "no_messages"
	KindNoJSONSection Kind = "no_json_section"
	KindSchema        Kind = "schema"
	KindUnknown       Kind = "unknown"
)

// Error is returned by Extract for every failure. The stage's own error
// type stays reachable through errors.As.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the failure kind of err.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return classify(err)
}

// classify maps a stage's typed error to its kind.
func classify(err error) Kind {
	var (
		docErr       *render.DocumentError
		encErr       *encode.EncodingError
		transportErr *providers.TransportError
		schemaErr    *report.SchemaError
	)
	switch {
	case errors.As(err, &docErr):
		return KindDocument
	case errors.As(err, &encErr):
		return KindEncoding
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.Is(err, reply.ErrNoMessages):
		return KindNoMessages
	case errors.Is(err, reply.ErrNoJSONSection):
		return KindNoJSONSection
	case errors.As(err, &schemaErr):
		return KindSchema
	default:
		return KindUnknown
	}
}
