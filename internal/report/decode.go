package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// SchemaError reports a payload that is not valid JSON or does not match
// the report schema. JSON is the payload as received.
type SchemaError struct {
	JSON string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("report schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Decode parses and validates a report payload.
//
// Property names are matched exactly; a key differing only in case from a
// schema property is ignored, as is any other unknown key.
func Decode(text string) (*SoilReport, error) {
	fail := func(err error) (*SoilReport, error) {
		return nil, &SchemaError{JSON: text, Err: err}
	}

	doc, err := parse(text)
	if err != nil {
		return fail(err)
	}

	schema, err := compiled()
	if err != nil {
		return fail(err)
	}
	if err := schema.Validate(doc); err != nil {
		return fail(err)
	}

	prune(doc, ReportSchema)
	clean, err := json.Marshal(doc)
	if err != nil {
		return fail(fmt.Errorf("re-encode: %w", err))
	}

	var r SoilReport
	if err := json.Unmarshal(clean, &r); err != nil {
		return fail(err)
	}
	if r.Samples == nil {
		r.Samples = []Sample{}
	}
	return &r, nil
}

// parse decodes exactly one JSON value, keeping numbers as json.Number.
// Invalid UTF-8 is rejected rather than replaced with U+FFFD.
func parse(text string) (any, error) {
	if !utf8.ValidString(text) {
		return nil, errors.New("parse json: invalid UTF-8")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse json: trailing data after value")
	}
	return doc, nil
}
