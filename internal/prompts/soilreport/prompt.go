// Package soilreport holds the instruction prompt for soil report extraction.
package soilreport

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/soilextract/soilextract/internal/prompts"
	"github.com/soilextract/soilextract/internal/report"
)

//go:embed prompt.tmpl
var promptTmpl string

// PromptKey identifies the extraction prompt in a prompts.Resolver.
const PromptKey = "extract.soil_report"

// RegisterPrompts registers the extraction prompt with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        promptTmpl,
		Description: "Soil report extraction prompt - asks for one fenced JSON block matching the report schema",
	})
}

// Render executes a prompt template with the report schema.
func Render(text string) (string, error) {
	tmpl, err := template.New(PromptKey).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt: %w", err)
	}
	var buf bytes.Buffer
	data := struct{ Schema string }{Schema: string(report.Schema())}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// Prompt resolves and renders the extraction prompt.
func Prompt(r *prompts.Resolver) (string, error) {
	resolved, err := r.Resolve(PromptKey)
	if err != nil {
		return "", err
	}
	return Render(resolved.Text)
}

// Default returns the embedded prompt rendered with the report schema.
func Default() string {
	text, err := Render(promptTmpl)
	if err != nil {
		panic(err)
	}
	return text
}
