// Package output writes command results as YAML or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Default is the default output format.
var Default Format = FormatYAML

// global is set by the root command's --output flag.
var global Format = FormatYAML

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatYAML, FormatJSON:
		return Format(name), nil
	case "":
		return Default, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", name)
	}
}

// SetFormat sets the global output format. Unknown names select Default.
func SetFormat(name string) {
	f, err := ParseFormat(name)
	if err != nil {
		f = Default
	}
	global = f
}

// GetFormat returns the current global output format.
func GetFormat() Format {
	return global
}

// Write writes data to stdout in the configured format.
func Write(data any) error {
	return To(os.Stdout, global, data)
}

// To writes data to the given writer in the specified format.
func To(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// ToFile writes data to path in the specified format.
func ToFile(path string, format Format, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := To(f, format, data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
