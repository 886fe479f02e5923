package api

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how CLI commands print server responses.
type OutputFormat string

const (
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatText prints Summary() for values that have one and YAML otherwise.
	OutputFormatText OutputFormat = "text"
)

// Summarizer is implemented by responses with a short human-readable form.
type Summarizer interface {
	Summary() string
}

var outputFormat = OutputFormatYAML

// ParseOutputFormat parses a --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputFormatYAML, nil
	case OutputFormatYAML, OutputFormatJSON, OutputFormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want yaml, json or text)", s)
	}
}

// SetOutputFormat sets the format used by Output. Unknown values fall back to YAML.
func SetOutputFormat(format string) {
	f, err := ParseOutputFormat(format)
	if err != nil {
		f = OutputFormatYAML
	}
	outputFormat = f
}

// GetOutputFormat returns the format used by Output.
func GetOutputFormat() OutputFormat {
	return outputFormat
}

// Output writes data to stdout in the configured format.
func Output(data any) error {
	return OutputTo(os.Stdout, outputFormat, data)
}

// OutputTo writes data to w in the given format.
func OutputTo(w io.Writer, format OutputFormat, data any) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case OutputFormatText:
		if s, ok := data.(Summarizer); ok {
			_, err := fmt.Fprintln(w, strings.TrimRight(s.Summary(), "\n"))
			return err
		}
		return OutputTo(w, OutputFormatYAML, data)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
