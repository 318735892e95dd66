// Package source reads the serialized documents the engine is configured
// from: the label vocabulary and the intent catalog.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is the serialization of a source document.
type Format int

const (
	JSON Format = iota
	YAML
	Text // one entry per line
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case Text:
		return "text"
	default:
		return "json"
	}
}

// FormatOf infers the format from a file extension. Unknown extensions are
// treated as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".txt":
		return Text
	default:
		return JSON
	}
}

// Read returns the file contents together with the inferred format.
func Read(path string) ([]byte, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, JSON, fmt.Errorf("source: %w", err)
	}
	return data, FormatOf(path), nil
}
