package io

import (
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/leveler/pkg/errors"
)

// Format identifies a file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatCSV  Format = "csv"
)

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errs.New(errs.ErrCodeUnsupported, "unsupported file extension %q (want .json, .yaml, .yml, .toml or .csv)", ext)
	}
}

// ParseFormat parses a format name such as "json" or "yml".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTOML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errs.New(errs.ErrCodeUnsupported, "unsupported format %q", s)
	}
}
