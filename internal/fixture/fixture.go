// Package fixture reads batches of country entries from JSON or YAML files,
// the input format of the import command.
//
// Both formats hold a list of entries:
//
//	- iso: CAN
//	  names: [Canada, Kanada]
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/countrymap/internal/core"
	"gopkg.in/yaml.v3"
)

// Format identifies a file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for file extensions other than .json, .yaml and .yml.
var ErrUnknownFormat = errors.New("unknown fixture format")

// FormatFor picks the format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Load reads the entries stored in path.
func Load(path string) ([]core.CountryEntry, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	entries, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Decode reads entries in the given format. An empty document yields no entries.
func Decode(r io.Reader, format Format) ([]core.CountryEntry, error) {
	var entries []core.CountryEntry

	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&entries)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&entries)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if errors.Is(err, io.EOF) {
		return []core.CountryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return entries, nil
}
