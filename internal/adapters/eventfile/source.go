// Package eventfile reads typed market events from CSV, JSON or YAML files.
package eventfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tradeAnalytics/internal/domain"
	"tradeAnalytics/internal/ports"
)

// Format identifies an event file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported event file extension %q: %w", filepath.Ext(path), ports.ErrConfigurationError)
	}
}

// Source implements ports.EventSource over a single file. The file is
// re-read on every call so edits are picked up by the next refresh.
type Source struct {
	path   string
	format Format
	logger ports.Logger
}

// NewSource creates a file-backed event source.
func NewSource(path string, logger ports.Logger) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("event file path is required: %w", ports.ErrConfigurationError)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for event file source: %w", ports.ErrConfigurationError)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return &Source{path: path, format: format, logger: logger}, nil
}

// Path returns the file the source reads.
func (s *Source) Path() string {
	return s.path
}

// Events reads and decodes the whole file.
func (s *Source) Events(ctx context.Context) ([]domain.MarketEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("event file %s: %w", s.path, ports.ErrSourceUnavailable)
		}
		return nil, fmt.Errorf("failed to read event file %s: %w: %w", s.path, ports.ErrSourceUnavailable, err)
	}

	events, err := Decode(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("event file %s: %w", s.path, err)
	}
	s.logger.Debug(ctx, "Event file loaded", map[string]interface{}{
		"path":   s.path,
		"format": string(s.format),
		"events": len(events),
	})
	return events, nil
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) ([]domain.MarketEvent, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(bytes.NewReader(data))
	case FormatJSON:
		var records []record
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &records); err != nil {
				return nil, fmt.Errorf("failed to parse json: %w: %w", ports.ErrMalformedInput, err)
			}
		}
		return toEvents(records)
	case FormatYAML:
		var records []record
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w: %w", ports.ErrMalformedInput, err)
		}
		return toEvents(records)
	default:
		return nil, fmt.Errorf("unsupported format %q: %w", format, ports.ErrConfigurationError)
	}
}

func toEvents(records []record) ([]domain.MarketEvent, error) {
	events := make([]domain.MarketEvent, 0, len(records))
	for i, r := range records {
		e, err := r.toEvent()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w: %w", i, ports.ErrMalformedInput, err)
		}
		events = append(events, e)
	}
	return events, nil
}
