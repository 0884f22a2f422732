package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

// Format names an operand document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath detects the document format from a file extension.
// Supported extensions: .yaml, .yml, .json
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported operand file extension: %s", ext)
	}
}

// LoadOperandFile loads an operand tree from a file, auto-detecting format by
// extension.
func LoadOperandFile(path string) (types.Operand, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read operand file: %w", err)
	}
	return LoadOperand(data, format)
}

// LoadOperand parses an operand tree from JSON or YAML.
func LoadOperand(data []byte, format Format) (types.Operand, error) {
	raw, err := LoadValue(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidOperand, err)
	}
	return types.ParseOperand(raw)
}

// LoadValue parses a JSON or YAML document into a normalized Value.
func LoadValue(data []byte, format Format) (types.Value, error) {
	switch format {
	case FormatJSON:
		v, err := types.DecodeValue(data)
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return v, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return types.Normalize(v), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// LoadLocalValues parses a JSON or YAML object into LocalValues.
func LoadLocalValues(data []byte, format Format) (types.LocalValues, error) {
	v, err := LoadValue(data, format)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return types.LocalValues{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("local values must be an object, got %s", types.FormatValue(v))
	}
	return types.LocalValues(obj), nil
}
