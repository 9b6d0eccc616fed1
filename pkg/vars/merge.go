package vars

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// VariableFileError indicates the override document could not be read or
	// has an unsupported extension.
	VariableFileError struct {
		Path  string
		Cause error
	}

	// ParseError indicates the override document is not well-formed JSON/YAML.
	ParseError struct {
		Path   string
		Format string
		Cause  error
	}

	// SchemaError indicates the override document parsed but does not have a
	// mapping at the top level.
	SchemaError struct {
		Path string
		Msg  string
	}
)

func (e *VariableFileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to read variables file %q: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("invalid variables file %q", e.Path)
}

func (e *VariableFileError) Unwrap() error { return e.Cause }

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from %q: %v", e.Format, e.Path, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid variables file %q: %s", e.Path, e.Msg)
}

// MergeVariablesFile reads a JSON or YAML document (selected by extension),
// requires a top-level mapping, and merges it into ctx using the same
// dual-indexing convention the domain builders use. Override values always
// win; each collision with an existing path emits one warning through warn.
func MergeVariablesFile(ctx *Context, path string, warn WarnFunc) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return &VariableFileError{Path: path, Cause: err}
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(contents, &doc); err != nil {
			return &ParseError{Path: path, Format: "JSON", Cause: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(contents, &doc); err != nil {
			return &ParseError{Path: path, Format: "YAML", Cause: err}
		}
	default:
		return &VariableFileError{
			Path:  path,
			Cause: fmt.Errorf("unsupported extension %q, use .json, .yaml, or .yml", filepath.Ext(path)),
		}
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return &SchemaError{Path: path, Msg: "document must contain a mapping at the top level"}
	}

	if warn == nil {
		warn = func(string, ...any) {}
	}
	for key, value := range root {
		mergeValue(ctx, key, value, warn)
	}
	return nil
}

// mergeValue inserts value at path and, for composites, recursively inserts
// every reachable child at its own path (the dual-indexing convention).
func mergeValue(ctx *Context, path string, value any, warn WarnFunc) {
	if ctx.Has(path) {
		warn("custom variable %q overrides existing value", path)
	}
	ctx.Insert(path, value)

	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			mergeValue(ctx, path+"."+key, child, warn)
		}
	case []any:
		for i, child := range v {
			mergeValue(ctx, fmt.Sprintf("%s[%d]", path, i), child, warn)
		}
	}
}
