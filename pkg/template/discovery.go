package template

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type (
	// Kind classifies a template file by its extension.
	Kind int

	// TemplateFile is one discovered template: where it lives on disk and
	// where it belongs relative to the template root.
	TemplateFile struct {
		// Path is the absolute (or root-joined) path to the template.
		Path string
		// RelPath is the path relative to the template root; the output tree
		// mirrors it exactly.
		RelPath string
		Kind    Kind
	}

	DirectoryNotFoundError struct{ Path string }
	NotADirectoryError     struct{ Path string }
	PermissionDeniedError  struct{ Path string }
	WalkError              struct{ Cause error }
	PathError              struct{ Cause error }
)

const (
	KindTerraform Kind = iota
	KindYAML
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindTerraform:
		return "terraform"
	case KindYAML:
		return "yaml"
	case KindJSON:
		return "json"
	}
	return "unknown"
}

// KindForExtension maps a file extension (without the leading dot,
// case-insensitive) to its Kind.
func KindForExtension(ext string) (Kind, bool) {
	switch strings.ToLower(ext) {
	case "tf":
		return KindTerraform, true
	case "yaml", "yml":
		return KindYAML, true
	case "json":
		return KindJSON, true
	}
	return 0, false
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("template directory not found: %s", e.Path)
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("path is not a directory: %s", e.Path)
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Path)
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("error walking template directory: %v", e.Cause)
}

func (e *WalkError) Unwrap() error { return e.Cause }

func (e *PathError) Error() string {
	return fmt.Sprintf("path error: %v", e.Cause)
}

func (e *PathError) Unwrap() error { return e.Cause }

// Discover recursively enumerates recognized template files under root.
// Hidden entries (dot-prefixed names) are pruned from traversal, except the
// root itself; files with unrecognized or absent extensions are skipped
// silently. Relative paths whose slash form matches any of the exclude
// doublestar patterns are skipped as well.
func Discover(root string, excludes ...string) ([]TemplateFile, error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, &DirectoryNotFoundError{Path: root}
	} else if err != nil {
		return nil, &WalkError{Cause: err}
	}
	if !info.IsDir() {
		return nil, &NotADirectoryError{Path: root}
	}

	var files []TemplateFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return &PermissionDeniedError{Path: path}
			}
			return &WalkError{Cause: err}
		}
		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(name)
		if ext == "" {
			return nil
		}
		kind, ok := KindForExtension(ext[1:])
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return &PathError{Cause: err}
		}
		for _, pattern := range excludes {
			matched, err := doublestar.Match(pattern, filepath.ToSlash(rel))
			if err != nil {
				return &PathError{Cause: fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)}
			}
			if matched {
				return nil
			}
		}

		files = append(files, TemplateFile{Path: path, RelPath: rel, Kind: kind})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
