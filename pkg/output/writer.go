package output

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"

	"github.com/angryss/idp-cli/pkg/multierr"
	"github.com/angryss/idp-cli/pkg/template"
	"github.com/angryss/idp-cli/pkg/vars"
)

// IoError wraps a directory-creation, write, permission, or rename failure
// from the writer.
type IoError struct {
	Path  string
	Cause error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error writing %q: %v", e.Path, e.Cause)
}

func (e *IoError) Unwrap() error { return e.Cause }

// Writer persists processed files under an output root, recreating the
// relative directory structure of the template tree.
type Writer struct {
	outputDir string
	warn      vars.WarnFunc
}

func NewWriter(outputDir string, warn vars.WarnFunc) *Writer {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	return &Writer{outputDir: outputDir, warn: warn}
}

// Write persists each file atomically: parents are created as needed, the
// content is written to a sibling temporary file with owner-only permissions,
// and the temporary file is renamed onto the target. Existing targets are
// overwritten, with one non-fatal warning each. Returns the absolute paths
// written, in input order; an empty input writes nothing.
func (w *Writer) Write(files []template.ProcessedFile) ([]string, error) {
	written := make([]string, 0, len(files))
	for _, file := range files {
		target, err := w.writeOne(file)
		if err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

func (w *Writer) writeOne(file template.ProcessedFile) (string, error) {
	target, err := filepath.Abs(filepath.Join(w.outputDir, file.RelPath))
	if err != nil {
		return "", &IoError{Path: file.RelPath, Cause: err}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", &IoError{Path: target, Cause: errors.Wrap(err, "failed to create output directory")}
	}

	if _, err := os.Stat(target); err == nil {
		w.warn("overwriting existing file: %s", target)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return "", &IoError{Path: target, Cause: errors.Wrap(err, "failed to create temporary file")}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(file.Content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", &IoError{Path: target, Cause: errors.Wrap(err, "failed to write content")}
	}
	if runtime.GOOS != "windows" {
		if err := tmp.Chmod(0o600); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return "", &IoError{Path: target, Cause: errors.Wrap(err, "failed to set permissions")}
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &IoError{Path: target, Cause: err}
	}

	if err := os.Rename(tmpPath, target); err != nil {
		errs := multierr.Error{errors.Wrap(err, "failed to rename temporary file")}
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			errs.Append(errors.Wrap(rmErr, "failed to clean up temporary file"))
		}
		return "", &IoError{Path: target, Cause: errs.ErrOrNil()}
	}
	return target, nil
}
