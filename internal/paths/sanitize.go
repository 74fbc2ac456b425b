// Package paths validates user-supplied document paths and matches unit names
// against glob patterns.
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrEmpty    = errors.New("path is empty")
	ErrNotExist = errors.New("path does not exist")
	ErrNotFile  = errors.New("path is not a file")
)

// InputValidationError reports a path that cannot be used as a document.
type InputValidationError struct {
	Path string
	Err  error
}

func (e *InputValidationError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Path)
}

func (e *InputValidationError) Unwrap() error {
	return e.Err
}

// Clean trims whitespace and one layer of matching quotes (as left behind by
// drag-and-drop into a terminal) and makes the path absolute.
func Clean(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, `'"`)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", &InputValidationError{Path: raw, Err: ErrEmpty}
	}

	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", cleaned, err)
	}
	return abs, nil
}

// Sanitize cleans raw and checks that it names an existing regular file.
func Sanitize(fs afero.Fs, raw string) (string, error) {
	cleaned, err := Clean(raw)
	if err != nil {
		return "", err
	}

	info, err := fs.Stat(cleaned)
	if err != nil {
		return "", &InputValidationError{Path: cleaned, Err: ErrNotExist}
	}
	if !info.Mode().IsRegular() {
		return "", &InputValidationError{Path: cleaned, Err: ErrNotFile}
	}

	return cleaned, nil
}
