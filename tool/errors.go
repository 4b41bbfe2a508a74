package tool

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Errors returned by the program wrappers match one of these
// with errors.Is. ErrNoResults is also an ErrParse.
var (
	ErrNotFound     = errors.New("file not found")
	ErrUnsupported  = errors.New("unsupported format")
	ErrInvalidInput = errors.New("invalid input")
	ErrToolFailed   = errors.New("external tool failed")
	ErrParse        = errors.New("parse output")
	ErrNoResults    = fmt.Errorf("%w: no results", ErrParse)
	ErrNotReady     = errors.New("not ready")
)

// ToolError is returned when an external program exits with an error.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %v\n%s", e.Tool, e.Err, e.Output())
}

// Output returns the captured stderr, or stdout when stderr is empty.
func (e *ToolError) Output() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(e.Stdout)
}

func (e *ToolError) Unwrap() error { return e.Err }

func (e *ToolError) Is(target error) bool { return target == ErrToolFailed }
