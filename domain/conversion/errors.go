package conversion

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the source URL is missing or unusable
	ErrInvalidURL = errors.New("missing or invalid url")

	// ErrInvocationFailed is returned when the extraction tool chain reports a failure
	ErrInvocationFailed = errors.New("conversion failed")

	// ErrNoOutput is returned when the tool chain succeeded but left no matching file behind
	ErrNoOutput = errors.New("conversion failed: no output produced")

	// ErrRelocationFailed is returned when the produced file cannot be moved to stable storage
	ErrRelocationFailed = errors.New("failed to relocate output")

	// ErrWorkspace is returned when a request workspace cannot be created
	ErrWorkspace = errors.New("workspace unavailable")
)

// NoOutputError reports which extension was missing from which workspace.
// It matches ErrNoOutput with errors.Is.
type NoOutputError struct {
	Extension string
	Dir       string
}

func (e *NoOutputError) Error() string {
	return fmt.Sprintf("%s: no %s file in %s", ErrNoOutput, e.Extension, e.Dir)
}

func (e *NoOutputError) Unwrap() error {
	return ErrNoOutput
}
