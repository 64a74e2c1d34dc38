package enroll

import (
	"github.com/pkg/errors"
)

// CreationError reports that request-blob generation failed.
type CreationError struct {
	// Output is the diagnostic text from the enrollment backend
	Output string
	Err    error
}

func (e *CreationError) Error() string {
	if e.Output != "" {
		return "request creation failed: " + e.Output
	}
	return "request creation failed: " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *CreationError) Unwrap() error {
	return e.Err
}

// SubmissionError reports that the CA rejected the request or was
// unreachable.
type SubmissionError struct {
	// Output is the diagnostic text from the enrollment backend
	Output string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return "submission failed: " + e.Output
	}
	return "submission failed: " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewCreationError wraps err as a CreationError with optional backend
// output.
func NewCreationError(err error, output string) error {
	return &CreationError{Output: output, Err: err}
}

// NewSubmissionError wraps err as a SubmissionError with optional
// backend output.
func NewSubmissionError(err error, output string) error {
	return &SubmissionError{Output: output, Err: err}
}

// IsCreationError returns true if err is a CreationError.
func IsCreationError(err error) bool {
	var ce *CreationError
	return errors.As(err, &ce)
}

// IsSubmissionError returns true if err is a SubmissionError.
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
