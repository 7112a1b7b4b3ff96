package ledger

import (
	"errors"
	"fmt"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("runtime service error")
	errTransport    = errors.New("transport error")
)

// SubmissionError is a runtime-level submission failure. Retryable marks
// transient conditions that a caller may resubmit under its own backoff
// policy; validation and authorization failures are never retryable.
type SubmissionError struct {
	Retryable bool
	Cause     error
}

func (e *SubmissionError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("submission failed (retryable): %v", e.Cause)
	}
	return fmt.Sprintf("submission failed: %v", e.Cause)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is a submission failure that may be
// retried.
func IsRetryable(err error) bool {
	var submissionErr *SubmissionError
	if errors.As(err, &submissionErr) {
		return submissionErr.Retryable
	}
	return false
}
