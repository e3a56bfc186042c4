package wizard

import "errors"

var (
	// ErrExtractionEmpty means a free-text message yielded no usable field
	ErrExtractionEmpty = errors.New("no trip data found in message")

	// ErrCompletionUnavailable means the AI completion path was unset, failed or timed out
	ErrCompletionUnavailable = errors.New("completion unavailable")

	// ErrPersistenceFailure means the final insert failed; the draft is kept for retry
	ErrPersistenceFailure = errors.New("failed to save trip")

	// ErrInvalidAnswer means the confirmation answer was neither affirmative nor negative
	ErrInvalidAnswer = errors.New("answer must be yes or no")
)
