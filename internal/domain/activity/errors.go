package activity

import "errors"

var (
	// ErrActivityNotFound indicates the activity is not in the recommended list.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrInvalidInput indicates invalid input for activity operations.
	ErrInvalidInput = errors.New("invalid activity input")
	// ErrInvalidDetail indicates a generated detail is missing required fields.
	ErrInvalidDetail = errors.New("invalid activity detail")
	// ErrGenerationFailed indicates the most recent generation attempt failed.
	ErrGenerationFailed = errors.New("activity generation failed")
	// ErrGenerationTimeout indicates the generation call exceeded its deadline.
	ErrGenerationTimeout = errors.New("activity generation timed out")
)
