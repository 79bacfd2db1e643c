package diary

import "errors"

var (
	// ErrDiaryNotFound indicates the diary doesn't exist.
	ErrDiaryNotFound = errors.New("diary not found")
	// ErrInvalidInput indicates invalid diary input.
	ErrInvalidInput = errors.New("invalid diary input")
)
