package mcp

import (
	"errors"
	"fmt"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/domain/diary"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, activity.ErrInvalidInput), errors.Is(err, diary.ErrInvalidInput), errors.Is(err, errInvalidParams):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check the tool arguments"}
	case errors.Is(err, activity.ErrActivityNotFound):
		return &APIError{Code: "ACTIVITY_NOT_FOUND", Message: "activity not found", RecoveryHint: "Use an ID from a parallel diary's recommended activities"}
	case errors.Is(err, diary.ErrDiaryNotFound):
		return &APIError{Code: "DIARY_NOT_FOUND", Message: "diary not found", RecoveryHint: "Check the diary ID"}
	case errors.Is(err, activity.ErrGenerationTimeout):
		return &APIError{Code: "GENERATION_TIMEOUT", Message: err.Error(), RecoveryHint: "Call generate_activity_detail again to retry"}
	case errors.Is(err, activity.ErrGenerationFailed), errors.Is(err, activity.ErrInvalidDetail):
		return &APIError{Code: "GENERATION_FAILED", Message: err.Error(), RecoveryHint: "Call generate_activity_detail again to retry"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
