package gemini

import (
	"errors"
	"fmt"
	"net/http"

	"vertextester/internal/application/common/retry"

	"google.golang.org/genai"
)

// GenerationError is a classified model failure.
type GenerationError struct {
	StatusCode int
	Message    string
	Retryable  bool
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gemini generation failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return "gemini generation failed: " + e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// classifyError maps SDK and transport errors to a GenerationError.
func classifyError(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	code, message, ok := apiErrorDetails(err)
	if !ok {
		return &GenerationError{
			Message:   err.Error(),
			Retryable: retry.DefaultRetryableChecker{}.IsRetryable(err),
			Err:       err,
		}
	}

	return &GenerationError{
		StatusCode: code,
		Message:    message,
		Retryable:  code == http.StatusTooManyRequests || code >= http.StatusInternalServerError,
		Err:        err,
	}
}

func apiErrorDetails(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return classifyError(err).Retryable
}
