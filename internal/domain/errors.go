package domain

import (
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches by code so that errors produced with WithError still compare
// equal to the predefined sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: status}
}

var (
	ErrInternal          = newError(http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	ErrBadRequest        = newError(http.StatusBadRequest, "BAD_REQUEST", "Invalid request")
	ErrUnauthorized      = newError(http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing access token")
	ErrForbidden         = newError(http.StatusForbidden, "FORBIDDEN", "Access denied")
	ErrNotFound          = newError(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrValidationFailed  = newError(http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Request validation failed")
	ErrRateLimitExceeded = newError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded, please try again later")

	// Directory errors
	ErrEmployeeNotFound  = newError(http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee not found")
	ErrEmployeeExists    = newError(http.StatusConflict, "EMPLOYEE_ALREADY_EXISTS", "Employee ID already exists")
	ErrDepartmentEmpty   = newError(http.StatusNotFound, "DEPARTMENT_NOT_FOUND", "No employees in this department")
	ErrFaceNotFound      = newError(http.StatusNotFound, "FACE_NOT_FOUND", "No face registered for this employee")
	ErrPerformanceExists = newError(http.StatusConflict, "PERFORMANCE_ALREADY_EXISTS", "Performance record already exists for this period")

	// Recognition errors. All of them are recoverable: the caller retries on
	// the next frame.
	ErrNoFaceDetected   = newError(http.StatusUnprocessableEntity, "NO_FACE_DETECTED", "No face detected in the frame")
	ErrMultipleFaces    = newError(http.StatusUnprocessableEntity, "MULTIPLE_FACES", "Multiple faces detected, please provide image with single face")
	ErrNoEnrolledFaces  = newError(http.StatusConflict, "NO_ENROLLED_FACES", "No employee faces are enrolled")
	ErrInvalidEmbedding = newError(http.StatusUnprocessableEntity, "INVALID_EMBEDDING", "Embedding is empty or has the wrong dimension")
	ErrInvalidImage     = newError(http.StatusUnprocessableEntity, "INVALID_IMAGE", "Invalid image format or corrupted file")

	// Record errors
	ErrInvalidRecord    = newError(http.StatusUnprocessableEntity, "INVALID_RECORD", "Malformed stored record")
	ErrInvalidThreshold = newError(http.StatusUnprocessableEntity, "INVALID_THRESHOLD", "Threshold value out of range")
)
