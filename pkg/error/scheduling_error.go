package error

import (
	"errors"
	"net/http"
)

// Scheduling error codes. The time-window codes describe bad input, the
// storage codes describe an unavailable or corrupt queue file.
const (
	CodeInvalidTimePast    = "INVALID_TIME_PAST"
	CodeInvalidTimeTooSoon = "INVALID_TIME_TOO_SOON"
	CodeInvalidTimeTooFar  = "INVALID_TIME_TOO_FAR"
	CodeImageNotFound      = "IMAGE_NOT_FOUND"
	CodeLoadError          = "LOAD_ERROR"
	CodeSaveError          = "SAVE_ERROR"
)

type SchedulingError struct {
	Code    string
	Message string
}

func NewSchedulingError(code, message string) *SchedulingError {
	return &SchedulingError{Code: code, Message: message}
}

func (err *SchedulingError) Error() string {
	return err.Message
}

func (err *SchedulingError) ErrCode() string {
	return err.Code
}

func (err *SchedulingError) StatusCode() int {
	switch err.Code {
	case CodeLoadError, CodeSaveError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// IsSchedulingCode reports whether err is a SchedulingError with the given code.
func IsSchedulingCode(err error, code string) bool {
	var se *SchedulingError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
