package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	// ErrTransient covers network failures, timeouts and 5xx responses.
	// Transient errors are never surfaced as a terminal lifecycle state;
	// the poll cadence simply continues.
	ErrTransient ErrorCode = "TRANSIENT"
	// ErrTerminal is a business failure the gateway has explicitly marked
	// final (e.g. a rejected payout). It maps to the FAILED state.
	ErrTerminal     ErrorCode = "TERMINAL"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrInvalidUsage flags programmer errors such as starting a session
	// twice or stopping a timer that was never started. These fail loudly
	// instead of silently no-opping so integration bugs surface early.
	ErrInvalidUsage   ErrorCode = "INVALID_USAGE"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Transient builds a transient classification wrapping the cause.
func Transient(message string, cause error) APIError {
	return APIError{Code: ErrTransient, Message: message, Details: causeDetail(cause)}
}

// Terminal builds a terminal-business classification with the gateway's
// failure reason as the message.
func Terminal(reason string) APIError {
	return APIError{Code: ErrTerminal, Message: reason}
}

func InvalidUsage(message string) APIError {
	return APIError{Code: ErrInvalidUsage, Message: message}
}

func causeDetail(cause error) interface{} {
	if cause == nil {
		return nil
	}
	return cause.Error()
}

// IsTransient reports whether err should be absorbed by the poll cadence.
// Errors without a classification default to transient: only an explicit
// terminal mark from the gateway may end a lifecycle session.
func IsTransient(err error) bool {
	return !IsTerminal(err)
}

// IsInvalidInput reports whether err is a request-validation rejection.
// Retrying these verbatim can never succeed.
func IsInvalidInput(err error) bool {
	var apiErr APIError
	return errors.As(err, &apiErr) && (apiErr.Code == ErrInvalidInput || apiErr.Code == ErrInvalidUsage)
}

// IsTerminal reports whether err must end the lifecycle session as FAILED.
func IsTerminal(err error) bool {
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case ErrTerminal, ErrUnauthorized:
		return true
	default:
		return false
	}
}

func MapErrorToHTTPStatus(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrUnauthorized:
			return http.StatusUnauthorized
		case ErrInvalidInput, ErrInvalidUsage:
			return http.StatusBadRequest
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// FromHTTPStatus classifies a non-2xx gateway response. terminalMark is
// the gateway's explicit flag from the error body; without it every
// business error stays transient so polling can continue.
func FromHTTPStatus(status int, message string, terminalMark bool) APIError {
	switch {
	case terminalMark:
		return Terminal(message)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return APIError{Code: ErrUnauthorized, Message: message}
	case status == http.StatusNotFound:
		// Freshly-created references can briefly 404 behind a read
		// replica; classified transient so the next poll retries.
		return APIError{Code: ErrNotFound, Message: message}
	case status >= 500 || status == http.StatusTooManyRequests || status == http.StatusRequestTimeout:
		return APIError{Code: ErrTransient, Message: message}
	default:
		return APIError{Code: ErrInvalidInput, Message: message}
	}
}
