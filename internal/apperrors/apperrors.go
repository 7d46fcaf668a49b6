package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies failures so handlers can map every service error to a
// single HTTP status without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
	KindPersistence
)

// Error codes surfaced in API responses.
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInternalError = "INTERNAL_ERROR"
)

// Error is the domain error type returned by services.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind: two *Errors are equivalent when their
// kinds agree. Sentinel comparisons like errors.Is(err, apperrors.NotFound(""))
// are intentionally not used; compare with KindOf instead.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func Validation(msg string) *Error    { return &Error{Kind: KindValidation, Message: msg} }
func Authorization(msg string) *Error { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) *Error      { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error      { return &Error{Kind: KindConflict, Message: msg} }

// Persistence wraps a database failure. The wrapped error is logged but
// never serialized to the client.
func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "persistence failure", Err: err}
}

// KindOf extracts the Kind from any error chain; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Respond writes the HTTP response for a service error. Persistence and
// internal failures are reported generically so internals never leak.
func Respond(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, apiError{CodeInternalError, "Internal server error"})
		return
	}

	switch e.Kind {
	case KindValidation:
		c.JSON(http.StatusBadRequest, apiError{CodeInvalidInput, e.Message})
	case KindAuthorization:
		c.JSON(http.StatusForbidden, apiError{CodeForbidden, e.Message})
	case KindNotFound:
		c.JSON(http.StatusNotFound, apiError{CodeNotFound, e.Message})
	case KindConflict:
		c.JSON(http.StatusConflict, apiError{CodeConflict, e.Message})
	default:
		c.JSON(http.StatusInternalServerError, apiError{CodeInternalError, "Internal server error"})
	}
}

// Unauthorized writes a 401. Used by middleware before any service runs.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	c.JSON(http.StatusUnauthorized, apiError{CodeUnauthorized, message})
}

// BadRequest writes a 400 for malformed request bodies.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request body"
	}
	c.JSON(http.StatusBadRequest, apiError{CodeInvalidInput, message})
}
