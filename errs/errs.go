package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes carried in API responses.
const (
	CodeBadRequest     = "bad_request"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeInvalidState   = "invalid_state"
	CodeProcessorError = "processor_error"
	CodeInternal       = "internal"
)

// WarnReconciliationPending flags a refund whose processor call succeeded
// but whose local writes did not all land. It rides on a success payload,
// never on an error: once money has moved the operation must not report
// failure.
const WarnReconciliationPending = "reconciliation_pending"

// Error is an application error with a machine code and an HTTP status.
type Error struct {
	Code    string `json:"error"`
	Status  int    `json:"-"`
	Message string `json:"details"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Wrap(err error) *Error {
	return &Error{Code: e.Code, Status: e.Status, Message: e.Message, Err: err}
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(CodeBadRequest, http.StatusBadRequest, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, http.StatusNotFound, message)
}

func InvalidState(message string) *Error {
	return New(CodeInvalidState, http.StatusConflict, message)
}

func ProcessorError(message string) *Error {
	return New(CodeProcessorError, http.StatusBadGateway, message)
}

func Internal(message string) *Error {
	return New(CodeInternal, http.StatusInternalServerError, message)
}

// HasCode reports whether err is an *Error carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Respond writes the error envelope {"error": code, "details": message}.
// Non-application errors are masked as internal.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal("internal server error")
	}
	c.JSON(appErr.Status, gin.H{"error": appErr.Code, "details": appErr.Message})
}
