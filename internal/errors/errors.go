package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	CategoryParse         ErrorCategory = "parse"
	CategoryDegenerate    ErrorCategory = "degenerate_statistics"
	CategoryEmptyInput    ErrorCategory = "empty_input"
	CategoryStorage       ErrorCategory = "storage"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// AppError wraps an errbuilder error with pipeline context
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Category, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewAppError creates an AppError from errbuilder with additional context
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewParseError records a coercion failure for a single input row. Parse
// failures are local: the affected record is dropped, the run continues.
func NewParseError(field, value string, cause error) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("field", errors.New(field))
	errorMap.Set("value", errors.New(value))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("failed to coerce %s", field)).
		WithDetails(errbuilder.NewErrDetails(errorMap))

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryParse, http.StatusBadRequest)
}

// NewEmptyInputError is the single fatal pipeline condition: no usable
// records remain after cleaning.
func NewEmptyInputError(rawCount int) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("raw_records", fmt.Errorf("%d", rawCount))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("no usable records after cleaning").
		WithDetails(errbuilder.NewErrDetails(errorMap))

	return NewAppError(builder, CategoryEmptyInput, http.StatusUnprocessableEntity)
}

// NewStorageError creates a run-archive error
func NewStorageError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryStorage, http.StatusInternalServerError)
}

// NewConfigurationError creates a configuration error (missing columns,
// unreadable data directory and the like)
func NewConfigurationError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryInternal, http.StatusInternalServerError)
}

// IsEmptyInput reports whether err is the fatal empty-input condition.
func IsEmptyInput(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category == CategoryEmptyInput
	}
	return false
}

// ToAppError converts any error to an AppError
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if ebErr, ok := err.(*errbuilder.ErrBuilder); ok {
		return NewAppError(ebErr, CategoryInternal, http.StatusInternalServerError)
	}

	return NewInternalError("an unexpected error occurred", err)
}

// ErrorHandler is a Gin middleware that provides centralized error handling
// for the report server.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			appErr := ToAppError(err)
			c.JSON(appErr.HTTPStatus, gin.H{
				"category": appErr.Category,
				"message":  appErr.ErrBuilder.Msg,
			})
		}
	}
}

// RecoveryHandler provides panic recovery with structured error responses
func RecoveryHandler() gin.HandlerFunc {
	return gin.RecoveryWithWriter(nil, func(c *gin.Context, err interface{}) {
		appErr := NewInternalError(
			fmt.Sprintf("panic recovered: %v", err),
			fmt.Errorf("%v", err),
		)
		c.JSON(appErr.HTTPStatus, gin.H{
			"category": appErr.Category,
			"message":  appErr.ErrBuilder.Msg,
		})
	})
}

// WrapError wraps an error with additional context
func WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	contextMsg := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", contextMsg, err)
}
