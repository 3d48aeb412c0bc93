package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	CategoryValidation        ErrorCategory = "validation"
	CategoryTimeout           ErrorCategory = "timeout"
	CategoryRateLimit         ErrorCategory = "rate_limit"
	CategoryInternal          ErrorCategory = "internal"
	CategoryConfiguration     ErrorCategory = "configuration"
	CategoryUnauthorized      ErrorCategory = "unauthorized"
	CategoryDataLoad          ErrorCategory = "data_load"
	CategoryDegenerateFeature ErrorCategory = "degenerate_feature"
	CategoryTraining          ErrorCategory = "training"
	CategoryDocumentParse     ErrorCategory = "document_parse"
	CategoryIncompleteVector  ErrorCategory = "incomplete_vector"
	CategoryNotReady          ErrorCategory = "not_ready"
)

var categoryCodes = map[ErrorCategory]string{
	CategoryValidation:        "VALIDATION_ERROR",
	CategoryTimeout:           "TIMEOUT_ERROR",
	CategoryRateLimit:         "RATE_LIMIT_EXCEEDED",
	CategoryInternal:          "INTERNAL_ERROR",
	CategoryConfiguration:     "CONFIGURATION_ERROR",
	CategoryUnauthorized:      "UNAUTHORIZED",
	CategoryDataLoad:          "DATA_LOAD_ERROR",
	CategoryDegenerateFeature: "DEGENERATE_FEATURE_ERROR",
	CategoryTraining:          "TRAINING_ERROR",
	CategoryDocumentParse:     "DOCUMENT_PARSE_ERROR",
	CategoryIncompleteVector:  "INCOMPLETE_VECTOR_ERROR",
	CategoryNotReady:          "NOT_READY",
}

// AppError wraps errbuilder error with a category and HTTP status
type AppError struct {
	*errbuilder.ErrBuilder
	Category      ErrorCategory     `json:"category"`
	HTTPStatus    int               `json:"http_status"`
	Timestamp     time.Time         `json:"timestamp"`
	MissingFields []string          `json:"missing_fields,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	StackTrace    string            `json:"stack_trace,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	codeStr, ok := categoryCodes[e.Category]
	if !ok {
		codeStr = "UNKNOWN_ERROR"
	}
	return fmt.Sprintf("[%s] %s", codeStr, e.ErrBuilder.Msg)
}

// MarshalJSON renders the response body sent to API clients
func (e *AppError) MarshalJSON() ([]byte, error) {
	codeStr, ok := categoryCodes[e.Category]
	if !ok {
		codeStr = "UNKNOWN_ERROR"
	}
	return json.Marshal(struct {
		Error         string            `json:"error"`
		Code          string            `json:"code"`
		Category      ErrorCategory     `json:"category"`
		HTTPStatus    int               `json:"http_status"`
		Timestamp     time.Time         `json:"timestamp"`
		MissingFields []string          `json:"missing_fields,omitempty"`
		Fields        map[string]string `json:"fields,omitempty"`
		RequestID     string            `json:"request_id,omitempty"`
		StackTrace    string            `json:"stack_trace,omitempty"`
	}{
		Error:         e.ErrBuilder.Msg,
		Code:          codeStr,
		Category:      e.Category,
		HTTPStatus:    e.HTTPStatus,
		Timestamp:     e.Timestamp,
		MissingFields: e.MissingFields,
		Fields:        e.Fields,
		RequestID:     e.RequestID,
		StackTrace:    e.StackTrace,
	})
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// Fatal reports whether the error must abort pipeline initialization.
func (e *AppError) Fatal() bool {
	switch e.Category {
	case CategoryDataLoad, CategoryDegenerateFeature, CategoryTraining, CategoryConfiguration:
		return true
	default:
		return false
	}
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

func withDetail(builder *errbuilder.ErrBuilder, key, value string) *errbuilder.ErrBuilder {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set(key, errors.New(value))
	return builder.WithDetails(errbuilder.NewErrDetails(errorMap))
}

// NewValidationError creates a validation error using errbuilder
func NewValidationError(message string, details ...interface{}) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)

	if len(details) > 0 {
		builder = withDetail(builder, "validation_details", fmt.Sprintf("%v", details[0]))
	}

	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewValidationErrorWithMap creates a validation error carrying one entry per invalid field
func NewValidationErrorWithMap(validationErrors map[string]string) *AppError {
	return NewValidationErrorWithFields("Multiple validation errors", validationErrors)
}

// NewValidationErrorWithFields is NewValidationErrorWithMap with a caller-chosen message
func NewValidationErrorWithFields(message string, validationErrors map[string]string) *AppError {
	errMap := errbuilder.ErrorMap{}

	for field, msg := range validationErrors {
		errMap.Set(field, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(msg))
	}

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message).
		WithDetails(errbuilder.NewErrDetails(errMap))

	appErr := NewAppError(builder, CategoryValidation, http.StatusBadRequest)
	appErr.Fields = make(map[string]string, len(validationErrors))
	for field, msg := range validationErrors {
		appErr.Fields[field] = msg
	}
	return appErr
}

// NewTimeoutError creates a timeout error using errbuilder
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryTimeout, http.StatusGatewayTimeout)
}

// NewRateLimitError creates a rate limit error using errbuilder
func NewRateLimitError(retryAfter string) *AppError {
	builder := withDetail(errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("Rate limit exceeded"), "retry_after", retryAfter)

	return NewAppError(builder, CategoryRateLimit, http.StatusTooManyRequests)
}

// NewUnauthorizedError is returned when a session token is missing or invalid
func NewUnauthorizedError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryUnauthorized, http.StatusUnauthorized)
}

// NewInternalError creates an internal server error using errbuilder
func NewInternalError(message string, cause error) *AppError {
	builder := withDetail(errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Internal server error"), "internal_details", message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	appErr := NewAppError(builder, CategoryInternal, http.StatusInternalServerError)

	if gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode {
		appErr.StackTrace = captureStackTrace()
	}

	return appErr
}

// NewConfigurationError creates a configuration error using errbuilder
func NewConfigurationError(message string, cause error) *AppError {
	builder := withDetail(errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("Configuration error"), "config_details", message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// NewDataLoadError reports a missing or corrupt reference dataset
func NewDataLoadError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryDataLoad, http.StatusInternalServerError)
}

// NewDegenerateFeatureError reports a reference column with zero variance
func NewDegenerateFeatureError(feature string) *AppError {
	builder := withDetail(errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("feature %s has zero variance in the reference dataset", feature)),
		"feature", feature)

	return NewAppError(builder, CategoryDegenerateFeature, http.StatusInternalServerError)
}

// NewTrainingError reports training data that cannot produce a classifier
func NewTrainingError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)

	return NewAppError(builder, CategoryTraining, http.StatusInternalServerError)
}

// NewDocumentParseError reports an uploaded document without a readable first page
func NewDocumentParseError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryDocumentParse, http.StatusBadRequest)
}

// NewIncompleteVectorError lists the fields that could not be extracted
func NewIncompleteVectorError(missing []string) *AppError {
	errMap := errbuilder.ErrorMap{}
	for _, field := range missing {
		errMap.Set(field, errors.New("value not found in document"))
	}

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("document is missing %d of 8 required fields", len(missing))).
		WithDetails(errbuilder.NewErrDetails(errMap))

	appErr := NewAppError(builder, CategoryIncompleteVector, http.StatusUnprocessableEntity)
	appErr.MissingFields = append([]string(nil), missing...)
	return appErr
}

// NewNotReadyError is returned when an assessment arrives before initialization finished
func NewNotReadyError(state string) *AppError {
	builder := withDetail(errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg("assessment pipeline is not ready"), "state", state)

	return NewAppError(builder, CategoryNotReady, http.StatusServiceUnavailable)
}

// captureStackTrace captures a stack trace for debugging
func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// IsCategory reports whether err is an AppError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category == category
	}
	return false
}

// ErrorHandler is a Gin middleware that provides centralized error handling
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			appErr := ToAppError(c.Errors.Last().Err)
			LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
		}
	}
}

// RecoveryHandler provides panic recovery with structured error responses
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		appErr := NewInternalError(
			fmt.Sprintf("Panic recovered: %v", err),
			fmt.Errorf("%v", err),
		)
		appErr.StackTrace = captureStackTrace()

		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	})
}

// Respond logs err and writes it as the JSON response
func Respond(c *gin.Context, err error) {
	appErr := ToAppError(err)
	LogError(c, appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
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

	if errors.Is(err, context.Canceled) {
		return NewTimeoutError("Request cancelled", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("Request deadline exceeded", err)
	}

	if strings.Contains(err.Error(), "timeout") {
		return NewTimeoutError("Request timeout", err)
	}

	return NewInternalError("An unexpected error occurred", err)
}

// LogError logs an error with appropriate level and context
func LogError(c *gin.Context, err *AppError) {
	errorMsg := err.ErrBuilder.Msg
	errorDetails := err.ErrBuilder.Details

	logEntry := slog.With(
		"error_category", err.Category,
		"error_code", err.ErrBuilder.ErrCode(),
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"),
	)

	switch err.Category {
	case CategoryValidation, CategoryRateLimit, CategoryIncompleteVector, CategoryDocumentParse, CategoryUnauthorized:
		if len(errorDetails.Errors) > 0 {
			logEntry.Warn(errorMsg, "details", errorDetails.Errors)
		} else {
			logEntry.Warn(errorMsg)
		}
	case CategoryTimeout, CategoryNotReady:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Info(errorMsg, "cause", cause)
		} else {
			logEntry.Info(errorMsg)
		}
	default:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Error(errorMsg, "cause", cause)
		} else {
			logEntry.Error(errorMsg)
		}
	}

	if err.StackTrace != "" && (gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode) {
		logEntry.Debug("stack_trace", "trace", err.StackTrace)
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	contextMsg := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", contextMsg, err)
}

// SafeClose safely closes a resource and logs any errors
func SafeClose(closer interface{ Close() error }, resourceName string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		slog.Warn("Failed to close resource",
			"resource", resourceName,
			"error", err)
	}
}

// SafeExecute executes a function and recovers from panics
func SafeExecute(fn func(), panicHandler func(interface{})) {
	defer func() {
		if r := recover(); r != nil {
			if panicHandler != nil {
				panicHandler(r)
			} else {
				slog.Error("Panic in safe execution", "panic", r)
			}
		}
	}()

	fn()
}
