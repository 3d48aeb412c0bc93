package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		category ErrorCategory
		status   int
		message  string
		fatal    bool
	}{
		{
			name:     "validation",
			err:      NewValidationError("bad input", "glucose"),
			category: CategoryValidation,
			status:   http.StatusBadRequest,
			message:  "[VALIDATION_ERROR] bad input",
		},
		{
			name:     "data load",
			err:      NewDataLoadError("reference dataset missing", fmt.Errorf("open: no such file")),
			category: CategoryDataLoad,
			status:   http.StatusInternalServerError,
			message:  "[DATA_LOAD_ERROR] reference dataset missing",
			fatal:    true,
		},
		{
			name:     "degenerate feature",
			err:      NewDegenerateFeatureError("Insulin"),
			category: CategoryDegenerateFeature,
			status:   http.StatusInternalServerError,
			message:  "[DEGENERATE_FEATURE_ERROR] feature Insulin has zero variance in the reference dataset",
			fatal:    true,
		},
		{
			name:     "training",
			err:      NewTrainingError("need two classes"),
			category: CategoryTraining,
			status:   http.StatusInternalServerError,
			message:  "[TRAINING_ERROR] need two classes",
			fatal:    true,
		},
		{
			name:     "document parse",
			err:      NewDocumentParseError("could not process document", nil),
			category: CategoryDocumentParse,
			status:   http.StatusBadRequest,
			message:  "[DOCUMENT_PARSE_ERROR] could not process document",
		},
		{
			name:     "incomplete vector",
			err:      NewIncompleteVectorError([]string{"BMI"}),
			category: CategoryIncompleteVector,
			status:   http.StatusUnprocessableEntity,
			message:  "[INCOMPLETE_VECTOR_ERROR] document is missing 1 of 8 required fields",
		},
		{
			name:     "not ready",
			err:      NewNotReadyError("DataLoaded"),
			category: CategoryNotReady,
			status:   http.StatusServiceUnavailable,
			message:  "[NOT_READY] assessment pipeline is not ready",
		},
		{
			name:     "rate limit",
			err:      NewRateLimitError("60"),
			category: CategoryRateLimit,
			status:   http.StatusTooManyRequests,
			message:  "[RATE_LIMIT_EXCEEDED] Rate limit exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.Equal(t, tt.fatal, tt.err.Fatal())
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestIncompleteVectorError_MissingFields(t *testing.T) {
	missing := []string{"BMI", "Age"}
	err := NewIncompleteVectorError(missing)
	missing[0] = "mutated"

	assert.Equal(t, []string{"BMI", "Age"}, err.MissingFields)
}

func TestIsCategory(t *testing.T) {
	err := NewTrainingError("empty dataset")
	wrapped := fmt.Errorf("initialize: %w", err)

	assert.True(t, IsCategory(err, CategoryTraining))
	assert.True(t, IsCategory(wrapped, CategoryTraining))
	assert.False(t, IsCategory(wrapped, CategoryDataLoad))
	assert.False(t, IsCategory(fmt.Errorf("plain"), CategoryTraining))
	assert.False(t, IsCategory(nil, CategoryTraining))
}

func TestToAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	assert.Nil(t, ToAppError(nil))

	original := NewNotReadyError("Uninitialized")
	assert.Same(t, original, ToAppError(fmt.Errorf("wrapped: %w", original)))

	assert.Equal(t, CategoryTimeout, ToAppError(context.DeadlineExceeded).Category)
	assert.Equal(t, CategoryTimeout, ToAppError(context.Canceled).Category)
	assert.Equal(t, CategoryInternal, ToAppError(fmt.Errorf("boom")).Category)
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored"))

	base := fmt.Errorf("base")
	err := WrapError(base, "loading %s", "dataset")
	assert.EqualError(t, err, "loading dataset: base")
	assert.ErrorIs(t, err, base)
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(NewIncompleteVectorError([]string{"Glucose"}))
	})
	r.GET("/panic", RecoveryHandler(), func(c *gin.Context) {
		panic("kaboom")
	})

	t.Run("error is rendered with its status", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/fail", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "incomplete_vector", body["category"])
		assert.Equal(t, []interface{}{"Glucose"}, body["missing_fields"])
	})

	t.Run("panic is recovered as internal error", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/panic", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSafeExecute(t *testing.T) {
	var recovered interface{}
	SafeExecute(func() { panic("bad page") }, func(r interface{}) { recovered = r })
	assert.Equal(t, "bad page", recovered)
}

func TestValidationErrorWithFields(t *testing.T) {
	err := NewValidationErrorWithFields("Please fill out all fields.", map[string]string{"email": "required"})

	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, map[string]string{"email": "required"}, err.Fields)

	body, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.Contains(t, string(body), `"error":"Please fill out all fields."`)
	assert.Contains(t, string(body), `"fields":{"email":"required"}`)
}
