package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Property: every error response shares the same envelope
func TestProperty_ErrorsHaveConsistentStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	codes := []int{
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}

	properties.Property("error envelope carries code, message and timestamp", prop.ForAll(
		func(message string, pick int) bool {
			statusCode := codes[pick%len(codes)]

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode || w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if response.Error.Code != http.StatusText(statusCode) || response.Error.Message != message {
				return false
			}

			_, err := time.Parse(time.RFC3339, response.Error.Timestamp)
			return err == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, []ValidationError{NewValidationError("price", "gte=0")})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var response struct {
		Error struct {
			Message string `json:"message"`
			Details struct {
				ValidationErrors []ValidationError `json:"validation_errors"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "invalid input", response.Error.Message)
	require.Len(t, response.Error.Details.ValidationErrors, 1)
	assert.Equal(t, ValidationError{
		Field:      "price",
		Constraint: "gte=0",
		Message:    "Value must be greater than or equal to 0",
	}, response.Error.Details.ValidationErrors[0])
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "internal server error", response.Error.Message)
}

func TestRespondNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	RespondNoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestRespondWithConversionErrors(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithConversionErrors(w, []ConversionError{{Field: "price", Value: "1e-9999", Message: "too precise"}})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var response struct {
		Error struct {
			Message string `json:"message"`
			Details struct {
				ConversionErrors []ConversionError `json:"conversion_errors"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "invalid input", response.Error.Message)
	assert.Equal(t, []ConversionError{{Field: "price", Value: "1e-9999", Message: "too precise"}}, response.Error.Details.ConversionErrors)
}
