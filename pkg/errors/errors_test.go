package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpstreamUnavailableCarriesCauseMessage(t *testing.T) {
	cause := errors.New("GET sources: 503 Service Unavailable")
	err := NewUpstreamUnavailableError("Dog", cause)

	assert.Contains(t, err.Error(), "503 Service Unavailable")
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"upstream", NewUpstreamUnavailableError("Dog", nil), IsUpstreamUnavailable},
		{"resolve", NewResolveFailedError("Dog", errors.New("dial tcp")), IsResolveFailed},
		{"no article", NewNoArticleAvailableError(6, nil), IsNoArticleAvailable},
		{"no links", NewNoLinksFoundError("Wikipedia:Vital_articles"), IsNoLinksFound},
		{"validation", NewValidationError("title is required"), IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("query handler failed: %w", tt.err)
			assert.True(t, tt.check(wrapped))
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}

func TestSelectionErrorsCarryDetails(t *testing.T) {
	noArticle := NewNoArticleAvailableError(6, nil)
	assert.Equal(t, 6, noArticle.Details["attempts"])

	noLinks := NewNoLinksFoundError("Wikipedia:Vital_articles")
	assert.Equal(t, "Wikipedia:Vital_articles", noLinks.Details["category"])
	assert.Equal(t, http.StatusNotFound, noLinks.HTTPStatus)
}

func TestErrorHandler_Handle(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)

	t.Run("upstream failures get the generic retry message", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/articles/Dog", nil)
		r.Header.Set("X-Request-ID", "req-1")

		handler.Handle(w, r, NewUpstreamUnavailableError("Dog", errors.New("timeout")))

		require.Equal(t, http.StatusBadGateway, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Error)
		assert.Equal(t, string(ErrorTypeUpstreamUnavailable), body.Type)
		assert.Equal(t, genericRetryMessage, body.Message)
		assert.Equal(t, "req-1", body.RequestID)
	})

	t.Run("validation message is passed through", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		handler.Handle(w, r, NewValidationError("title is required"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title is required")
	})

	t.Run("unknown errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		handler.Handle(w, r, errors.New("secret detail"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret detail")
	})
}

func TestErrorHandler_MiddlewareRecoversPanics(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("test panic")
	})).ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}
