package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(checks map[string]Check) *gin.Engine {
	r := gin.New()
	h := Health(checks)
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	r.OPTIONS("/healthz", h)
	return r
}

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("down") }

func TestHealth_ResponseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		checks         map[string]Check
		expectedStatus int
		emptyBody      bool
	}{
		{"GET no checks", http.MethodGet, nil, http.StatusOK, false},
		{"GET healthy", http.MethodGet, map[string]Check{"db": ok, "redis": ok}, http.StatusOK, false},
		{"GET degraded", http.MethodGet, map[string]Check{"db": down}, http.StatusServiceUnavailable, false},
		{"HEAD healthy", http.MethodHead, map[string]Check{"db": ok}, http.StatusOK, true},
		{"HEAD degraded", http.MethodHead, map[string]Check{"db": down}, http.StatusServiceUnavailable, true},
		{"OPTIONS skips checks", http.MethodOptions, map[string]Check{"db": down}, http.StatusNoContent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			setupRouter(tt.checks).ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.emptyBody {
				assert.Zero(t, w.Body.Len())
			}
		})
	}
}

func TestHealth_Body(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		setupRouter(map[string]Check{"db": ok}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("lists failed checks sorted", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		checks := map[string]Check{"redis": down, "db": down, "cache": ok}
		setupRouter(checks).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		var body struct {
			Status string   `json:"status"`
			Failed []string `json:"failed"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "unavailable", body.Status)
		assert.Equal(t, []string{"db", "redis"}, body.Failed)
	})
}
