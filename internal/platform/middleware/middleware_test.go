// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixagen/pixagen/internal/platform/middleware"
	"github.com/pixagen/pixagen/internal/platform/sec"
)

// fakeAppConfig satisfies middleware.AppConfig for CORS tests.
type fakeAppConfig struct {
	dev bool
}

func (f fakeAppConfig) IsDevelopment() bool { return f.dev }

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

/*
TestStructuredLogger_UserID verifies that the completion log line carries the
user ID the gate resolved, even though the gate runs downstream of the logger
and attaches the identity to a child context.
*/
func TestStructuredLogger_UserID(t *testing.T) {
	codec, resolver := newGateFixture(t)

	chain := func(buffer *bytes.Buffer) http.Handler {
		logger := slog.New(slog.NewJSONHandler(buffer, nil))
		gate := middleware.Authenticate(codec, resolver, []string{"/health"}, false)
		return middleware.StructuredLogger(logger)(gate(okHandler))
	}

	t.Run("authenticated_request_logs_user_id", func(t *testing.T) {
		token, err := codec.IssueAccess(7, "alice@example.com", sec.RoleUser)
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)
		request.Header.Set("Authorization", "Bearer "+token)

		var buffer bytes.Buffer
		recorder := httptest.NewRecorder()
		chain(&buffer).ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, buffer.String(), `"user_id":"7"`)
	})

	t.Run("public_request_omits_user_id", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/health", nil)

		var buffer bytes.Buffer
		recorder := httptest.NewRecorder()
		chain(&buffer).ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, buffer.String(), "http_request_finished")
		assert.NotContains(t, buffer.String(), "user_id")
	})

	t.Run("rejected_request_omits_user_id", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)

		var buffer bytes.Buffer
		recorder := httptest.NewRecorder()
		chain(&buffer).ServeHTTP(recorder, request)

		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.NotContains(t, buffer.String(), "user_id")
	})
}

/*
TestCORS_PreflightBeforeGate pins the server chain ordering contract: browser
preflight OPTIONS requests never carry Authorization, so CORS must answer
them before the authentication gate can 401 them.
*/
func TestCORS_PreflightBeforeGate(t *testing.T) {
	codec, resolver := newGateFixture(t)

	// Same order as the server's middleware chain.
	chain := middleware.CORS(fakeAppConfig{})(
		middleware.Authenticate(codec, resolver, nil, false)(okHandler))

	request := httptest.NewRequest(http.MethodOptions, "/api/user/prompts", nil)
	request.Header.Set("Origin", "https://studio.pixagen.app")
	request.Header.Set("Access-Control-Request-Method", http.MethodGet)

	recorder := httptest.NewRecorder()
	chain.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://studio.pixagen.app",
		recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", recorder.Header().Get("Access-Control-Allow-Credentials"))
}

/*
TestCORS_ActualRequestStillGated confirms the reordering does not weaken the
gate: a non-preflight cross-origin request without a token is still rejected,
but now with CORS headers so the browser can surface the 401 to the caller.
*/
func TestCORS_ActualRequestStillGated(t *testing.T) {
	codec, resolver := newGateFixture(t)

	chain := middleware.CORS(fakeAppConfig{})(
		middleware.Authenticate(codec, resolver, nil, false)(okHandler))

	request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)
	request.Header.Set("Origin", "https://studio.pixagen.app")

	recorder := httptest.NewRecorder()
	chain.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "https://studio.pixagen.app",
		recorder.Header().Get("Access-Control-Allow-Origin"))
}
