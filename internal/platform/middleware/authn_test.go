// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/ctxutil"
	"github.com/pixagen/pixagen/internal/platform/middleware"
	"github.com/pixagen/pixagen/internal/platform/sec"
)

// fakeResolver is an in-memory IdentityResolver for gate tests.
type fakeResolver struct {
	identities map[int64]*sec.Identity
	failWith   error
	lookups    int
}

func (f *fakeResolver) ResolveIdentity(_ context.Context, userID int64) (*sec.Identity, error) {
	f.lookups++
	if f.failWith != nil {
		return nil, f.failWith
	}
	identity, ok := f.identities[userID]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return identity, nil
}

func newGateFixture(t *testing.T) (*sec.TokenCodec, *fakeResolver) {
	t.Helper()

	codec, err := sec.NewTokenCodec(sec.TokenConfig{
		AccessSecret:  []byte("gate-access-secret"),
		RefreshSecret: []byte("gate-refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	resolver := &fakeResolver{identities: map[int64]*sec.Identity{
		7: {UserID: 7, Email: "alice@example.com", Username: "alice", Role: sec.RoleUser},
	}}
	return codec, resolver
}

// serveGate runs one request through the gate into a capture handler.
func serveGate(codec *sec.TokenCodec, resolver *fakeResolver, allowList []string, devMode bool, request *http.Request) (*httptest.ResponseRecorder, *sec.Identity) {
	var seen *sec.Identity
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetIdentity(request.Context())
		writer.WriteHeader(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	middleware.Authenticate(codec, resolver, allowList, devMode)(next).ServeHTTP(recorder, request)
	return recorder, seen
}

func decodeDetail(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body.Detail
}

/*
TestAuthenticate_AllowList checks that allow-listed prefixes bypass the gate
entirely, even with garbage credentials attached.
*/
func TestAuthenticate_AllowList(t *testing.T) {
	codec, resolver := newGateFixture(t)

	request := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	request.Header.Set("Authorization", "Bearer garbage")

	recorder, seen := serveGate(codec, resolver, []string{"/api/auth/login", "/health"}, false, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, seen)                  // No identity attached on public paths.
	assert.Equal(t, 0, resolver.lookups) // The resolver is never consulted.
}

/*
TestAuthenticate_HeaderParsing covers the missing/malformed Authorization
header cases, which must all produce the same 401 body.
*/
func TestAuthenticate_HeaderParsing(t *testing.T) {
	codec, resolver := newGateFixture(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing_header", ""},
		{"no_bearer_prefix", "Token abc123"},
		{"token_only", "abc123"},
		{"three_parts", "Bearer abc def"},
		{"empty_scheme", " abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			recorder, _ := serveGate(codec, resolver, nil, false, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, "Missing or malformed authorization header", decodeDetail(t, recorder))
		})
	}
}

/*
TestAuthenticate_BearerCaseInsensitive checks that the scheme comparison
accepts any capitalization of "bearer".
*/
func TestAuthenticate_BearerCaseInsensitive(t *testing.T) {
	codec, resolver := newGateFixture(t)

	token, err := codec.IssueAccess(7, "alice@example.com", sec.RoleUser)
	require.NoError(t, err)

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)
		request.Header.Set("Authorization", scheme+" "+token)

		recorder, _ := serveGate(codec, resolver, nil, false, request)
		assert.Equal(t, http.StatusOK, recorder.Code, scheme)
	}
}

/*
TestAuthenticate_InvalidToken covers expired, cross-class, and garbage tokens.
*/
func TestAuthenticate_InvalidToken(t *testing.T) {
	codec, resolver := newGateFixture(t)

	refreshToken, err := codec.IssueRefresh(7)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"refresh_as_access", refreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)
			request.Header.Set("Authorization", "Bearer "+tt.token)

			recorder, _ := serveGate(codec, resolver, nil, false, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, "Invalid or expired token", decodeDetail(t, recorder))
		})
	}
}

/*
TestAuthenticate_DevDetail checks that the underlying decode error is echoed
only in development mode.
*/
func TestAuthenticate_DevDetail(t *testing.T) {
	codec, resolver := newGateFixture(t)

	makeRequest := func() *http.Request {
		request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)
		request.Header.Set("Authorization", "Bearer not.a.jwt")
		return request
	}

	t.Run("production_hides_cause", func(t *testing.T) {
		recorder, _ := serveGate(codec, resolver, nil, false, makeRequest())
		assert.NotContains(t, recorder.Body.String(), "dev_detail")
	})

	t.Run("development_echoes_cause", func(t *testing.T) {
		recorder, _ := serveGate(codec, resolver, nil, true, makeRequest())
		assert.Contains(t, recorder.Body.String(), "dev_detail")
	})
}

/*
TestAuthenticate_ResolverOutcomes covers user-not-found versus persistence
failure: the former is an authentication error, the latter a server fault.
*/
func TestAuthenticate_ResolverOutcomes(t *testing.T) {
	codec, resolver := newGateFixture(t)

	t.Run("unknown_user_is_401", func(t *testing.T) {
		token, err := codec.IssueAccess(999, "ghost@example.com", sec.RoleUser)
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)
		request.Header.Set("Authorization", "Bearer "+token)

		recorder, _ := serveGate(codec, resolver, nil, false, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "User not found", decodeDetail(t, recorder))
	})

	t.Run("store_failure_is_500", func(t *testing.T) {
		token, err := codec.IssueAccess(7, "alice@example.com", sec.RoleUser)
		require.NoError(t, err)

		failing := &fakeResolver{failWith: apperr.Internal(nil)}
		request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)
		request.Header.Set("Authorization", "Bearer "+token)

		recorder, _ := serveGate(codec, failing, nil, false, request)
		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}

/*
TestAuthenticate_AttachesIdentity verifies the happy path: a valid token
results in exactly one resolver lookup and the resolved identity in context.
*/
func TestAuthenticate_AttachesIdentity(t *testing.T) {
	codec, resolver := newGateFixture(t)

	token, err := codec.IssueAccess(7, "alice@example.com", sec.RoleUser)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/api/user/prompts", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	recorder, seen := serveGate(codec, resolver, nil, false, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(7), seen.UserID)
	assert.Equal(t, "alice@example.com", seen.Email)
	assert.Equal(t, sec.RoleUser, seen.Role)
	assert.Equal(t, 1, resolver.lookups)
}
