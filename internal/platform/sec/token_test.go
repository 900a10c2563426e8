// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixagen/pixagen/internal/platform/sec"
)

func newCodec(t *testing.T, accessTTL, refreshTTL time.Duration) *sec.TokenCodec {
	t.Helper()

	codec, err := sec.NewTokenCodec(sec.TokenConfig{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Issuer:        "pixagen.test",
	})
	require.NoError(t, err)
	return codec
}

/*
TestNewTokenCodec_Validation checks the constructor's secret requirements.
*/
func TestNewTokenCodec_Validation(t *testing.T) {
	t.Run("missing_secret", func(t *testing.T) {
		_, err := sec.NewTokenCodec(sec.TokenConfig{AccessSecret: []byte("only-one")})
		require.Error(t, err)
	})

	t.Run("equal_secrets_rejected", func(t *testing.T) {
		_, err := sec.NewTokenCodec(sec.TokenConfig{
			AccessSecret:  []byte("same"),
			RefreshSecret: []byte("same"),
		})
		require.Error(t, err)
	})
}

/*
TestTokenCodec_AccessRoundtrip verifies claims survive the sign/verify cycle.
*/
func TestTokenCodec_AccessRoundtrip(t *testing.T) {
	codec := newCodec(t, time.Minute, time.Hour)

	token, err := codec.IssueAccess(42, "alice@example.com", sec.RoleAdmin)
	require.NoError(t, err)

	claims, err := codec.VerifyAccess(token)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, sec.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, string(sec.RoleAdmin), claims.Role)
	assert.Equal(t, "pixagen.test", claims.Issuer)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

/*
TestTokenCodec_RefreshRoundtrip checks that refresh tokens carry only the
subject, never email or role.
*/
func TestTokenCodec_RefreshRoundtrip(t *testing.T) {
	codec := newCodec(t, time.Minute, time.Hour)

	token, err := codec.IssueRefresh(42)
	require.NoError(t, err)

	claims, err := codec.VerifyRefresh(token)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, sec.TokenTypeRefresh, claims.TokenType)
	assert.Empty(t, claims.Email)
	assert.Empty(t, claims.Role)
}

/*
TestTokenCodec_CrossUse verifies that access and refresh tokens are not
interchangeable in either direction.
*/
func TestTokenCodec_CrossUse(t *testing.T) {
	codec := newCodec(t, time.Minute, time.Hour)

	accessToken, err := codec.IssueAccess(1, "a@example.com", sec.RoleUser)
	require.NoError(t, err)
	refreshToken, err := codec.IssueRefresh(1)
	require.NoError(t, err)

	t.Run("access_rejected_as_refresh", func(t *testing.T) {
		_, err := codec.VerifyRefresh(accessToken)
		require.ErrorIs(t, err, sec.ErrTokenMalformed)
	})

	t.Run("refresh_rejected_as_access", func(t *testing.T) {
		_, err := codec.VerifyAccess(refreshToken)
		require.ErrorIs(t, err, sec.ErrTokenMalformed)
	})
}

/*
TestTokenCodec_WrongSecret checks that a token signed elsewhere never verifies.
*/
func TestTokenCodec_WrongSecret(t *testing.T) {
	codec := newCodec(t, time.Minute, time.Hour)

	other, err := sec.NewTokenCodec(sec.TokenConfig{
		AccessSecret:  []byte("different-access-secret"),
		RefreshSecret: []byte("different-refresh-secret"),
	})
	require.NoError(t, err)

	foreign, err := other.IssueAccess(1, "a@example.com", sec.RoleUser)
	require.NoError(t, err)

	_, err = codec.VerifyAccess(foreign)
	require.ErrorIs(t, err, sec.ErrTokenMalformed)
}

/*
TestTokenCodec_Expiry checks that an expired token fails with the expiry
sentinel, not the generic malformed error.
*/
func TestTokenCodec_Expiry(t *testing.T) {
	codec := newCodec(t, time.Nanosecond, time.Hour)

	token, err := codec.IssueAccess(1, "a@example.com", sec.RoleUser)
	require.NoError(t, err)

	// The 1ns lifetime has elapsed by the time verification runs.
	time.Sleep(10 * time.Millisecond)

	_, err = codec.VerifyAccess(token)
	require.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenCodec_Garbage covers structurally invalid inputs.
*/
func TestTokenCodec_Garbage(t *testing.T) {
	codec := newCodec(t, time.Minute, time.Hour)

	for _, input := range []string{"", "not-a-jwt", "a.b.c", "  "} {
		_, err := codec.VerifyAccess(input)
		require.ErrorIs(t, err, sec.ErrTokenMalformed)
	}
}
