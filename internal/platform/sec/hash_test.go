// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/sec"
)

/*
TestHashPassword_Roundtrip verifies that a hash produced by HashPassword
verifies against the original password and nothing else.
*/
func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, sec.CheckPassword("correct horse battery staple", hash))
	assert.False(t, sec.CheckPassword("wrong password", hash))
	assert.False(t, sec.CheckPassword("", hash))
}

/*
TestHashPassword_Salting checks that hashing the same password twice never
produces the same string, but both hashes verify.
*/
func TestHashPassword_Salting(t *testing.T) {
	first, err := sec.HashPassword("password123")
	require.NoError(t, err)

	second, err := sec.HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, sec.CheckPassword("password123", first))
	assert.True(t, sec.CheckPassword("password123", second))
}

/*
TestHashPassword_Validation covers the rejection rules for empty and
too-short passwords.
*/
func TestHashPassword_Validation(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"empty", ""},
		{"below_minimum", "abc12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.HashPassword(tt.password)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, 400, ae.HTTPStatus)
		})
	}
}

/*
TestHashPassword_LongMultibyte exercises the 72-byte truncation with
multi-byte characters straddling the boundary. Hashing must neither error
nor split a character, and verification must agree with hashing on the
truncation point.
*/
func TestHashPassword_LongMultibyte(t *testing.T) {
	// 24 three-byte runes = exactly 72 bytes; one more crosses the limit.
	exact := strings.Repeat("猫", 24)
	over := strings.Repeat("猫", 30)

	t.Run("exactly_72_bytes", func(t *testing.T) {
		hash, err := sec.HashPassword(exact)
		require.NoError(t, err)
		assert.True(t, sec.CheckPassword(exact, hash))
	})

	t.Run("over_72_bytes_multibyte", func(t *testing.T) {
		hash, err := sec.HashPassword(over)
		require.NoError(t, err)

		// Same truncation on both sides: the over-long password verifies.
		assert.True(t, sec.CheckPassword(over, hash))

		// Bytes past the cut point cannot matter.
		assert.True(t, sec.CheckPassword(strings.Repeat("猫", 31), hash))
	})

	t.Run("over_72_bytes_ascii", func(t *testing.T) {
		long := strings.Repeat("a", 100)
		hash, err := sec.HashPassword(long)
		require.NoError(t, err)
		assert.True(t, sec.CheckPassword(long, hash))
	})
}
