// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/validate"
)

/*
TestValidator_Required covers the mandatory-field rule, including values that
are only whitespace.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"non_empty_passes", "starry night", false},
		{"empty_fails", "", true},
		{"whitespace_only_fails", " \t\n ", true},
		{"padded_value_passes", "  prompt  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Required("prompt", tt.value).Err()

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Equal(t, "prompt", ae.Details[0].Field)
		})
	}
}

/*
TestValidator_Lengths checks that MinLen and MaxLen count runes rather than
bytes, so multibyte prompts are measured fairly.
*/
func TestValidator_Lengths(t *testing.T) {
	t.Run("min_boundary", func(t *testing.T) {
		v := &validate.Validator{}
		assert.NoError(t, v.MinLen("title", "abc", 3).Err())

		v = &validate.Validator{}
		assert.Error(t, v.MinLen("title", "ab", 3).Err())
	})

	t.Run("max_boundary", func(t *testing.T) {
		v := &validate.Validator{}
		assert.NoError(t, v.MaxLen("title", strings.Repeat("x", 10), 10).Err())

		v = &validate.Validator{}
		assert.Error(t, v.MaxLen("title", strings.Repeat("x", 11), 10).Err())
	})

	t.Run("counts_runes_not_bytes", func(t *testing.T) {
		// 4 runes, 12 bytes.
		v := &validate.Validator{}
		assert.NoError(t, v.MaxLen("title", "日本語絵", 4).Err())
	})
}

/*
TestValidator_Email checks the email format rule.
*/
func TestValidator_Email(t *testing.T) {
	for _, email := range []string{"test@example.com", "a+tag@sub.example.org"} {
		v := &validate.Validator{}
		assert.NoError(t, v.Email("email", email).Err(), email)
	}

	for _, email := range []string{"", "invalid-email", "test@", "@example.com"} {
		v := &validate.Validator{}
		assert.Error(t, v.Email("email", email).Err(), email)
	}
}

/*
TestValidator_OneOf checks the allowed-set rule used for review actions.
*/
func TestValidator_OneOf(t *testing.T) {
	t.Run("member_passes", func(t *testing.T) {
		v := &validate.Validator{}
		assert.NoError(t, v.OneOf("action", "ACCEPT", "ACCEPT", "REJECT").Err())
	})

	t.Run("non_member_fails", func(t *testing.T) {
		v := &validate.Validator{}
		err := v.OneOf("action", "MAYBE", "ACCEPT", "REJECT").Err()
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "action", ae.Details[0].Field)
	})
}

/*
TestValidator_Custom checks the escape-hatch rule.
*/
func TestValidator_Custom(t *testing.T) {
	v := &validate.Validator{}
	err := v.Custom("attempts", true, "Must be at least 1").Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "attempts", ae.Details[0].Field)
	assert.Equal(t, "Must be at least 1", ae.Details[0].Message)
}

/*
TestValidator_Accumulation verifies that a chain reports every failing field
at once instead of stopping at the first.
*/
func TestValidator_Accumulation(t *testing.T) {
	t.Run("all_rules_pass", func(t *testing.T) {
		v := &validate.Validator{}
		err := v.
			Required("name", "dev").
			MinLen("name", "dev", 3).
			MaxLen("name", "dev", 10).
			Email("email", "dev@pixagen.app").
			Err()

		assert.NoError(t, err)
		assert.False(t, v.HasErrors())
	})

	t.Run("failures_accumulate", func(t *testing.T) {
		v := &validate.Validator{}
		err := v.
			Required("name", "").
			MinLen("name", "a", 5).
			Email("email", "not-an-email").
			Err()

		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Len(t, ae.Details, 3)
	})
}
