// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package sec

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixagen/pixagen/internal/platform/apperr"
)

const (
	// MinPasswordLength is the minimum accepted password length in characters.
	MinPasswordLength = 6

	// maxPasswordBytes is bcrypt's fixed input ceiling. Longer passwords are
	// truncated on a valid UTF-8 boundary before hashing.
	maxPasswordBytes = 72
)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// # Rules
//   - Empty or too-short passwords fail with [apperr.ValidationError].
//   - Input longer than 72 bytes is truncated UTF-8-safely (bcrypt ignores
//     bytes past its limit, and newer implementations reject them outright).
//   - bcrypt salts every call, so the same password never hashes twice to the
//     same string.
func HashPassword(plainTextPassword string) (string, error) {
	if len(plainTextPassword) == 0 {
		return "", apperr.ValidationError("Password is required")
	}
	if utf8.RuneCountInString(plainTextPassword) < MinPasswordLength {
		return "", apperr.ValidationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	truncated := truncatePassword(plainTextPassword)

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(truncated), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a plain-text password with its hashed version.
//
// It applies the same truncation rule as [HashPassword] and relies on bcrypt's
// constant-time comparison. A mismatch returns false, never an error.
func CheckPassword(plainTextPassword, existingHash string) bool {
	truncated := truncatePassword(plainTextPassword)
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(truncated))
	return err == nil
}

// truncatePassword caps the password at 72 bytes without splitting a
// multi-byte character. A UTF-8 rune is at most 4 bytes, so backing off up to
// 4 bytes from the cut point always lands on a valid boundary.
func truncatePassword(password string) string {
	if len(password) <= maxPasswordBytes {
		return password
	}

	for cut := maxPasswordBytes; cut > maxPasswordBytes-4; cut-- {
		candidate := password[:cut]
		if utf8.ValidString(candidate) {
			return candidate
		}
	}

	// Unreachable for valid UTF-8 input; kept as a hard floor.
	return password[:maxPasswordBytes-4]
}
