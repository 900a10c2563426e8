// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package auth implements account management and token-based authentication
// for the Pixagen platform.
//
// # Architecture
//
// Entities in this file represent the "Truth" of the account domain.
// They have no dependencies on outer layers (like databases or HTTP), which
// keeps the core logic testable and resilient to technology changes.
package auth

import (
	"time"

	"github.com/pixagen/pixagen/internal/platform/sec"
)

// User represents a registered account on the Pixagen platform.
//
// # Rules
//   - Email is unique and stored lowercase.
//   - PasswordHash is generated via Bcrypt exclusively by the Service.
//   - Role is one of the closed [sec.Role] set; unknown values are rejected
//     at the storage boundary.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.Role  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity converts the persisted account into its request-scoped form.
func (user *User) Identity() *sec.Identity {
	return &sec.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
	}
}

// TokenPair bundles the access and refresh tokens issued to a client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // Always "bearer".
	ExpiresIn    int64  `json:"expires_in"` // Access token lifetime in seconds.
}
