// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer and the authentication middleware.
package sec

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pixagen/pixagen/internal/platform/constants"
)

// Token type discriminators embedded in the "typ" claim.
//
// # Why a discriminator?
//
// Access and refresh tokens are signed with different secrets, but a defense
// in depth: even if both secrets were ever configured equal by mistake, the
// typ check still prevents a refresh token from authorizing a request.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrTokenExpired is returned when a token's exp claim is in the past.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenMalformed is returned for any structural, signature, or
	// claim-shape failure that is not a plain expiry.
	ErrTokenMalformed = errors.New("sec: token malformed")
)

// TokenClaims is the payload embedded inside a Pixagen JWT.
//
// Access tokens carry Email and Role so handlers can log and authorize
// without re-reading the claims; refresh tokens deliberately omit both to
// minimize staleness if the user's role changes between refreshes.
type TokenClaims struct {
	jwt.RegisteredClaims

	// TokenType distinguishes access from refresh tokens ("typ" claim).
	TokenType string `json:"typ"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
}

// UserID parses the numeric user identifier from the subject claim.
func (c *TokenClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric subject", ErrTokenMalformed)
	}
	return id, nil
}

// TokenConfig holds the immutable signing configuration for a [TokenCodec].
//
// It is constructed once at startup from the environment and passed in by
// value; there is no mutable global secret state anywhere in the codebase.
type TokenConfig struct {
	// AccessSecret signs access tokens. Must differ from RefreshSecret so a
	// compromise of one secret cannot forge the other token class.
	AccessSecret []byte

	// RefreshSecret signs refresh tokens.
	RefreshSecret []byte

	// AccessTTL is the access-token lifetime. Zero means the platform default.
	AccessTTL time.Duration

	// RefreshTTL is the refresh-token lifetime. Zero means the platform default.
	RefreshTTL time.Duration

	// Issuer is the standard 'iss' claim.
	Issuer string
}

// TokenCodec issues and verifies signed, time-bound identity tokens (HS256).
type TokenCodec struct {
	config TokenConfig
}

// NewTokenCodec validates the configuration and returns a ready codec.
func NewTokenCodec(config TokenConfig) (*TokenCodec, error) {
	if len(config.AccessSecret) == 0 || len(config.RefreshSecret) == 0 {
		return nil, errors.New("sec: both access and refresh secrets are required")
	}
	if string(config.AccessSecret) == string(config.RefreshSecret) {
		return nil, errors.New("sec: access and refresh secrets must be distinct")
	}

	if config.AccessTTL <= 0 {
		config.AccessTTL = constants.DefaultAccessTokenTTL
	}
	if config.RefreshTTL <= 0 {
		config.RefreshTTL = constants.DefaultRefreshTokenTTL
	}

	return &TokenCodec{config: config}, nil
}

// IssueAccess creates a short-lived access token asserting the user's identity.
//
// # Claims
//
//	{sub: <userID>, typ: "access", email, role, iat, exp: now + AccessTTL}
func (codec *TokenCodec) IssueAccess(userID int64, email string, role Role) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    codec.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(codec.config.AccessTTL)),
		},
		TokenType: TokenTypeAccess,
		Email:     email,
		Role:      string(role),
	}

	return codec.sign(claims, codec.config.AccessSecret)
}

// IssueRefresh creates a long-lived refresh token.
//
// It carries only the subject: role and email are re-resolved from the
// database when the token is redeemed, so a role change takes effect on the
// next refresh at the latest.
func (codec *TokenCodec) IssueRefresh(userID int64) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    codec.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(codec.config.RefreshTTL)),
		},
		TokenType: TokenTypeRefresh,
	}

	return codec.sign(claims, codec.config.RefreshSecret)
}

// VerifyAccess validates an access token's signature, expiry, and type.
func (codec *TokenCodec) VerifyAccess(tokenString string) (*TokenClaims, error) {
	return codec.verify(tokenString, codec.config.AccessSecret, TokenTypeAccess)
}

// VerifyRefresh validates a refresh token's signature, expiry, and type.
func (codec *TokenCodec) VerifyRefresh(tokenString string) (*TokenClaims, error) {
	return codec.verify(tokenString, codec.config.RefreshSecret, TokenTypeRefresh)
}

// AccessTTL exposes the configured access-token lifetime (for expires_in payloads).
func (codec *TokenCodec) AccessTTL() time.Duration { return codec.config.AccessTTL }

// sign serializes and signs the claims with HS256.
func (codec *TokenCodec) sign(claims TokenClaims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

// verify decodes the token against the given secret and checks expiry,
// signing algorithm, and the typ discriminator.
//
// # Errors
//   - [ErrTokenExpired] when exp has passed.
//   - [ErrTokenMalformed] for signature, structure, or type mismatches.
func (codec *TokenCodec) verify(tokenString string, secret []byte, wantType string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	// Reject cross-use: an access token presented where a refresh token is
	// required, or vice versa.
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: token type %q, want %q", ErrTokenMalformed, claims.TokenType, wantType)
	}

	return claims, nil
}
