// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Account use cases: registration, login, token refresh, and identity
// resolution for authenticated requests.
//
// # Architecture
//
// The service orchestrates domain entities and interacts with storage
// through the [UserRepository] interface. It is technology-agnostic and
// does not know about HTTP or SQL.

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/sec"
	"github.com/pixagen/pixagen/pkg/pagination"
)

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenCodec     *sec.TokenCodec

	// Secret keys that elevate a registration to ADMIN or SUPER_ADMIN.
	// Empty keys disable the corresponding elevation path.
	adminRoleKey      string
	superAdminRoleKey string
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, codec *sec.TokenCodec, adminRoleKey, superAdminRoleKey string) *Service {
	return &Service{
		userRepository:    userRepo,
		tokenCodec:        codec,
		adminRoleKey:      adminRoleKey,
		superAdminRoleKey: superAdminRoleKey,
	}
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	// RoleKey optionally elevates the account's role when it matches one of
	// the configured secret role keys. Unknown keys are silently ignored and
	// the account is created as a regular USER.
	RoleKey string
}

// Register validates, hashes, and persists a brand new user account, then
// signs the account in immediately.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - input: The user-provided registration details.
//
// # Returns
//   - A [*LoginSession] with a fresh token pair and the created profile.
//   - Returns [apperr.Conflict] if the email already exists.
//
// # Business Rules
//   - Emails are unique and stored lowercase.
//   - Default role is USER; elevation requires a matching secret role key.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*LoginSession, error) {
	email := NormalizeEmail(input.Email)

	// ── 1. Uniqueness Check ───────────────────────────────────────────────

	// Verify email uniqueness up front for a client-safe Conflict error.
	// The unique index on users.email remains the authoritative guard
	// against concurrent registrations.
	_, err := service.userRepository.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}
	// Only NotFound proves the email is available. A lookup fault must
	// propagate instead of falling through to the insert.
	if ae := apperr.As(err); ae == nil || ae.HTTPStatus != http.StatusNotFound {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	user := &User{
		Email:        email,
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hashedPassword,
		Role:         service.roleForKey(input.RoleKey),
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// ── 5. Immediate Sign-In ──────────────────────────────────────────────

	tokens, err := service.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &LoginSession{Tokens: *tokens, User: user}, nil
}

// roleForKey maps a secret role key to the role it grants.
func (service *Service) roleForKey(roleKey string) sec.Role {
	switch {
	case roleKey != "" && roleKey == service.superAdminRoleKey:
		return sec.RoleSuperAdmin
	case roleKey != "" && roleKey == service.adminRoleKey:
		return sec.RoleAdmin
	default:
		return sec.RoleUser
	}
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	Tokens TokenPair
	User   *User
}

// Login validates user credentials and issues a token pair.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - email: The account email (case-insensitive).
//   - password: The plain-text password.
//
// # Returns
//   - A pointer to [LoginSession] containing both tokens and the profile.
//   - Returns [apperr.Unauthorized] if credentials do not match.
//
// # Flow
//  1. Lookup user by normalized email.
//  2. Verify password hash using Bcrypt.
//  3. Issue a fresh access/refresh token pair.
func (service *Service) Login(ctx context.Context, email, password string) (*LoginSession, error) {
	// ── 1. Fetch User Profile ─────────────────────────────────────────────

	user, err := service.userRepository.FindByEmail(ctx, NormalizeEmail(email))

	// Return a generic unauthorized error to prevent email enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	// Bcrypt comparison is constant-time, so wrong-password and wrong-email
	// responses are indistinguishable to the caller.
	if !sec.CheckPassword(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	tokens, err := service.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &LoginSession{Tokens: *tokens, User: user}, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
//
// The user is re-resolved from storage so a changed role or a deleted
// account takes effect at most one refresh interval later.
//
// # Returns
//   - Returns [apperr.Unauthorized] if the token is invalid, expired, or
//     the account no longer exists.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*LoginSession, error) {
	// ── 1. Verify Refresh Token ───────────────────────────────────────────

	claims, err := service.tokenCodec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token").WithCause(err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token").WithCause(err)
	}

	// ── 2. Re-resolve Account ─────────────────────────────────────────────

	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found")
	}

	// ── 3. Issue New Tokens ───────────────────────────────────────────────

	tokens, err := service.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &LoginSession{Tokens: *tokens, User: user}, nil
}

// ResolveIdentity loads the request-scoped identity for an authenticated
// user ID. It backs the authentication middleware, so token claims are
// never trusted for role decisions; the role always comes from storage.
//
// # Returns
//   - Returns [apperr.NotFound] if the account does not exist.
func (service *Service) ResolveIdentity(ctx context.Context, userID int64) (*sec.Identity, error) {
	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

// Profile returns the full account record for an authenticated user ID.
func (service *Service) Profile(ctx context.Context, userID int64) (*User, error) {
	return service.userRepository.FindByID(ctx, userID)
}

// ListUsers returns a page of accounts plus the total count.
// Used by the admin dashboard only; authorization is enforced upstream
// by the role middleware.
func (service *Service) ListUsers(ctx context.Context, params pagination.Params) ([]*User, int64, error) {
	return service.userRepository.List(ctx, params)
}

// issueTokens signs an access/refresh pair for the given account.
func (service *Service) issueTokens(user *User) (*TokenPair, error) {
	accessToken, err := service.tokenCodec.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenCodec.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(service.tokenCodec.AccessTTL().Seconds()),
	}, nil
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
