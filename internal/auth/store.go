// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package auth

import (
	"context"

	"github.com/pixagen/pixagen/pkg/pagination"
)

// UserRepository is the storage contract for user accounts. The production
// implementation is PostgreSQL (store_postgres.go); tests substitute an
// in-memory fake. Keeping the contract apart from the entity in user.go lets
// storage changes and entity changes land in separate reviews.
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail returns the account with the given (lowercased) email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a brand-new user account and fills in its ID.
	//
	// Returns [apperr.Conflict] if the email is already registered.
	Create(ctx context.Context, user *User) error

	// List returns a page of accounts ordered by creation time, newest
	// first, together with the total account count. Used by the admin
	// dashboard only.
	List(ctx context.Context, params pagination.Params) ([]*User, int64, error)
}
