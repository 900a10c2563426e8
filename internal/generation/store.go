// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package generation

import (
	"context"

	"github.com/pixagen/pixagen/pkg/pagination"
)

// SessionRepository defines the data access contract for generation sessions.
//
// # Implementations
//
// The canonical implementation for Pixagen is PostgreSQL (store_postgres.go).
type SessionRepository interface {
	// Create persists a new session and fills in its ID.
	Create(ctx context.Context, session *Session) error

	// FindByID returns the session with the given ID.
	//
	// Returns [apperr.NotFound] if it does not exist.
	FindByID(ctx context.Context, id int64) (*Session, error)

	// FindDetails returns the session joined with its owning account.
	//
	// Returns [apperr.NotFound] if it does not exist.
	FindDetails(ctx context.Context, id int64) (*SessionDetails, error)

	// Update persists changes to the session's mutable fields
	// (prompt, output, approval, attempts) and bumps UpdatedAt.
	Update(ctx context.Context, session *Session) error

	// List returns a page of sessions joined with their owning accounts,
	// newest first, plus the total count. ownerID of 0 means "all owners".
	List(ctx context.Context, ownerID int64, params pagination.Params) ([]*SessionDetails, int64, error)
}
