// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package studio

import (
	"context"

	"github.com/pixagen/pixagen/pkg/pagination"
)

// PromptRepository defines the data access contract for prompts.
//
// # Implementations
//
// The canonical implementation for Pixagen is PostgreSQL (store_postgres.go).
type PromptRepository interface {
	// Create persists a new prompt and fills in its ID.
	Create(ctx context.Context, prompt *Prompt) error

	// FindByID returns the prompt with the given ID.
	//
	// Returns [apperr.NotFound] if it does not exist.
	FindByID(ctx context.Context, id int64) (*Prompt, error)

	// List returns a page of prompts, newest first, plus the total count.
	// ownerID of 0 means "all owners" (moderator view).
	List(ctx context.Context, ownerID int64, params pagination.Params) ([]*Prompt, int64, error)
}

// ImageRepository defines the data access contract for images and their
// moderation audit trail.
type ImageRepository interface {
	// Create persists a new image and fills in its ID. Status defaults to
	// PENDING when unset.
	Create(ctx context.Context, image *Image) error

	// FindByID returns the image with the given ID.
	//
	// Returns [apperr.NotFound] if it does not exist.
	FindByID(ctx context.Context, id int64) (*Image, error)

	// List returns a page of images, newest first, plus the total count.
	// ownerID of 0 means "all owners" (moderator view).
	List(ctx context.Context, ownerID int64, params pagination.Params) ([]*Image, int64, error)

	// Review atomically updates the image status and appends the
	// corresponding [ImageAction] in a single transaction.
	Review(ctx context.Context, image *Image, action *ImageAction) error
}
