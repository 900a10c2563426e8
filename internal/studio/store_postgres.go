// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// PostgreSQL implementation of the content storage layer.

package studio

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixagen/pixagen/internal/platform/dberr"
	"github.com/pixagen/pixagen/pkg/pagination"
)

// PostgresPromptRepository implements PromptRepository using pgx.
type PostgresPromptRepository struct {
	pool *pgxpool.Pool
}

// NewPromptRepository creates a new PostgreSQL implementation of PromptRepository.
func NewPromptRepository(pool *pgxpool.Pool) *PostgresPromptRepository {
	return &PostgresPromptRepository{pool: pool}
}

// Create persists a new prompt and fills in its generated ID.
func (repository *PostgresPromptRepository) Create(ctx context.Context, prompt *Prompt) error {
	const query = `
		INSERT INTO prompts (owner_id, text, metadata, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if prompt.CreatedAt.IsZero() {
		prompt.CreatedAt = time.Now()
	}

	err := repository.pool.QueryRow(ctx, query,
		prompt.OwnerID,
		prompt.Text,
		prompt.Metadata,
		prompt.CreatedAt,
	).Scan(&prompt.ID)

	if err != nil {
		return dberr.Wrap(err, "Prompt")
	}

	return nil
}

// FindByID retrieves a prompt by its unique ID.
func (repository *PostgresPromptRepository) FindByID(ctx context.Context, id int64) (*Prompt, error) {
	const query = `
		SELECT id, owner_id, text, metadata, created_at
		FROM prompts
		WHERE id = $1`

	prompt := &Prompt{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&prompt.ID,
		&prompt.OwnerID,
		&prompt.Text,
		&prompt.Metadata,
		&prompt.CreatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Prompt")
	}

	return prompt, nil
}

// List returns a page of prompts, newest first, plus the total count.
//
// ownerID of 0 disables the owner filter (moderator view).
func (repository *PostgresPromptRepository) List(ctx context.Context, ownerID int64, params pagination.Params) ([]*Prompt, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM prompts WHERE ($1 = 0 OR owner_id = $1)`

	var total int64
	if err := repository.pool.QueryRow(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Prompt")
	}

	const query = `
		SELECT id, owner_id, text, metadata, created_at
		FROM prompts
		WHERE ($1 = 0 OR owner_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, ownerID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Prompt")
	}
	defer rows.Close()

	prompts := make([]*Prompt, 0, params.Limit)
	for rows.Next() {
		prompt := &Prompt{}
		if err := rows.Scan(
			&prompt.ID,
			&prompt.OwnerID,
			&prompt.Text,
			&prompt.Metadata,
			&prompt.CreatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "Prompt")
		}
		prompts = append(prompts, prompt)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Prompt")
	}

	return prompts, total, nil
}

// ── Image Repository ─────────────────────────────────────────────────────────

// PostgresImageRepository implements ImageRepository using pgx.
type PostgresImageRepository struct {
	pool *pgxpool.Pool
}

// NewImageRepository creates a new PostgreSQL implementation of ImageRepository.
func NewImageRepository(pool *pgxpool.Pool) *PostgresImageRepository {
	return &PostgresImageRepository{pool: pool}
}

// Create persists a new image record and fills in its generated ID.
func (repository *PostgresImageRepository) Create(ctx context.Context, image *Image) error {
	const query = `
		INSERT INTO images (owner_id, prompt_id, file_url, status, generated_by, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	if image.Status == "" {
		image.Status = ImageStatusPending
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now()
	}

	err := repository.pool.QueryRow(ctx, query,
		image.OwnerID,
		image.PromptID,
		image.FileURL,
		image.Status,
		image.GeneratedBy,
		image.Metadata,
		image.CreatedAt,
	).Scan(&image.ID)

	if err != nil {
		return dberr.Wrap(err, "Image")
	}

	return nil
}

// FindByID retrieves an image by its unique ID.
func (repository *PostgresImageRepository) FindByID(ctx context.Context, id int64) (*Image, error) {
	const query = `
		SELECT id, owner_id, prompt_id, file_url, status, generated_by, metadata, created_at
		FROM images
		WHERE id = $1`

	image := &Image{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&image.ID,
		&image.OwnerID,
		&image.PromptID,
		&image.FileURL,
		&image.Status,
		&image.GeneratedBy,
		&image.Metadata,
		&image.CreatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Image")
	}

	return image, nil
}

// List returns a page of images, newest first, plus the total count.
//
// ownerID of 0 disables the owner filter (moderator view).
func (repository *PostgresImageRepository) List(ctx context.Context, ownerID int64, params pagination.Params) ([]*Image, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM images WHERE ($1 = 0 OR owner_id = $1)`

	var total int64
	if err := repository.pool.QueryRow(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Image")
	}

	const query = `
		SELECT id, owner_id, prompt_id, file_url, status, generated_by, metadata, created_at
		FROM images
		WHERE ($1 = 0 OR owner_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, ownerID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Image")
	}
	defer rows.Close()

	images := make([]*Image, 0, params.Limit)
	for rows.Next() {
		image := &Image{}
		if err := rows.Scan(
			&image.ID,
			&image.OwnerID,
			&image.PromptID,
			&image.FileURL,
			&image.Status,
			&image.GeneratedBy,
			&image.Metadata,
			&image.CreatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "Image")
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Image")
	}

	return images, total, nil
}

// Review updates the image status and appends the moderation action in one
// transaction, so the audit trail can never diverge from the status column.
func (repository *PostgresImageRepository) Review(ctx context.Context, image *Image, action *ImageAction) error {
	transaction, err := repository.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("postgres_image_repo_review_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	const updateQuery = `UPDATE images SET status = $2 WHERE id = $1`
	if _, err := transaction.Exec(ctx, updateQuery, image.ID, image.Status); err != nil {
		return dberr.Wrap(err, "Image")
	}

	const insertQuery = `
		INSERT INTO image_actions (image_id, action, performed_by, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now()
	}

	err = transaction.QueryRow(ctx, insertQuery,
		action.ImageID,
		action.Action,
		action.PerformedBy,
		action.Details,
		action.CreatedAt,
	).Scan(&action.ID)
	if err != nil {
		return dberr.Wrap(err, "ImageAction")
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_image_repo_review_commit_failed: %w", err)
	}

	return nil
}
