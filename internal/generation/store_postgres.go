// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// PostgreSQL implementation of the session storage layer.

package generation

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixagen/pixagen/internal/platform/dberr"
	"github.com/pixagen/pixagen/pkg/pagination"
)

// PostgresSessionRepository implements SessionRepository using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create persists a new session and fills in its generated ID.
func (repository *PostgresSessionRepository) Create(ctx context.Context, session *Session) error {
	const query = `
		INSERT INTO generation_sessions (
			user_id, reference_image, input_prompt, output_path, output_url,
			approved, attempts, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Attempts == 0 {
		session.Attempts = 1
	}

	err := repository.pool.QueryRow(ctx, query,
		session.UserID,
		session.ReferenceImage,
		session.InputPrompt,
		session.OutputPath,
		session.OutputURL,
		session.Approved,
		session.Attempts,
		session.CreatedAt,
		session.UpdatedAt,
	).Scan(&session.ID)

	if err != nil {
		return dberr.Wrap(err, "Generation session")
	}

	return nil
}

// FindByID retrieves a session by its unique ID.
func (repository *PostgresSessionRepository) FindByID(ctx context.Context, id int64) (*Session, error) {
	const query = `
		SELECT id, user_id, reference_image, input_prompt, output_path, output_url,
		       approved, attempts, created_at, updated_at
		FROM generation_sessions
		WHERE id = $1`

	session := &Session{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.ReferenceImage,
		&session.InputPrompt,
		&session.OutputPath,
		&session.OutputURL,
		&session.Approved,
		&session.Attempts,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Generation session")
	}

	return session, nil
}

// FindDetails retrieves a session joined with its owning account.
func (repository *PostgresSessionRepository) FindDetails(ctx context.Context, id int64) (*SessionDetails, error) {
	const query = `
		SELECT s.id, s.user_id, s.reference_image, s.input_prompt, s.output_path, s.output_url,
		       s.approved, s.attempts, s.created_at, s.updated_at,
		       u.id, u.email, u.username
		FROM generation_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1`

	details := &SessionDetails{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&details.ID,
		&details.UserID,
		&details.ReferenceImage,
		&details.InputPrompt,
		&details.OutputPath,
		&details.OutputURL,
		&details.Approved,
		&details.Attempts,
		&details.CreatedAt,
		&details.UpdatedAt,
		&details.Owner.ID,
		&details.Owner.Email,
		&details.Owner.Username,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Generation session")
	}

	return details, nil
}

// Update persists the session's mutable fields and bumps UpdatedAt.
func (repository *PostgresSessionRepository) Update(ctx context.Context, session *Session) error {
	const query = `
		UPDATE generation_sessions
		SET input_prompt = $2, output_path = $3, output_url = $4,
		    approved = $5, attempts = $6, updated_at = $7
		WHERE id = $1`

	session.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		session.ID,
		session.InputPrompt,
		session.OutputPath,
		session.OutputURL,
		session.Approved,
		session.Attempts,
		session.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Generation session")
	}

	return nil
}

// List returns a page of sessions joined with owner details, newest first,
// plus the total count.
//
// ownerID of 0 disables the owner filter (moderator view).
func (repository *PostgresSessionRepository) List(ctx context.Context, ownerID int64, params pagination.Params) ([]*SessionDetails, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM generation_sessions WHERE ($1 = 0 OR user_id = $1)`

	var total int64
	if err := repository.pool.QueryRow(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Generation session")
	}

	const query = `
		SELECT s.id, s.user_id, s.reference_image, s.input_prompt, s.output_path, s.output_url,
		       s.approved, s.attempts, s.created_at, s.updated_at,
		       u.id, u.email, u.username
		FROM generation_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE ($1 = 0 OR s.user_id = $1)
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, ownerID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Generation session")
	}
	defer rows.Close()

	sessions := make([]*SessionDetails, 0, params.Limit)
	for rows.Next() {
		details := &SessionDetails{}
		if err := rows.Scan(
			&details.ID,
			&details.UserID,
			&details.ReferenceImage,
			&details.InputPrompt,
			&details.OutputPath,
			&details.OutputURL,
			&details.Approved,
			&details.Attempts,
			&details.CreatedAt,
			&details.UpdatedAt,
			&details.Owner.ID,
			&details.Owner.Email,
			&details.Owner.Username,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "Generation session")
		}
		sessions = append(sessions, details)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Generation session")
	}

	return sessions, total, nil
}
