// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Generation use cases: running a render job end-to-end, approving results,
// and regenerating from a previous output.

package generation

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/constants"
	"github.com/pixagen/pixagen/internal/platform/ctxutil"
	"github.com/pixagen/pixagen/internal/platform/objstore"
	"github.com/pixagen/pixagen/internal/platform/renderjob"
	"github.com/pixagen/pixagen/internal/platform/sec"
	"github.com/pixagen/pixagen/pkg/pagination"
)

// Service implements the generation use cases.
//
// It orchestrates three collaborators: object storage for reference images,
// the render-job client for the actual generation, and the session store
// for persistence.
type Service struct {
	sessionRepository SessionRepository
	runner            renderjob.Runner
	uploader          objstore.Uploader
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(sessionRepo SessionRepository, runner renderjob.Runner, uploader objstore.Uploader) *Service {
	return &Service{
		sessionRepository: sessionRepo,
		runner:            runner,
		uploader:          uploader,
	}
}

// ReferenceUpload describes an optional reference image attached to a
// generation request.
type ReferenceUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Generate runs one full generation workflow synchronously.
//
// # Flow
//  1. Upload the reference image (when provided) to object storage.
//  2. Submit the render job and poll it to completion.
//  3. Persist the session with the job output.
//
// The whole flow is bounded by the request context, so a disconnecting
// client aborts the poll loop.
func (service *Service) Generate(ctx context.Context, identity *sec.Identity, prompt string, upload *ReferenceUpload) (*Session, error) {
	logger := ctxutil.GetLogger(ctx)

	// ── 1. Reference Upload ───────────────────────────────────────────────

	var referenceKey *string
	if upload != nil {
		stored, err := service.uploader.Upload(ctx,
			constants.S3FolderReferences, upload.Filename, upload.ContentType, upload.Body)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("generation_reference_upload_failed: %w", err))
		}
		referenceKey = &stored.Key
	}

	// ── 2. Render Job ─────────────────────────────────────────────────────

	output, err := service.run(ctx, prompt, referenceKey)
	if err != nil {
		return nil, err
	}

	// ── 3. Persistence ────────────────────────────────────────────────────

	session := &Session{
		UserID:         identity.UserID,
		ReferenceImage: referenceKey,
		InputPrompt:    prompt,
		OutputPath:     &output.ImageKey,
		OutputURL:      &output.ImageURL,
		Attempts:       1,
	}

	if err := service.sessionRepository.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("generation_service_create_failed: %w", err)
	}

	logger.InfoContext(ctx, "generation_session_created",
		slog.Int64("session_id", session.ID),
		slog.Int64("user_id", identity.UserID),
	)

	return session, nil
}

// Approve marks the session's current output as accepted by its owner.
//
// # Returns
//   - Returns [apperr.Forbidden] when a non-moderator touches someone
//     else's session.
func (service *Service) Approve(ctx context.Context, identity *sec.Identity, sessionID int64) (*Session, error) {
	session, err := service.loadOwned(ctx, identity, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Approved {
		return session, nil // Idempotent.
	}

	session.Approved = true
	if err := service.sessionRepository.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("generation_service_approve_failed: %w", err)
	}

	return session, nil
}

// Change regenerates the session with a new prompt, feeding the previous
// output back to the render service as the reference.
//
// # Business Rules
//   - Attempts increments on every regeneration.
//   - Approval resets because the output changed.
func (service *Service) Change(ctx context.Context, identity *sec.Identity, sessionID int64, newPrompt string) (*Session, error) {
	session, err := service.loadOwned(ctx, identity, sessionID)
	if err != nil {
		return nil, err
	}

	// The previous output becomes the new reference so the change request
	// mutates the existing asset instead of starting from scratch.
	previousOutput := session.OutputPath

	output, err := service.run(ctx, newPrompt, previousOutput)
	if err != nil {
		return nil, err
	}

	session.InputPrompt = newPrompt
	session.OutputPath = &output.ImageKey
	session.OutputURL = &output.ImageURL
	session.Approved = false
	session.Attempts++

	if err := service.sessionRepository.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("generation_service_change_failed: %w", err)
	}

	return session, nil
}

// List returns a page of sessions visible to the caller, with owner details.
//
// # Visibility
//
// ADMIN and SUPER_ADMIN see every session; USER sees their own only.
func (service *Service) List(ctx context.Context, identity *sec.Identity, params pagination.Params) ([]*SessionDetails, int64, error) {
	ownerID := identity.UserID
	if identity.Role.In(sec.RoleAdmin, sec.RoleSuperAdmin) {
		ownerID = 0 // All owners.
	}

	return service.sessionRepository.List(ctx, ownerID, params)
}

// Details returns one session with its owner details.
//
// USER may only view their own sessions; moderators may view any.
func (service *Service) Details(ctx context.Context, identity *sec.Identity, sessionID int64) (*SessionDetails, error) {
	details, err := service.sessionRepository.FindDetails(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if details.UserID != identity.UserID && !identity.Role.In(sec.RoleAdmin, sec.RoleSuperAdmin) {
		return nil, apperr.Forbidden("Session belongs to another user")
	}

	return details, nil
}

// JobStatus reports the last known render-service status for a job.
//
// The status comes from the Redis mirror maintained by the render client,
// so polling here never touches the render service itself. An unknown job
// (expired mirror or bad ID) yields [apperr.NotFound].
func (service *Service) JobStatus(ctx context.Context, jobID string) (string, error) {
	status, err := service.runner.CachedStatus(ctx, jobID)
	if err != nil {
		return "", fmt.Errorf("generation_service_job_status_failed: %w", err)
	}

	if status == "" {
		return "", apperr.NotFound("Render job")
	}
	return status, nil
}

// run submits a render job and waits for its terminal state.
func (service *Service) run(ctx context.Context, prompt string, referenceKey *string) (*renderjob.JobOutput, error) {
	reference := ""
	if referenceKey != nil {
		reference = *referenceKey
	}

	jobID, err := service.runner.Submit(ctx, prompt, reference)
	if err != nil {
		return nil, err
	}

	return service.runner.Await(ctx, jobID)
}

// loadOwned loads a session and enforces the ownership rule.
func (service *Service) loadOwned(ctx context.Context, identity *sec.Identity, sessionID int64) (*Session, error) {
	session, err := service.sessionRepository.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.UserID != identity.UserID && !identity.Role.In(sec.RoleAdmin, sec.RoleSuperAdmin) {
		return nil, apperr.Forbidden("Session belongs to another user")
	}

	return session, nil
}
