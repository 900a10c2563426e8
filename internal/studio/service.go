// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Content use cases: prompt and image creation, role-scoped listing, and
// image moderation.

package studio

import (
	"context"
	"fmt"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/sec"
	"github.com/pixagen/pixagen/pkg/pagination"
)

// Service implements the content use cases.
type Service struct {
	promptRepository PromptRepository
	imageRepository  ImageRepository
}

// NewService constructs a new [Service] with its storage dependencies.
func NewService(promptRepo PromptRepository, imageRepo ImageRepository) *Service {
	return &Service{
		promptRepository: promptRepo,
		imageRepository:  imageRepo,
	}
}

// CreatePrompt persists a new prompt owned by the caller.
func (service *Service) CreatePrompt(ctx context.Context, identity *sec.Identity, text string, metadata map[string]any) (*Prompt, error) {
	prompt := &Prompt{
		OwnerID:  identity.UserID,
		Text:     text,
		Metadata: metadata,
	}

	if err := service.promptRepository.Create(ctx, prompt); err != nil {
		return nil, fmt.Errorf("studio_service_create_prompt_failed: %w", err)
	}

	return prompt, nil
}

// ListPrompts returns a page of prompts visible to the caller.
//
// # Visibility
//
// SUPER_ADMIN sees every prompt; everyone else sees their own only.
func (service *Service) ListPrompts(ctx context.Context, identity *sec.Identity, params pagination.Params) ([]*Prompt, int64, error) {
	ownerID := identity.UserID
	if identity.Role == sec.RoleSuperAdmin {
		ownerID = 0 // All owners.
	}

	return service.promptRepository.List(ctx, ownerID, params)
}

// CreateImageInput holds the data for registering a new image.
type CreateImageInput struct {
	PromptID    *int64
	FileURL     *string
	GeneratedBy *string
	Metadata    map[string]any
}

// CreateImage persists a new image owned by the caller.
//
// When a prompt is referenced, it must exist and belong to the caller
// (moderators may reference any prompt).
func (service *Service) CreateImage(ctx context.Context, identity *sec.Identity, input CreateImageInput) (*Image, error) {
	if input.PromptID != nil {
		prompt, err := service.promptRepository.FindByID(ctx, *input.PromptID)
		if err != nil {
			return nil, err
		}
		if prompt.OwnerID != identity.UserID && !identity.Role.In(sec.RoleAdmin, sec.RoleSuperAdmin) {
			return nil, apperr.Forbidden("Prompt belongs to another user")
		}
	}

	image := &Image{
		OwnerID:     identity.UserID,
		PromptID:    input.PromptID,
		FileURL:     input.FileURL,
		Status:      ImageStatusPending,
		GeneratedBy: input.GeneratedBy,
		Metadata:    input.Metadata,
	}

	if err := service.imageRepository.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("studio_service_create_image_failed: %w", err)
	}

	return image, nil
}

// ListImages returns a page of images visible to the caller.
//
// # Visibility
//
// ADMIN and SUPER_ADMIN see every image; USER sees their own only.
func (service *Service) ListImages(ctx context.Context, identity *sec.Identity, params pagination.Params) ([]*Image, int64, error) {
	ownerID := identity.UserID
	if identity.Role.In(sec.RoleAdmin, sec.RoleSuperAdmin) {
		ownerID = 0 // All owners.
	}

	return service.imageRepository.List(ctx, ownerID, params)
}

// ReviewImage applies a moderation decision to a pending image.
//
// # Business Rules
//   - Only PENDING images can be reviewed.
//   - Every decision appends an [ImageAction] audit row in the same
//     transaction as the status change.
//
// Role enforcement (ADMIN, SUPER_ADMIN) happens upstream in the route
// middleware; the service only checks state.
func (service *Service) ReviewImage(ctx context.Context, identity *sec.Identity, imageID int64, action ReviewAction, details string) (*Image, error) {
	// ── 1. Load & State Check ─────────────────────────────────────────────

	image, err := service.imageRepository.FindByID(ctx, imageID)
	if err != nil {
		return nil, err
	}

	if image.Status != ImageStatusPending {
		return nil, apperr.Conflict(fmt.Sprintf("Image is already %s", image.Status))
	}

	// ── 2. Apply Decision ─────────────────────────────────────────────────

	image.Status = action.Status()
	auditEntry := &ImageAction{
		ImageID:     image.ID,
		Action:      action,
		PerformedBy: identity.UserID,
		Details:     details,
	}

	if err := service.imageRepository.Review(ctx, image, auditEntry); err != nil {
		return nil, fmt.Errorf("studio_service_review_image_failed: %w", err)
	}

	return image, nil
}
