// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package studio implements user-created content: prompts, images, and the
// moderation trail attached to them.
//
// # Architecture
//
// Entities in this file represent the "Truth" of the content domain. They
// have no dependencies on outer layers (like databases or HTTP).
package studio

import (
	"time"
)

// ImageStatus tracks an image through the moderation lifecycle.
type ImageStatus string

const (
	ImageStatusPending  ImageStatus = "PENDING"  // Awaiting moderator review.
	ImageStatusAccepted ImageStatus = "ACCEPTED" // Approved for use.
	ImageStatusRejected ImageStatus = "REJECTED" // Rejected by a moderator.
)

// ReviewAction is the decision a moderator records on a pending image.
type ReviewAction string

const (
	ReviewAccept ReviewAction = "ACCEPT"
	ReviewReject ReviewAction = "REJECT"
)

// Status returns the image status that results from applying the action.
func (action ReviewAction) Status() ImageStatus {
	if action == ReviewAccept {
		return ImageStatusAccepted
	}
	return ImageStatusRejected
}

// Prompt is a reusable text prompt owned by a single user.
type Prompt struct {
	ID        int64          `json:"id"`
	OwnerID   int64          `json:"owner_id"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Image is a stored asset, either uploaded directly or produced by a
// generation session.
//
// # Rules
//   - New images always start in PENDING.
//   - Status transitions only happen through [Service.ReviewImage], which
//     records an [ImageAction] for every decision.
type Image struct {
	ID          int64          `json:"id"`
	OwnerID     int64          `json:"owner_id"`
	PromptID    *int64         `json:"prompt_id,omitempty"`
	FileURL     *string        `json:"file_url,omitempty"`
	Status      ImageStatus    `json:"status"`
	GeneratedBy *string        `json:"generated_by,omitempty"` // Model/engine identifier.
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ImageAction is one entry in the moderation audit trail.
//
// Rows are append-only; an image reviewed twice has two actions.
type ImageAction struct {
	ID          int64        `json:"id"`
	ImageID     int64        `json:"image_id"`
	Action      ReviewAction `json:"action"`
	PerformedBy int64        `json:"performed_by"`
	Details     string       `json:"details,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
