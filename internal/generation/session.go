// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package generation implements asset generation sessions: uploading a
// reference image, proxying a render job to the external service, and
// tracking the result through approval or regeneration.
package generation

import (
	"time"
)

// Session tracks one generation workflow from first submission through
// approval.
//
// # Rules
//   - Attempts starts at 1 and increments on every regeneration.
//   - Approved resets to false whenever the output changes.
type Session struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	ReferenceImage *string   `json:"reference_image,omitempty"` // Object storage key of the upload.
	InputPrompt    string    `json:"input_prompt"`
	OutputPath     *string   `json:"output_path,omitempty"` // Object storage key of the result.
	OutputURL      *string   `json:"output_url,omitempty"`
	Approved       bool      `json:"approved"`
	Attempts       int       `json:"attempts"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OwnerSummary is the subset of account fields embedded in session listings.
type OwnerSummary struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// SessionDetails pairs a session with its owning account for admin views.
type SessionDetails struct {
	Session
	Owner OwnerSummary `json:"user"`
}
