// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// HTTP delivery layer for the content domain.

package studio

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/ctxutil"
	"github.com/pixagen/pixagen/internal/platform/middleware"
	"github.com/pixagen/pixagen/internal/platform/respond"
	"github.com/pixagen/pixagen/internal/platform/sec"
	"github.com/pixagen/pixagen/internal/platform/validate"
	"github.com/pixagen/pixagen/pkg/pagination"
)

// maxPromptLength bounds prompt text to keep render-job payloads sane.
const maxPromptLength = 4000

// Handler implements content-related HTTP endpoints.
type Handler struct {
	studioService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{studioService: service}
}

// Routes returns a [chi.Router] configured with content routes.
//
// # Endpoints
//   - POST /prompts             : Creates a prompt.
//   - GET  /prompts             : Lists prompts (SUPER_ADMIN sees all).
//   - POST /images              : Registers an image.
//   - GET  /images              : Lists images (ADMIN+ see all).
//   - POST /images/{id}/review  : Applies a moderation decision (ADMIN+).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/prompts", handler.createPrompt)
	router.Get("/prompts", handler.listPrompts)
	router.Post("/images", handler.createImage)
	router.Get("/images", handler.listImages)

	router.Group(func(moderated chi.Router) {
		moderated.Use(middleware.RequireRole(sec.RoleAdmin, sec.RoleSuperAdmin))
		moderated.Post("/images/{id}/review", handler.reviewImage)
	})

	return router
}

// createPromptRequest represents the JSON payload for prompt creation.
type createPromptRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// createPrompt handles POST /api/user/prompts requests.
func (handler *Handler) createPrompt(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	var input createPromptRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	err := validator.
		Required("text", input.Text).
		MaxLen("text", input.Text, maxPromptLength).
		Err()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	prompt, err := handler.studioService.CreatePrompt(request.Context(), identity, input.Text, input.Metadata)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, prompt)
}

// listPrompts handles GET /api/user/prompts requests.
func (handler *Handler) listPrompts(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	params := pagination.FromRequest(request)
	prompts, total, err := handler.studioService.ListPrompts(request.Context(), identity, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, prompts, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

// createImageRequest represents the JSON payload for image registration.
type createImageRequest struct {
	PromptID    *int64         `json:"prompt_id,omitempty"`
	FileURL     *string        `json:"file_url,omitempty"`
	GeneratedBy *string        `json:"generated_by,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// createImage handles POST /api/user/images requests.
func (handler *Handler) createImage(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	var input createImageRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	image, err := handler.studioService.CreateImage(request.Context(), identity, CreateImageInput{
		PromptID:    input.PromptID,
		FileURL:     input.FileURL,
		GeneratedBy: input.GeneratedBy,
		Metadata:    input.Metadata,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, image)
}

// listImages handles GET /api/user/images requests.
func (handler *Handler) listImages(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	params := pagination.FromRequest(request)
	images, total, err := handler.studioService.ListImages(request.Context(), identity, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, images, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

// reviewRequest represents the JSON payload for a moderation decision.
type reviewRequest struct {
	Action  string `json:"action"`
	Details string `json:"details,omitempty"`
}

// reviewImage handles POST /api/user/images/{id}/review requests.
//
// # Returns
//   - Writes HTTP 200 OK with the updated image.
//   - Writes HTTP 404 Not Found for unknown IDs.
//   - Writes HTTP 409 Conflict when the image was already reviewed.
func (handler *Handler) reviewImage(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	imageID, err := pathID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reviewRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if err := validator.OneOf("action", input.Action, string(ReviewAccept), string(ReviewReject)).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	image, err := handler.studioService.ReviewImage(
		request.Context(), identity, imageID, ReviewAction(input.Action), input.Details)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, image)
}

// requireIdentity reads the authenticated identity, writing a 401 when absent.
func requireIdentity(writer http.ResponseWriter, request *http.Request) (*sec.Identity, bool) {
	identity := ctxutil.GetIdentity(request.Context())
	if identity == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return nil, false
	}
	return identity, true
}

// pathID parses a numeric chi URL parameter.
func pathID(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "must be a positive integer")
	}
	return id, nil
}
