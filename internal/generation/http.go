// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// HTTP delivery layer for the generation domain.

package generation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/ctxutil"
	"github.com/pixagen/pixagen/internal/platform/respond"
	"github.com/pixagen/pixagen/internal/platform/sec"
	"github.com/pixagen/pixagen/internal/platform/validate"
	"github.com/pixagen/pixagen/pkg/pagination"
)

// maxUploadBytes caps reference image uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// Handler implements generation-related HTTP endpoints.
type Handler struct {
	generationService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{generationService: service}
}

// Routes returns a [chi.Router] configured with generation routes.
//
// # Endpoints
//   - POST /                  : Runs a generation (multipart, optional image).
//   - POST /approve/{id}      : Approves the session output.
//   - POST /change/{id}       : Regenerates with a new prompt.
//   - GET  /list              : Lists sessions (ADMIN+ see all).
//   - GET  /user/details/{id} : Session + owner details.
//   - GET  /status/{jobID}    : Last mirrored render-job status.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.generate)
	router.Post("/approve/{id}", handler.approve)
	router.Post("/change/{id}", handler.change)
	router.Get("/list", handler.list)
	router.Get("/user/details/{id}", handler.details)
	router.Get("/status/{jobID}", handler.jobStatus)

	return router
}

// generate handles POST /api/generate/ requests.
//
// The body is multipart/form-data with a "prompt" field and an optional
// "reference_image" file. The request blocks until the render job reaches
// a terminal state, bounded by the global request timeout.
//
// # Returns
//   - Writes HTTP 201 Created with the persisted session.
//   - Writes HTTP 502 Bad Gateway when the render service fails.
func (handler *Handler) generate(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	// ── 1. Payload Extraction ─────────────────────────────────────────────

	if err := request.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart form"))
		return
	}

	prompt := request.FormValue("prompt")
	if prompt == "" {
		respond.Error(writer, request, validate.RequiredError("prompt", "is required"))
		return
	}

	var upload *ReferenceUpload
	file, header, err := request.FormFile("reference_image")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		upload = &ReferenceUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	case errors.Is(err, http.ErrMissingFile):
		// Reference image is optional.
	default:
		respond.Error(writer, request, apperr.ValidationError("Invalid reference_image upload"))
		return
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	session, err := handler.generationService.Generate(request.Context(), identity, prompt, upload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Presentation Output ────────────────────────────────────────────

	respond.Created(writer, session)
}

// approve handles POST /api/generate/approve/{id} requests.
func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	sessionID, err := pathID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.generationService.Approve(request.Context(), identity, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// changeRequest represents the JSON payload for a regeneration.
type changeRequest struct {
	Prompt string `json:"prompt"`
}

// change handles POST /api/generate/change/{id} requests.
func (handler *Handler) change(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	sessionID, err := pathID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Prompt == "" {
		respond.Error(writer, request, validate.RequiredError("prompt", "is required"))
		return
	}

	session, err := handler.generationService.Change(request.Context(), identity, sessionID, input.Prompt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// list handles GET /api/generate/list requests.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	params := pagination.FromRequest(request)
	sessions, total, err := handler.generationService.List(request.Context(), identity, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, sessions, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

// details handles GET /api/generate/user/details/{id} requests.
func (handler *Handler) details(writer http.ResponseWriter, request *http.Request) {
	identity, ok := requireIdentity(writer, request)
	if !ok {
		return
	}

	sessionID, err := pathID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	details, err := handler.generationService.Details(request.Context(), identity, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, details)
}

// jobStatus handles GET /api/generate/status/{jobID} requests.
func (handler *Handler) jobStatus(writer http.ResponseWriter, request *http.Request) {
	if _, ok := requireIdentity(writer, request); !ok {
		return
	}

	jobID := chi.URLParam(request, "jobID")
	if jobID == "" {
		respond.Error(writer, request, validate.RequiredError("jobID", "is required"))
		return
	}

	status, err := handler.generationService.JobStatus(request.Context(), jobID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"job_id": jobID, "status": status})
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
