package decks

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/briefer/internal/auth"
	"github.com/JaimeStill/briefer/internal/jobs"
	"github.com/JaimeStill/briefer/internal/render"
	"github.com/JaimeStill/briefer/pkg/handlers"
	"github.com/JaimeStill/briefer/pkg/pagination"
	"github.com/JaimeStill/briefer/pkg/routes"
)

// Handler provides HTTP endpoints for deck generation.
type Handler struct {
	sys           System
	authenticate  func(http.Handler) http.Handler
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler. authenticate guards upload and listing.
func NewHandler(
	sys System,
	authenticate func(http.Handler) http.Handler,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		authenticate:  authenticate,
		logger:        logger.With("handler", "decks"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group for deck endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/status/{job_id}", Handler: h.Status},
			{Method: "GET", Pattern: "/download/{job_id}", Handler: h.Download},
		},
		Children: []routes.Group{
			{
				Middleware: []func(http.Handler) http.Handler{h.authenticate},
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/upload", Handler: h.Upload},
					{Method: "GET", Pattern: "/jobs", Handler: h.List},
				},
			},
		},
	}
}

type submitResponse struct {
	JobID  uuid.UUID   `json:"job_id"`
	Status jobs.Status `json:"status"`
}

// Upload accepts a multipart .zip or .md file with the deck hints and
// queues a generation job.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	if kindOf(header.Filename) == kindUnsupported {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrUnsupportedFile)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	job, err := h.sys.Submit(r.Context(), SubmitCommand{
		Owner:          user.ID.String(),
		Persona:        user.Persona,
		Filename:       header.Filename,
		Data:           data,
		OrgName:        r.FormValue("org_name"),
		Purpose:        r.FormValue("purpose"),
		TargetAudience: r.FormValue("target_audience"),
		KeyMessage:     r.FormValue("key_message"),
		DesignVibe:     r.FormValue("design_vibe"),
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, submitResponse{JobID: job.ID, Status: job.Status})
}

type statusResponse struct {
	JobID       uuid.UUID   `json:"job_id"`
	Status      jobs.Status `json:"status"`
	CurrentStep string      `json:"current_step"`
	ErrorMsg    *string     `json:"error_msg"`
}

// Status reports a job's status and progress label.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("job_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, jobs.ErrNotFound)
		return
	}

	job, err := h.sys.Status(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	resp := statusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		CurrentStep: job.CurrentStep,
	}
	if job.ErrorMsg != "" {
		resp.ErrorMsg = &job.ErrorMsg
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// Download streams the rendered deck of a completed job.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("job_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, jobs.ErrNotFound)
		return
	}

	deck, err := h.sys.Download(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer deck.Body.Close()

	w.Header().Set("Content-Type", render.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", deck.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, deck.Body); err != nil {
		h.logger.Warn("deck stream interrupted", "job_id", id, "error", err)
	}
}

// List returns a page of the caller's jobs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrUnauthorized)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	handlers.RespondJSON(w, http.StatusOK, h.sys.List(user.ID.String(), page))
}
