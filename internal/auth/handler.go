package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/briefer/pkg/handlers"
	"github.com/JaimeStill/briefer/pkg/routes"
)

// Handler provides HTTP endpoints for account operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "auth"),
	}
}

// Routes returns the route group for account endpoints. Me and Persona
// require a bearer token.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/auth",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/register", Handler: h.Register},
			{Method: "POST", Pattern: "/login", Handler: h.Login},
		},
		Children: []routes.Group{
			{
				Middleware: []func(http.Handler) http.Handler{h.sys.Middleware()},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/me", Handler: h.Me},
					{Method: "PUT", Pattern: "/persona", Handler: h.Persona},
				},
			},
		},
	}
}

// Register creates an account from a JSON body.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var cmd RegisterCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	u, err := h.sys.Register(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, u)
}

// Login exchanges form-encoded username and password for an access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	result, err := h.sys.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		if MapHTTPStatus(err) == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, u)
}

type personaRequest struct {
	Persona string `json:"persona"`
}

// Persona updates the authenticated user's persona.
func (h *Handler) Persona(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	var req personaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	updated, err := h.sys.UpdatePersona(r.Context(), u.ID, req.Persona)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"persona": updated.Persona,
	})
}
