package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
	"github.com/georgemunganga/predobro/internal/platform/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public registration endpoint. authed carries the
// token middleware for /me.
func (h *Handler) RegisterRoutes(router chi.Router, authed func(http.Handler) http.Handler) {
	router.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", h.registerUser)
		r.With(authed).Get("/me", h.getMe)
	})
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, user)
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := access.FromContext(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.ErrUnauthenticated)
		return
	}

	user, err := h.service.GetUser(r.Context(), actor)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, user)
}
