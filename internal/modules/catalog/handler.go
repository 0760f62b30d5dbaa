package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/predobro/internal/platform/httpx"
)

// Handler exposes the public catalogue.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/catalog", h.browse)
}

func (h *Handler) browse(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.Browse(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, stores)
}
