// Package admin is the admin dashboard surface. It carries no business
// rules of its own.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/platform/httpx"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// RegisterRoutes expects r to already carry the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/admin/ping", h.ping)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	if err := access.Require(actor, access.RoleAdmin); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok", "admin_id": actor.ID.String()})
}
