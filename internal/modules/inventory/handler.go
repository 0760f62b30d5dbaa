package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
	"github.com/georgemunganga/predobro/internal/platform/httpx"
)

// Handler exposes the store's item management endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes expects r to already carry the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/store/items", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Post("/", h.createItem)
		r.Get("/{id}", h.getItem)
		r.Put("/{id}", h.updateItem)
		r.Delete("/{id}", h.deleteItem)
	})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	items, err := h.service.ListItems(r.Context(), actor)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, items)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	var req ItemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	it, err := h.service.CreateItem(r.Context(), actor, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, it)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	id, err := itemID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	it, err := h.service.GetItem(r.Context(), actor, id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, it)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	id, err := itemID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req ItemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	it, err := h.service.UpdateItem(r.Context(), actor, id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, it)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	id, err := itemID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.DeleteItem(r.Context(), actor, id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// itemID treats a malformed id like an unknown one.
func itemID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.ErrNotFound
	}
	return id, nil
}
