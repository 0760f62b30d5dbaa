package order

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/predobro/internal/modules/access"
	"github.com/georgemunganga/predobro/internal/platform/apperr"
	"github.com/georgemunganga/predobro/internal/platform/httpx"
	"github.com/georgemunganga/predobro/internal/platform/validate"
)

// Handler exposes cart, order and fulfillment HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes expects r to already carry the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.viewCart)                        // GET    /api/v1/cart
		r.Get("/count", h.cartCount)                  // GET    /api/v1/cart/count
		r.Post("/items", h.addToCart)                 // POST   /api/v1/cart/items
		r.Patch("/items/{line_id}", h.updateQuantity) // PATCH  /api/v1/cart/items/{line_id}
		r.Delete("/items/{line_id}", h.removeLine)    // DELETE /api/v1/cart/items/{line_id}
		r.Post("/checkout", h.checkout)               // POST   /api/v1/cart/checkout
	})
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", h.listHistory)        // GET    /api/v1/orders
		r.Get("/{id}", h.getOrder)       // GET    /api/v1/orders/{id}
		r.Delete("/{id}", h.deleteOrder) // DELETE /api/v1/orders/{id}
	})
	r.Get("/api/v1/store/orders", h.listStoreOrders) // ?include_completed=true
	r.Get("/api/v1/store/orders.csv", h.exportStoreOrders)
	r.Patch("/api/v1/store/order-items/{id}/status", h.updateStatus)
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	cart, err := h.service.ViewCart(r.Context(), actor)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"cart": cart})
}

func (h *Handler) cartCount(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	n, err := h.service.CartItemCount(r.Context(), actor)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	var req AddToCartRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.service.AddToCart(r.Context(), actor, req.ItemID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	lineID, err := pathID(r, "line_id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req UpdateQuantityRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	cart, err := h.service.UpdateQuantity(r.Context(), actor, lineID, *req.Quantity)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, cart)
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	lineID, err := pathID(r, "line_id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	cart, err := h.service.RemoveFromCart(r.Context(), actor, lineID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, cart)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	o, err := h.service.Checkout(r.Context(), actor)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, o)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	orders, err := h.service.ListHistory(r.Context(), actor)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	o, err := h.service.GetOrder(r.Context(), actor, id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.DeleteOrder(r.Context(), actor, id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listStoreOrders(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	includeCompleted, _ := strconv.ParseBool(r.URL.Query().Get("include_completed"))
	orders, err := h.service.ListStoreOrders(r.Context(), actor, includeCompleted)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, orders)
}

func (h *Handler) exportStoreOrders(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	if err := access.Require(actor, access.RoleStore); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	if err := h.service.ExportStoreOrders(r.Context(), actor, w); err != nil {
		httpx.Error(w, r, err)
	}
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := access.FromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req UpdateStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	line, err := h.service.UpdateOrderItemStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, line)
}

// pathID treats a malformed id like an unknown one.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.ErrNotFound
	}
	return id, nil
}
