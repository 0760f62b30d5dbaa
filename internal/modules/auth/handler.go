package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

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

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/api/v1/auth/login", h.login)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]string{"token": token})
}

// Middleware rejects requests without a valid bearer token and stores the
// verified actor on the request context.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fields := strings.Fields(r.Header.Get("Authorization"))
		if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
			httpx.Error(w, r, apperr.ErrUnauthenticated)
			return
		}

		actor, err := h.service.Authenticate(r.Context(), fields[1])
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		zap.S().Debugw("request authenticated",
			"request_id", middleware.GetReqID(r.Context()),
			"actor", actor.ID,
			"role", actor.Role,
		)
		next.ServeHTTP(w, r.WithContext(access.WithActor(r.Context(), actor)))
	})
}
