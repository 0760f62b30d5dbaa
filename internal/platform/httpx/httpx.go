// Package httpx holds the JSON response helpers and request middleware shared
// by every module's Handler.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/georgemunganga/predobro/internal/platform/apperr"
)

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.S().Warnw("encode response", "error", err)
	}
}

// Decode reads a JSON request body into dst. Malformed bodies become a
// validation error on the "body" field.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Invalid("body", fmt.Sprintf("malformed JSON: %v", err))
	}
	return nil
}

// StatusOf maps an error from the taxonomy to its HTTP status.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case apperr.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrEmptyCart),
		errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error body. Unmapped errors are logged and
// replaced by a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	switch status {
	case http.StatusInternalServerError:
		zap.S().Errorw("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		Respond(w, status, map[string]string{"error": "internal server error"})
	case http.StatusNotFound:
		Respond(w, status, map[string]string{"error": apperr.ErrNotFound.Error()})
	case http.StatusBadRequest:
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			Respond(w, status, map[string]interface{}{"error": "validation failed", "fields": ve.Fields})
			return
		}
		Respond(w, status, map[string]string{"error": err.Error()})
	default:
		Respond(w, status, map[string]string{"error": rootMessage(err)})
	}
}

// rootMessage returns the user-facing sentinel text rather than the wrapped
// chain, which may mention internal ids.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		apperr.ErrUnauthenticated,
		apperr.ErrForbidden,
		apperr.ErrInsufficientStock,
		apperr.ErrEmptyCart,
		apperr.ErrConflict,
		apperr.ErrInvalidTransition,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// RequestLogger logs one line per request with zap.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		zap.S().Infow("request completed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
