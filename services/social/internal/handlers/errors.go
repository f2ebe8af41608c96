package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/socialtrust/internal/platform/api"
	"github.com/example/socialtrust/internal/platform/auth"
	"github.com/example/socialtrust/internal/platform/httpserver"
	"github.com/example/socialtrust/services/social/internal/actions"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

const maxBodyBytes = 1 << 20

// writeError maps an action error onto the API error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	rid := httpserver.RequestIDFromContext(r.Context())

	var partial *policy.PartialFailureError
	var limited *actions.RateLimitedError
	switch {
	case errors.As(err, &partial):
		api.PartialFailure(w, "PARTIAL_FAILURE", partial.Completed+" recorded, "+partial.Pending+" pending", rid, map[string]any{
			"op":        partial.Op,
			"completed": partial.Completed,
			"pending":   partial.Pending,
		})
	case errors.As(err, &limited):
		secs := int(math.Ceil(limited.Window.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		api.RateLimited(w, "RATE_LIMITED", "Too many requests", rid, map[string]any{
			"action":         limited.Action,
			"retry_after_ms": limited.Window.Milliseconds(),
		})
	case errors.Is(err, policy.ErrRateLimited):
		api.RateLimited(w, "RATE_LIMITED", "Too many requests", rid, nil)
	case errors.Is(err, policy.ErrMuted):
		api.Forbidden(w, "MUTED", "Account is muted", rid)
	case errors.Is(err, policy.ErrForbidden):
		api.Forbidden(w, "FORBIDDEN", "Not allowed", rid)
	case errors.Is(err, store.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", "Not found", rid)
	case errors.Is(err, policy.ErrInvalidArgument):
		api.BadRequest(w, "INVALID_ARGUMENT", err.Error(), rid, nil)
	case errors.Is(err, store.ErrConflict):
		api.Conflict(w, "CONFLICT", "Conflict", rid, nil)
	default:
		api.Internal(w, rid)
	}
}

// currentUser returns the authenticated user id or writes 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		api.Unauthorized(w, "UNAUTHORIZED", "authentication required", httpserver.RequestIDFromContext(r.Context()))
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		api.BadRequest(w, "INVALID_JSON", "invalid JSON", httpserver.RequestIDFromContext(r.Context()), nil)
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	api.BadRequest(w, "INVALID_ARGUMENT", message, httpserver.RequestIDFromContext(r.Context()), nil)
}

func urlParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
