package handlers

import (
	"net/http"

	"github.com/example/socialtrust/internal/platform/api"
	"github.com/example/socialtrust/internal/platform/auth"
	"github.com/example/socialtrust/services/social/internal/actions"
)

type ensureProfileRequest struct {
	DisplayName string `json:"display_name"`
}

type preferencesRequest struct {
	DarkMode *bool `json:"dark_mode"`
}

type registerDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// EnsureProfile handles POST /v1/me. The display name falls back to the
// token's name claim; an empty body is allowed.
func EnsureProfile(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req ensureProfileRequest
		if r.ContentLength != 0 {
			if !decodeBody(w, r, &req) {
				return
			}
		}
		if req.DisplayName == "" {
			req.DisplayName, _ = auth.DisplayNameFromContext(r.Context())
		}

		p, created, err := svc.EnsureProfile(r.Context(), userID, req.DisplayName)
		if err != nil {
			writeError(w, r, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		api.WriteJSON(w, status, p)
	}
}

// GetProfile handles GET /v1/me.
func GetProfile(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		p, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// SetPreferences handles PUT /v1/me/preferences.
func SetPreferences(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req preferencesRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.DarkMode == nil {
			badRequest(w, r, "dark_mode is required")
			return
		}
		p, err := svc.SetDarkMode(r.Context(), userID, *req.DarkMode)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// RegisterDevice handles POST /v1/me/devices.
func RegisterDevice(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req registerDeviceRequest
		if !decodeBody(w, r, &req) {
			return
		}
		d, err := svc.RegisterDevice(r.Context(), userID, req.Token, req.Platform)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, d)
	}
}

// ListDevices handles GET /v1/me/devices.
func ListDevices(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		devices, err := svc.ListDevices(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"devices": devices})
	}
}

// GetTrust handles GET /v1/users/{user_id}/trust.
func GetTrust(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Trust(r.Context(), urlParam(r, "user_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, st)
	}
}
