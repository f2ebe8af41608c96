package handlers

import (
	"net/http"

	"github.com/example/socialtrust/internal/platform/api"
	"github.com/example/socialtrust/services/social/internal/actions"
	"github.com/example/socialtrust/services/social/internal/store"
)

type friendRequestRequest struct {
	To string `json:"to"`
}

// SendFriendRequest handles POST /v1/friends/requests
func SendFriendRequest(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req friendRequestRequest
		if !decodeBody(w, r, &req) {
			return
		}
		fr, err := svc.SendFriendRequest(r.Context(), userID, req.To)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, fr)
	}
}

// IncomingRequests handles GET /v1/friends/requests
func IncomingRequests(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		reqs, err := svc.IncomingRequests(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if reqs == nil {
			reqs = []store.FriendRequest{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"requests": reqs})
	}
}

// ApproveFriendRequest handles POST /v1/friends/requests/{request_id}/approve
func ApproveFriendRequest(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		requestID := urlParam(r, "request_id")
		if requestID == "" {
			badRequest(w, r, "request_id is required")
			return
		}
		f, err := svc.ApproveFriendRequest(r.Context(), userID, requestID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, f)
	}
}

// ListFriends handles GET /v1/friends
func ListFriends(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		ids, err := svc.ListFriends(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"friends": ids})
	}
}
