package handlers

import (
	"net/http"

	"github.com/example/socialtrust/internal/platform/api"
	"github.com/example/socialtrust/services/social/internal/actions"
	"github.com/example/socialtrust/services/social/internal/store"
)

type feedResponse struct {
	Posts []store.Post `json:"posts"`
}

func writeFeed(w http.ResponseWriter, r *http.Request, posts []store.Post, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if posts == nil {
		posts = []store.Post{}
	}
	api.WriteJSON(w, http.StatusOK, feedResponse{Posts: posts})
}

// PublicFeed handles GET /v1/feed/public
func PublicFeed(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := svc.PublicFeed(r.Context())
		writeFeed(w, r, posts, err)
	}
}

// FriendFeed handles GET /v1/feed/friends
func FriendFeed(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		posts, err := svc.FriendFeed(r.Context(), userID)
		writeFeed(w, r, posts, err)
	}
}

// Trending handles GET /v1/feed/trending?limit=N
func Trending(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := svc.Trending(r.Context(), queryInt(r, "limit", 0))
		writeFeed(w, r, posts, err)
	}
}
