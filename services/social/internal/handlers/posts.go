package handlers

import (
	"net/http"

	"github.com/example/socialtrust/internal/platform/api"
	"github.com/example/socialtrust/services/social/internal/actions"
	"github.com/example/socialtrust/services/social/internal/feed"
)

type createPostRequest struct {
	Text       string `json:"text"`
	Visibility string `json:"visibility"`
}

type createCommentRequest struct {
	Text     string  `json:"text"`
	ParentID *string `json:"parent_id,omitempty"`
}

type threadResponse struct {
	PostID   string             `json:"post_id"`
	Comments []*feed.ThreadNode `json:"comments"`
}

// CreatePost handles POST /v1/posts
func CreatePost(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req createPostRequest
		if !decodeBody(w, r, &req) {
			return
		}
		p, err := svc.CreatePost(r.Context(), userID, req.Text, req.Visibility)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, p)
	}
}

// LikePost handles POST /v1/posts/{post_id}/like. A repeated like answers
// 200 with the unchanged post.
func LikePost(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		postID := urlParam(r, "post_id")
		if postID == "" {
			badRequest(w, r, "post_id is required")
			return
		}
		res, err := svc.Like(r.Context(), userID, postID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		api.WriteJSON(w, status, res)
	}
}

// CreateComment handles POST /v1/posts/{post_id}/comments
func CreateComment(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		postID := urlParam(r, "post_id")
		if postID == "" {
			badRequest(w, r, "post_id is required")
			return
		}
		var req createCommentRequest
		if !decodeBody(w, r, &req) {
			return
		}
		c, err := svc.AddComment(r.Context(), userID, postID, req.ParentID, req.Text)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, c)
	}
}

// GetThread handles GET /v1/posts/{post_id}/comments. Replies deeper than
// the display depth are shown under their top-level ancestor.
func GetThread(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := urlParam(r, "post_id")
		if postID == "" {
			badRequest(w, r, "post_id is required")
			return
		}
		roots, err := svc.Thread(r.Context(), postID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, threadResponse{
			PostID:   postID,
			Comments: feed.Flatten(roots, feed.DisplayDepth),
		})
	}
}
