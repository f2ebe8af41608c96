package store

import (
	"context"
	"time"
)

const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
)

// Post is a piece of user content. Likes only moves through PostStore.Like.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	Text       string    `json:"text"`
	Likes      int       `json:"likes"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
}

// Like is unique per (PostID, UserID).
type Like struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type PostStore interface {
	Create(ctx context.Context, p Post) (Post, error)
	Get(ctx context.Context, id string) (Post, error)
	// List returns up to limit posts, newest first.
	List(ctx context.Context, limit int) ([]Post, error)
	// Like inserts the (postID, userID) like and increments the post's like
	// count as one step. A second call for the same pair changes nothing and
	// returns created=false.
	Like(ctx context.Context, postID, userID string, now time.Time) (created bool, err error)
}
