package store

import (
	"context"
	"time"
)

// Comment is a node in a post's comment tree. ParentID nil means top-level;
// depth is not limited here.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentStore defines the contract for comment persistence.
type CommentStore interface {
	Create(ctx context.Context, c Comment) (Comment, error)
	Get(ctx context.Context, id string) (Comment, error)
	// ListByPost returns every comment of the post, oldest first.
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
}
