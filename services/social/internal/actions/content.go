package actions

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
	"github.com/example/socialtrust/services/social/internal/trust"
)

const maxTextLen = 5000

func validText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: text must not be empty", policy.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(text) > maxTextLen {
		return "", fmt.Errorf("%w: text exceeds %d characters", policy.ErrInvalidArgument, maxTextLen)
	}
	return text, nil
}

func (s *Service) CreatePost(ctx context.Context, userID, text, visibility string) (p store.Post, err error) {
	defer func(start time.Time) { s.finish(policy.ActionPost, userID, start, err) }(time.Now())

	text, err = validText(text)
	if err != nil {
		return store.Post{}, err
	}
	switch visibility {
	case "":
		visibility = store.VisibilityPublic
	case store.VisibilityPublic, store.VisibilityFriends:
	default:
		return store.Post{}, fmt.Errorf("%w: visibility must be public or friends", policy.ErrInvalidArgument)
	}

	release, err := s.gate(ctx, userID, policy.ActionPost)
	if err != nil {
		return store.Post{}, err
	}
	p, err = s.posts.Create(ctx, store.Post{
		AuthorID:   userID,
		Text:       text,
		Visibility: visibility,
		CreatedAt:  s.now(),
	})
	if err != nil {
		release()
		return store.Post{}, fmt.Errorf("create post: %w", err)
	}
	s.obs.Publish(ctx, events.New(events.PostCreated, userID, map[string]any{
		"post_id":    p.ID,
		"visibility": p.Visibility,
	}))
	return p, nil
}

// AddComment adds a top-level comment, or a reply when parentID is set. The
// parent must belong to the same post; replies may nest to any depth.
func (s *Service) AddComment(ctx context.Context, userID, postID string, parentID *string, text string) (c store.Comment, err error) {
	defer func(start time.Time) { s.finish(policy.ActionComment, userID, start, err) }(time.Now())

	text, err = validText(text)
	if err != nil {
		return store.Comment{}, err
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return store.Comment{}, err
	}
	if parentID != nil {
		pid := strings.TrimSpace(*parentID)
		parentID = &pid
		if pid == "" {
			parentID = nil
		}
	}
	if parentID != nil {
		parent, err := s.comments.Get(ctx, *parentID)
		if err != nil {
			return store.Comment{}, err
		}
		if parent.PostID != postID {
			return store.Comment{}, fmt.Errorf("%w: parent comment belongs to another post", policy.ErrInvalidArgument)
		}
	}

	release, err := s.gate(ctx, userID, policy.ActionComment)
	if err != nil {
		return store.Comment{}, err
	}
	c, err = s.comments.Create(ctx, store.Comment{
		PostID:    postID,
		ParentID:  parentID,
		AuthorID:  userID,
		Text:      text,
		CreatedAt: s.now(),
	})
	if err != nil {
		release()
		return store.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	data := map[string]any{"post_id": postID, "comment_id": c.ID}
	if parentID != nil {
		data["parent_id"] = *parentID
	}
	s.obs.Publish(ctx, events.New(events.CommentCreated, userID, data))
	return c, nil
}

type LikeResult struct {
	Post    store.Post `json:"post"`
	Created bool       `json:"created"`
}

// Like records at most one like per (user, post) and credits the author.
// Liking again is a success that changes nothing, except that it re-drives
// the author's credit if an earlier attempt stopped before it.
func (s *Service) Like(ctx context.Context, userID, postID string) (res LikeResult, err error) {
	defer func(start time.Time) { s.finish(policy.ActionLike, userID, start, err) }(time.Now())

	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return LikeResult{}, err
	}
	if _, err := s.gate(ctx, userID, policy.ActionLike); err != nil {
		return LikeResult{}, err
	}

	created, err := s.posts.Like(ctx, postID, userID, s.now())
	if err != nil {
		return LikeResult{}, fmt.Errorf("like post: %w", err)
	}
	if p, err = s.posts.Get(ctx, postID); err != nil {
		return LikeResult{}, err
	}
	res = LikeResult{Post: p, Created: created}

	if _, err := s.ledger.ApplyDelta(ctx, p.AuthorID, s.policy.LikeGain, trust.LikeKey(postID, userID), trust.ReasonLike); err != nil {
		return res, &policy.PartialFailureError{
			Op:        "like",
			Completed: "like " + postID,
			Pending:   "author trust credit",
			Err:       err,
		}
	}
	if created {
		s.obs.Publish(ctx, events.New(events.PostLiked, userID, map[string]any{
			"post_id":   postID,
			"author_id": p.AuthorID,
			"likes":     p.Likes,
		}))
	}
	return res, nil
}
