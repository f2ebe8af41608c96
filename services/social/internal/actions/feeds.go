package actions

import (
	"context"

	"github.com/example/socialtrust/services/social/internal/feed"
	"github.com/example/socialtrust/services/social/internal/store"
)

func (s *Service) recentPosts(ctx context.Context) ([]store.Post, error) {
	return s.posts.List(ctx, feedWindow)
}

func (s *Service) PublicFeed(ctx context.Context) ([]store.Post, error) {
	posts, err := s.recentPosts(ctx)
	if err != nil {
		return nil, err
	}
	return feed.PublicFeed(posts), nil
}

func (s *Service) FriendFeed(ctx context.Context, userID string) ([]store.Post, error) {
	friends, err := s.graph.ListFriendsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.recentPosts(ctx)
	if err != nil {
		return nil, err
	}
	return feed.FriendFeed(posts, friends), nil
}

// Trending ranks recent posts by likes; equal counts keep newest first.
// limit <= 0 uses the policy's trending limit.
func (s *Service) Trending(ctx context.Context, limit int) ([]store.Post, error) {
	if limit <= 0 {
		limit = s.policy.TrendingLimit
	}
	posts, err := s.recentPosts(ctx)
	if err != nil {
		return nil, err
	}
	return feed.Trending(posts, limit), nil
}

// Thread returns the full comment tree of a post.
func (s *Service) Thread(ctx context.Context, postID string) ([]*feed.ThreadNode, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return feed.BuildThread(comments), nil
}
