// Package feed derives read views from already-fetched posts and comments.
// Every function is pure: inputs are never modified and the same inputs
// always give the same output.
package feed

import (
	"sort"

	"github.com/samber/lo"

	"github.com/example/socialtrust/services/social/internal/store"
)

const DefaultTrendingLimit = 5

// FriendFeed keeps posts authored by any of friendIDs, whatever their
// visibility, in input order.
func FriendFeed(posts []store.Post, friendIDs []string) []store.Post {
	friends := lo.SliceToMap(friendIDs, func(id string) (string, struct{}) {
		return id, struct{}{}
	})
	return lo.Filter(posts, func(p store.Post, _ int) bool {
		_, ok := friends[p.AuthorID]
		return ok
	})
}

// PublicFeed keeps posts with public visibility, in input order.
func PublicFeed(posts []store.Post) []store.Post {
	return lo.Filter(posts, func(p store.Post, _ int) bool {
		return p.Visibility == store.VisibilityPublic
	})
}

// Trending orders posts by like count, highest first. Equal counts keep
// their input order. limit <= 0 means DefaultTrendingLimit.
func Trending(posts []store.Post, limit int) []store.Post {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	out := make([]store.Post, len(posts))
	copy(out, posts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Likes > out[j].Likes
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
