package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/socialtrust/internal/platform/auth"
	"github.com/example/socialtrust/services/social/internal/actions"
	"github.com/example/socialtrust/services/social/internal/events"
)

type RouteDeps struct {
	Service  *actions.Service
	Verifier auth.JWTVerifier
	// Events backs GET /v1/events; nil leaves the route unmounted.
	Events *events.Broadcaster
	// WriteGuard wraps the mutating routes; nil means no extra guard.
	WriteGuard func(http.Handler) http.Handler
}

// Mount registers the service routes. Call httpserver.SetupRouter first.
func Mount(r chi.Router, d RouteDeps) {
	svc := d.Service
	guard := d.WriteGuard
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}

	// Public reads
	r.Get("/v1/feed/public", PublicFeed(svc))
	r.Get("/v1/feed/trending", Trending(svc))
	r.Get("/v1/posts/{post_id}/comments", GetThread(svc))
	r.Get("/v1/users/{user_id}/trust", GetTrust(svc))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(d.Verifier))

		r.Get("/v1/me", GetProfile(svc))
		r.Get("/v1/me/devices", ListDevices(svc))
		r.Get("/v1/feed/friends", FriendFeed(svc))
		r.Get("/v1/friends", ListFriends(svc))
		r.Get("/v1/friends/requests", IncomingRequests(svc))
		r.Get("/v1/reports", ListReports(svc))
		if d.Events != nil {
			r.Get("/v1/events", Events(d.Events))
		}

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/v1/me", EnsureProfile(svc))
			r.Put("/v1/me/preferences", SetPreferences(svc))
			r.Post("/v1/me/devices", RegisterDevice(svc))
			r.Post("/v1/posts", CreatePost(svc))
			r.Post("/v1/posts/{post_id}/like", LikePost(svc))
			r.Post("/v1/posts/{post_id}/comments", CreateComment(svc))
			r.Post("/v1/friends/requests", SendFriendRequest(svc))
			r.Post("/v1/friends/requests/{request_id}/approve", ApproveFriendRequest(svc))
			r.Post("/v1/reports", FileReport(svc))
			r.Post("/v1/reports/{report_id}/retry", RetryPenalty(svc))
		})
	})
}
