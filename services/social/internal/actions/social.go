package actions

import (
	"context"
	"time"

	"github.com/example/socialtrust/services/social/internal/moderation"
	"github.com/example/socialtrust/services/social/internal/store"
)

func (s *Service) SendFriendRequest(ctx context.Context, from, to string) (r store.FriendRequest, err error) {
	defer func(start time.Time) { s.finish("friend_request", from, start, err) }(time.Now())
	return s.graph.SendRequest(ctx, from, to)
}

func (s *Service) ApproveFriendRequest(ctx context.Context, userID, requestID string) (f store.Friendship, err error) {
	defer func(start time.Time) { s.finish("friend_approve", userID, start, err) }(time.Now())
	return s.graph.Approve(ctx, userID, requestID)
}

func (s *Service) IncomingRequests(ctx context.Context, userID string) ([]store.FriendRequest, error) {
	return s.graph.Incoming(ctx, userID)
}

func (s *Service) ListFriends(ctx context.Context, userID string) ([]string, error) {
	return s.graph.ListFriendsOf(ctx, userID)
}

func (s *Service) FileReport(ctx context.Context, in moderation.ReportInput) (r store.Report, err error) {
	defer func(start time.Time) { s.finish("report", in.ReporterID, start, err) }(time.Now())
	return s.moderation.FileReport(ctx, in)
}

func (s *Service) ListReports(ctx context.Context, viewerID string, limit int) ([]store.Report, error) {
	return s.moderation.ListReports(ctx, viewerID, limit)
}

func (s *Service) RetryPenalty(ctx context.Context, viewerID, reportID string) (r store.Report, err error) {
	defer func(start time.Time) { s.finish("report_retry", viewerID, start, err) }(time.Now())
	return s.moderation.RetryPenalty(ctx, viewerID, reportID)
}
