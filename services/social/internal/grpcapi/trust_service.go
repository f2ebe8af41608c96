package grpcapi

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/socialtrust/services/social/internal/actions"
)

// TrustService implements TrustServer on top of the action service.
type TrustService struct {
	Service *actions.Service
	Log     *zap.Logger
}

// userID takes the id from the request, falling back to the caller's
// user_id metadata.
func userID(ctx context.Context, in *wrapperspb.StringValue) (string, error) {
	if id := strings.TrimSpace(in.GetValue()); id != "" {
		return id, nil
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errInvalidArgument("value", "user id is required")
	}
	vals := md.Get("user_id")
	if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
		return "", errInvalidArgument("value", "user id is required")
	}
	return strings.TrimSpace(vals[0]), nil
}

func (s *TrustService) GetTrust(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := userID(ctx, in)
	if err != nil {
		return nil, err
	}
	st, err := s.Service.Trust(ctx, id)
	if err != nil {
		return nil, s.fail("GetTrust", err)
	}
	out, err := structpb.NewStruct(map[string]any{
		"user_id": st.UserID,
		"score":   st.Score,
		"muted":   st.Muted,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *TrustService) IsMuted(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	id, err := userID(ctx, in)
	if err != nil {
		return nil, err
	}
	st, err := s.Service.Trust(ctx, id)
	if err != nil {
		return nil, s.fail("IsMuted", err)
	}
	return wrapperspb.Bool(st.Muted), nil
}

func (s *TrustService) ListFriends(ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error) {
	id, err := userID(ctx, in)
	if err != nil {
		return nil, err
	}
	ids, err := s.Service.ListFriends(ctx, id)
	if err != nil {
		return nil, s.fail("ListFriends", err)
	}
	vals := make([]any, 0, len(ids))
	for _, f := range ids {
		vals = append(vals, f)
	}
	out, err := structpb.NewList(vals)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *TrustService) fail(method string, err error) error {
	if s.Log != nil {
		s.Log.Warn("grpc call failed", zap.String("method", method), zap.Error(err))
	}
	return toStatus(err)
}
