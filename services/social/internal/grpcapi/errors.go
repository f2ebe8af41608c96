package grpcapi

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

const errorDomain = "socialtrust"

func statusError(c codes.Code, reason, msg string) error {
	st := status.New(c, msg)
	info := &errdetails.ErrorInfo{Reason: reason, Domain: errorDomain}
	st2, err := st.WithDetails(info)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

func errInvalidArgument(field, msg string) error {
	st := status.New(codes.InvalidArgument, msg)
	info := &errdetails.ErrorInfo{Reason: "INVALID_ARGUMENT", Domain: errorDomain}
	bad := &errdetails.BadRequest{FieldViolations: []*errdetails.BadRequest_FieldViolation{
		{Field: field, Description: msg},
	}}
	st2, err := st.WithDetails(info, bad)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

// toStatus maps an action error onto a gRPC status.
func toStatus(err error) error {
	var partial *policy.PartialFailureError
	switch {
	case errors.As(err, &partial):
		return statusError(codes.Aborted, "PARTIAL_FAILURE", partial.Error())
	case errors.Is(err, policy.ErrRateLimited):
		return statusError(codes.ResourceExhausted, "RATE_LIMITED", err.Error())
	case errors.Is(err, policy.ErrMuted):
		return statusError(codes.FailedPrecondition, "MUTED", err.Error())
	case errors.Is(err, policy.ErrForbidden):
		return statusError(codes.PermissionDenied, "FORBIDDEN", err.Error())
	case errors.Is(err, store.ErrNotFound):
		return statusError(codes.NotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, policy.ErrInvalidArgument):
		return statusError(codes.InvalidArgument, "INVALID_ARGUMENT", err.Error())
	default:
		return statusError(codes.Internal, "INTERNAL", "internal error")
	}
}
