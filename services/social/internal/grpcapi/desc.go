package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name. Messages are
// protobuf well-known types, so no generated code is needed on either side.
const ServiceName = "socialtrust.v1.TrustService"

const (
	methodGetTrust    = "/" + ServiceName + "/GetTrust"
	methodIsMuted     = "/" + ServiceName + "/IsMuted"
	methodListFriends = "/" + ServiceName + "/ListFriends"
)

// TrustServer is the read surface other services use. Every method takes the
// user id as a StringValue.
type TrustServer interface {
	GetTrust(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	IsMuted(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	ListFriends(ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error)
}

var TrustServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrustServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTrust", Handler: getTrustHandler},
		{MethodName: "IsMuted", Handler: isMutedHandler},
		{MethodName: "ListFriends", Handler: listFriendsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "socialtrust/v1/trust.proto",
}

func RegisterTrustServer(s grpc.ServiceRegistrar, srv TrustServer) {
	s.RegisterService(&TrustServiceDesc, srv)
}

func getTrustHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrustServer).GetTrust(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetTrust}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(TrustServer).GetTrust(ctx, req.(*wrapperspb.StringValue))
	})
}

func isMutedHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrustServer).IsMuted(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodIsMuted}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(TrustServer).IsMuted(ctx, req.(*wrapperspb.StringValue))
	})
}

func listFriendsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrustServer).ListFriends(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListFriends}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(TrustServer).ListFriends(ctx, req.(*wrapperspb.StringValue))
	})
}

// TrustClient calls a TrustServer over conn.
type TrustClient struct {
	cc grpc.ClientConnInterface
}

func NewTrustClient(cc grpc.ClientConnInterface) *TrustClient {
	return &TrustClient{cc: cc}
}

func (c *TrustClient) GetTrust(ctx context.Context, userID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetTrust, wrapperspb.String(userID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrustClient) IsMuted(ctx context.Context, userID string, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, methodIsMuted, wrapperspb.String(userID), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *TrustClient) ListFriends(ctx context.Context, userID string, opts ...grpc.CallOption) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, methodListFriends, wrapperspb.String(userID), out, opts...); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		ids = append(ids, v.GetStringValue())
	}
	return ids, nil
}
