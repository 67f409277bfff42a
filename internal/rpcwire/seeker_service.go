package rpcwire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SeekerServer is the worker-side contract for the read half of the
// worker's RPC surface, including the internal block-materialization
// method the mixer uses during nearby-folk fan-out.
type SeekerServer interface {
	GetUserTimeline(context.Context, *GetUserTimelineRequest) (*GetUserTimelineResponse, error)
	GetUserNearbyFolks(context.Context, *GetUserNearbyFolksRequest) (*GetUserNearbyFolksResponse, error)
	InternalBuildBlockForUser(context.Context, *InternalBuildBlockRequest) (*InternalBuildBlockResponse, error)
}

// RegisterSeekerServer registers srv on s.
func RegisterSeekerServer(s grpc.ServiceRegistrar, srv SeekerServer) {
	s.RegisterService(&seekerServiceDesc, srv)
}

func seekerGetUserTimelineHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetUserTimelineRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SeekerServer).GetUserTimeline(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Seeker/GetUserTimeline"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SeekerServer).GetUserTimeline(ctx, req.(*GetUserTimelineRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func seekerGetUserNearbyFolksHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetUserNearbyFolksRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SeekerServer).GetUserNearbyFolks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Seeker/GetUserNearbyFolks"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SeekerServer).GetUserNearbyFolks(ctx, req.(*GetUserNearbyFolksRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func seekerInternalBuildBlockForUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(InternalBuildBlockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SeekerServer).InternalBuildBlockForUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Seeker/InternalBuildBlockForUser"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SeekerServer).InternalBuildBlockForUser(ctx, req.(*InternalBuildBlockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var seekerServiceDesc = grpc.ServiceDesc{
	ServiceName: "backtracer.Seeker",
	HandlerType: (*SeekerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetUserTimeline", Handler: seekerGetUserTimelineHandler},
		{MethodName: "GetUserNearbyFolks", Handler: seekerGetUserNearbyFolksHandler},
		{MethodName: "InternalBuildBlockForUser", Handler: seekerInternalBuildBlockForUserHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "backtracer/seeker.proto",
}

// SeekerClient is the client-side stub for SeekerServer.
type SeekerClient interface {
	GetUserTimeline(ctx context.Context, in *GetUserTimelineRequest, opts ...grpc.CallOption) (*GetUserTimelineResponse, error)
	GetUserNearbyFolks(ctx context.Context, in *GetUserNearbyFolksRequest, opts ...grpc.CallOption) (*GetUserNearbyFolksResponse, error)
	InternalBuildBlockForUser(ctx context.Context, in *InternalBuildBlockRequest, opts ...grpc.CallOption) (*InternalBuildBlockResponse, error)
}

type seekerClient struct {
	cc grpc.ClientConnInterface
}

// NewSeekerClient builds a SeekerClient bound to cc.
func NewSeekerClient(cc grpc.ClientConnInterface) SeekerClient {
	return &seekerClient{cc: cc}
}

func (c *seekerClient) GetUserTimeline(ctx context.Context, in *GetUserTimelineRequest, opts ...grpc.CallOption) (*GetUserTimelineResponse, error) {
	out := new(GetUserTimelineResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Seeker/GetUserTimeline", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "GetUserTimeline: %v", err)
	}
	return out, nil
}

func (c *seekerClient) GetUserNearbyFolks(ctx context.Context, in *GetUserNearbyFolksRequest, opts ...grpc.CallOption) (*GetUserNearbyFolksResponse, error) {
	out := new(GetUserNearbyFolksResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Seeker/GetUserNearbyFolks", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "GetUserNearbyFolks: %v", err)
	}
	return out, nil
}

func (c *seekerClient) InternalBuildBlockForUser(ctx context.Context, in *InternalBuildBlockRequest, opts ...grpc.CallOption) (*InternalBuildBlockResponse, error) {
	out := new(InternalBuildBlockResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Seeker/InternalBuildBlockForUser", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "InternalBuildBlockForUser: %v", err)
	}
	return out, nil
}
