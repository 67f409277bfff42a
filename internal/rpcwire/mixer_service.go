package rpcwire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MixerServer is the mixer's public RPC surface.
type MixerServer interface {
	PutLocation(context.Context, *PutLocationRequest) (*PutLocationResponse, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*DeleteUserResponse, error)
	GetUserTimeline(context.Context, *GetUserTimelineRequest) (*GetUserTimelineResponse, error)
	GetUserNearbyFolks(context.Context, *GetUserNearbyFolksRequest) (*GetUserNearbyFolksResponse, error)
	GetMixerStats(context.Context, *GetMixerStatsRequest) (*GetMixerStatsResponse, error)
}

// RegisterMixerServer registers srv on s.
func RegisterMixerServer(s grpc.ServiceRegistrar, srv MixerServer) {
	s.RegisterService(&mixerServiceDesc, srv)
}

func mixerPutLocationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PutLocationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MixerServer).PutLocation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Mixer/PutLocation"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MixerServer).PutLocation(ctx, req.(*PutLocationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func mixerDeleteUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteUserRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MixerServer).DeleteUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Mixer/DeleteUser"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MixerServer).DeleteUser(ctx, req.(*DeleteUserRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func mixerGetUserTimelineHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetUserTimelineRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MixerServer).GetUserTimeline(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Mixer/GetUserTimeline"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MixerServer).GetUserTimeline(ctx, req.(*GetUserTimelineRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func mixerGetUserNearbyFolksHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetUserNearbyFolksRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MixerServer).GetUserNearbyFolks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Mixer/GetUserNearbyFolks"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MixerServer).GetUserNearbyFolks(ctx, req.(*GetUserNearbyFolksRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func mixerGetMixerStatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetMixerStatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MixerServer).GetMixerStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Mixer/GetMixerStats"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MixerServer).GetMixerStats(ctx, req.(*GetMixerStatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var mixerServiceDesc = grpc.ServiceDesc{
	ServiceName: "backtracer.Mixer",
	HandlerType: (*MixerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PutLocation", Handler: mixerPutLocationHandler},
		{MethodName: "DeleteUser", Handler: mixerDeleteUserHandler},
		{MethodName: "GetUserTimeline", Handler: mixerGetUserTimelineHandler},
		{MethodName: "GetUserNearbyFolks", Handler: mixerGetUserNearbyFolksHandler},
		{MethodName: "GetMixerStats", Handler: mixerGetMixerStatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "backtracer/mixer.proto",
}

// MixerClient is the client-side stub for MixerServer.
type MixerClient interface {
	PutLocation(ctx context.Context, in *PutLocationRequest, opts ...grpc.CallOption) (*PutLocationResponse, error)
	DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*DeleteUserResponse, error)
	GetUserTimeline(ctx context.Context, in *GetUserTimelineRequest, opts ...grpc.CallOption) (*GetUserTimelineResponse, error)
	GetUserNearbyFolks(ctx context.Context, in *GetUserNearbyFolksRequest, opts ...grpc.CallOption) (*GetUserNearbyFolksResponse, error)
	GetMixerStats(ctx context.Context, in *GetMixerStatsRequest, opts ...grpc.CallOption) (*GetMixerStatsResponse, error)
}

type mixerClient struct {
	cc grpc.ClientConnInterface
}

// NewMixerClient builds a MixerClient bound to cc.
func NewMixerClient(cc grpc.ClientConnInterface) MixerClient {
	return &mixerClient{cc: cc}
}

func (c *mixerClient) PutLocation(ctx context.Context, in *PutLocationRequest, opts ...grpc.CallOption) (*PutLocationResponse, error) {
	out := new(PutLocationResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Mixer/PutLocation", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "PutLocation: %v", err)
	}
	return out, nil
}

func (c *mixerClient) DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*DeleteUserResponse, error) {
	out := new(DeleteUserResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Mixer/DeleteUser", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "DeleteUser: %v", err)
	}
	return out, nil
}

func (c *mixerClient) GetUserTimeline(ctx context.Context, in *GetUserTimelineRequest, opts ...grpc.CallOption) (*GetUserTimelineResponse, error) {
	out := new(GetUserTimelineResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Mixer/GetUserTimeline", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "GetUserTimeline: %v", err)
	}
	return out, nil
}

func (c *mixerClient) GetUserNearbyFolks(ctx context.Context, in *GetUserNearbyFolksRequest, opts ...grpc.CallOption) (*GetUserNearbyFolksResponse, error) {
	out := new(GetUserNearbyFolksResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Mixer/GetUserNearbyFolks", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "GetUserNearbyFolks: %v", err)
	}
	return out, nil
}

func (c *mixerClient) GetMixerStats(ctx context.Context, in *GetMixerStatsRequest, opts ...grpc.CallOption) (*GetMixerStatsResponse, error) {
	out := new(GetMixerStatsResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Mixer/GetMixerStats", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "GetMixerStats: %v", err)
	}
	return out, nil
}
