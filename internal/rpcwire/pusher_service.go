package rpcwire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// PusherServer is the worker-side contract for the ingest half of the
// worker's RPC surface.
type PusherServer interface {
	PutLocation(context.Context, *PutLocationRequest) (*PutLocationResponse, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*DeleteUserResponse, error)
}

// RegisterPusherServer registers srv on s, in the same shape
// protoc-gen-go-grpc's RegisterXxxServer functions take.
func RegisterPusherServer(s grpc.ServiceRegistrar, srv PusherServer) {
	s.RegisterService(&pusherServiceDesc, srv)
}

func pusherPutLocationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PutLocationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PusherServer).PutLocation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Pusher/PutLocation"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PusherServer).PutLocation(ctx, req.(*PutLocationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func pusherDeleteUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteUserRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PusherServer).DeleteUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/backtracer.Pusher/DeleteUser"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PusherServer).DeleteUser(ctx, req.(*DeleteUserRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var pusherServiceDesc = grpc.ServiceDesc{
	ServiceName: "backtracer.Pusher",
	HandlerType: (*PusherServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PutLocation", Handler: pusherPutLocationHandler},
		{MethodName: "DeleteUser", Handler: pusherDeleteUserHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "backtracer/pusher.proto",
}

// PusherClient is the client-side stub for PusherServer.
type PusherClient interface {
	PutLocation(ctx context.Context, in *PutLocationRequest, opts ...grpc.CallOption) (*PutLocationResponse, error)
	DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*DeleteUserResponse, error)
}

type pusherClient struct {
	cc grpc.ClientConnInterface
}

// NewPusherClient builds a PusherClient bound to cc.
func NewPusherClient(cc grpc.ClientConnInterface) PusherClient {
	return &pusherClient{cc: cc}
}

func (c *pusherClient) PutLocation(ctx context.Context, in *PutLocationRequest, opts ...grpc.CallOption) (*PutLocationResponse, error) {
	out := new(PutLocationResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Pusher/PutLocation", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "PutLocation: %v", err)
	}
	return out, nil
}

func (c *pusherClient) DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*DeleteUserResponse, error) {
	out := new(DeleteUserResponse)
	if err := c.cc.Invoke(ctx, "/backtracer.Pusher/DeleteUser", in, out, opts...); err != nil {
		return nil, status.Errorf(codes.Unavailable, "DeleteUser: %v", err)
	}
	return out, nil
}
