package rpcwire

import "google.golang.org/grpc"

// DialOption returns the grpc.DialOption that selects this package's
// codec for every call made on the resulting connection.
func DialOption() grpc.DialOption {
	return grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{}))
}

// ServerOption returns the grpc.ServerOption that selects this package's
// codec for every call a server receives.
func ServerOption() grpc.ServerOption {
	return grpc.ForceServerCodec(Codec{})
}
