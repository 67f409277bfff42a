// Package rpcwire implements the Pusher, Seeker and Mixer RPC services as
// plain Go request/response types carried over google.golang.org/grpc,
// marshaled with a custom codec built on internal/keycodec instead of a
// generated protobuf message. The service descriptors and client stubs
// below are written by hand in the same shape protoc-gen-go-grpc emits,
// so the services plug into a stock grpc.Server/grpc.ClientConn exactly
// as generated code would.
package rpcwire

import (
	"google.golang.org/grpc/encoding"

	"github.com/mfkiwl/geo-backtracer/internal/btstatus"
)

// ContentSubtype is registered with grpc's encoding package under this
// name; DialOption and ServerOption select the codec via grpc.ForceCodec /
// grpc.ForceServerCodec.
const ContentSubtype = "btwire"

// wireMessage is implemented by every request/response type this package
// defines, so the codec can marshal/unmarshal without reflection.
type wireMessage interface {
	encodeWire() []byte
	decodeWire([]byte) error
}

// Codec implements grpc/encoding.Codec over the tagged-field record
// format in internal/keycodec.
type Codec struct{}

// Name reports the codec's registered content-subtype.
func (Codec) Name() string { return ContentSubtype }

// Marshal encodes v, which must implement wireMessage.
func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, btstatus.New(btstatus.Serialization, "rpcwire: %T does not implement wireMessage", v)
	}
	return m.encodeWire(), nil
}

// Unmarshal decodes data into v, which must implement wireMessage.
func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireMessage)
	if !ok {
		return btstatus.New(btstatus.Serialization, "rpcwire: %T does not implement wireMessage", v)
	}
	return m.decodeWire(data)
}

func init() {
	encoding.RegisterCodec(Codec{})
}
