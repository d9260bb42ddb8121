// Package rpc defines the gRPC wire contract of the matrimony core: the
// matrimony.v1 messages, service descriptors and typed clients.
//
// Messages are plain Go structs described by the matrimony.v1 file
// descriptor (see descriptor.go). Two codecs carry them:
//   - "proto", the gRPC default, encodes them as protobuf binary, so any
//     client generated from matrimony.proto can call the services;
//   - "json" (application/grpc+json) uses the proto3 JSON mapping.
//
// Generated protobuf messages, such as those of the health and reflection
// services, go through the regular protobuf encoders on both codecs.
package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"
)

// CodecName is the content-subtype of the JSON codec.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return CodecName }

// protoCodec replaces the default "proto" codec. The message structs of this
// package are moved through a dynamicpb message of their descriptor; their
// json tags follow the proto3 JSON mapping, which is the bridge between the two.
type protoCodec struct{}

func (protoCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	md, err := descriptorFor(v)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: encode %s: %w", md.FullName(), err)
	}
	msg := dynamicpb.NewMessage(md)
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("rpc: encode %s: %w", md.FullName(), err)
	}
	return proto.Marshal(msg)
}

func (protoCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	md, err := descriptorFor(v)
	if err != nil {
		return err
	}
	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("rpc: decode %s: %w", md.FullName(), err)
	}
	raw, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(msg)
	if err != nil {
		return fmt.Errorf("rpc: decode %s: %w", md.FullName(), err)
	}
	return json.Unmarshal(raw, v)
}

func (protoCodec) Name() string { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
	// grpc registers its own "proto" codec in an init that runs before this
	// one, so this registration wins.
	encoding.RegisterCodec(protoCodec{})
}

// CallOption selects the JSON codec on a client call or connection.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}
