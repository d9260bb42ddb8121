package rpc

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

//go:generate protoc -I ../proto --go_out=paths=source_relative:../proto --go-grpc_out=paths=source_relative:../proto matrimony/v1/matrimony.proto

const (
	// ProtoFile is the registered path of the matrimony.v1 contract. The
	// source lives in internal/proto/matrimony/v1/matrimony.proto.
	ProtoFile    = "matrimony/v1/matrimony.proto"
	protoPackage = "matrimony.v1"
	goPackage    = "github.com/oggyb/matrimony-core/internal/proto/matrimony/v1;matrimonyv1"
)

var serviceDescs = []*grpc.ServiceDesc{
	&visibilityServiceDesc,
	&viewServiceDesc,
	&paymentServiceDesc,
	&moderationServiceDesc,
	&entitlementServiceDesc,
}

var (
	// File is the matrimony.v1 file descriptor, registered in
	// protoregistry.GlobalFiles so server reflection can describe it.
	File protoreflect.FileDescriptor

	messageDescs = map[reflect.Type]protoreflect.MessageDescriptor{}
)

func init() {
	fdp, types, err := buildFileProto()
	if err != nil {
		panic(fmt.Sprintf("rpc: build %s: %v", ProtoFile, err))
	}
	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("rpc: invalid %s: %v", ProtoFile, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("rpc: register %s: %v", ProtoFile, err))
	}
	File = fd
	for _, t := range types {
		messageDescs[t] = fd.Messages().ByName(protoreflect.Name(t.Name()))
	}
}

// descriptorFor returns the message descriptor of a message of this package.
func descriptorFor(v any) (protoreflect.MessageDescriptor, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	md, ok := messageDescs[t]
	if !ok || md == nil {
		return nil, fmt.Errorf("rpc: %T is not a %s message", v, protoPackage)
	}
	return md, nil
}

// fileBuilder turns the message structs into descriptor protos. Message names
// are the Go type names; field numbers come from the pb tag and field names
// from the json tag. Embedded structs contribute their fields in place.
type fileBuilder struct {
	seen     map[reflect.Type]bool
	types    []reflect.Type
	messages []*descriptorpb.DescriptorProto
	err      error
}

func buildFileProto() (*descriptorpb.FileDescriptorProto, []reflect.Type, error) {
	b := &fileBuilder{seen: map[reflect.Type]bool{}}
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(ProtoFile),
		Package: proto.String(protoPackage),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{GoPackage: proto.String(goPackage)},
	}

	for _, sd := range serviceDescs {
		svc := &descriptorpb.ServiceDescriptorProto{
			Name: proto.String(strings.TrimPrefix(sd.ServiceName, protoPackage+".")),
		}
		for _, m := range sd.Methods {
			types, ok := methodTypes["/"+sd.ServiceName+"/"+m.MethodName]
			if !ok {
				return nil, nil, fmt.Errorf("%s/%s has no message types", sd.ServiceName, m.MethodName)
			}
			svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
				Name:       proto.String(m.MethodName),
				InputType:  proto.String(b.message(types[0])),
				OutputType: proto.String(b.message(types[1])),
			})
		}
		fdp.Service = append(fdp.Service, svc)
	}
	if b.err != nil {
		return nil, nil, b.err
	}
	fdp.MessageType = b.messages
	return fdp, b.types, nil
}

// message registers t and returns its fully-qualified name.
func (b *fileBuilder) message(t reflect.Type) string {
	name := "." + protoPackage + "." + t.Name()
	if b.seen[t] {
		return name
	}
	b.seen[t] = true
	b.types = append(b.types, t)

	m := &descriptorpb.DescriptorProto{Name: proto.String(t.Name())}
	b.messages = append(b.messages, m)
	b.fields(m, t)
	return name
}

func (b *fileBuilder) fields(m *descriptorpb.DescriptorProto, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			b.fields(m, f.Type)
			continue
		}
		num, err := strconv.Atoi(f.Tag.Get("pb"))
		if err != nil {
			b.fail(fmt.Errorf("%s.%s: missing pb tag", t.Name(), f.Name))
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")

		fd := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(int32(num)),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		}
		ft := f.Type
		if ft.Kind() == reflect.Slice {
			fd.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.String:
			fd.Type = descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
		case reflect.Bool:
			fd.Type = descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum()
		case reflect.Int32:
			fd.Type = descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum()
		case reflect.Int64:
			fd.Type = descriptorpb.FieldDescriptorProto_TYPE_INT64.Enum()
		case reflect.Struct:
			fd.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
			fd.TypeName = proto.String(b.message(ft))
		default:
			b.fail(fmt.Errorf("%s.%s: unsupported kind %s", t.Name(), f.Name, ft.Kind()))
			continue
		}
		m.Field = append(m.Field, fd)
	}
}

func (b *fileBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
