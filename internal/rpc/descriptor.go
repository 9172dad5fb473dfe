// Package rpc exposes compilation as a gRPC CompileService, the network
// boundary SPEC_FULL.md's domain stack names for embedders (spec §6's
// "Compiler entry points consumed by CLI or embedder", extended to the
// wire).
//
// There is no .proto compiler available in this build environment, so
// the wire schema below is built directly as a
// google.golang.org/protobuf/types/descriptorpb.FileDescriptorProto and
// turned into live message types via protodesc + dynamicpb — the same
// google.golang.org/protobuf APIs protoc-gen-go itself is built on, used
// here without protoc. The hand-built grpc.ServiceDesc in service.go
// follows the exact shape protoc-gen-go-grpc emits.
package rpc

import (
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

func strp(s string) *string { return &s }
func i32p(i int32) *int32   { return &i }

var fileDescriptorProto = &descriptorpb.FileDescriptorProto{
	Name:    strp("lacewing/rpc/compile.proto"),
	Package: strp("lacewing.rpc"),
	Syntax:  strp("proto3"),
	MessageType: []*descriptorpb.DescriptorProto{
		{
			Name: strp("CompileRequest"),
			Field: []*descriptorpb.FieldDescriptorProto{
				{
					Name:     strp("source_json"),
					Number:   i32p(1),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
					JsonName: strp("sourceJson"),
				},
				{
					Name:     strp("debug_info"),
					Number:   i32p(2),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum(),
					JsonName: strp("debugInfo"),
				},
			},
		},
		{
			Name: strp("CompileResponse"),
			Field: []*descriptorpb.FieldDescriptorProto{
				{
					Name:     strp("ok"),
					Number:   i32p(1),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum(),
					JsonName: strp("ok"),
				},
				{
					Name:     strp("program_bytes"),
					Number:   i32p(2),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_BYTES.Enum(),
					JsonName: strp("programBytes"),
				},
				{
					Name:     strp("diagnostics"),
					Number:   i32p(3),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
					JsonName: strp("diagnostics"),
				},
			},
		},
	},
	Service: []*descriptorpb.ServiceDescriptorProto{
		{
			Name: strp("CompileService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				{
					Name:       strp("Compile"),
					InputType:  strp(".lacewing.rpc.CompileRequest"),
					OutputType: strp(".lacewing.rpc.CompileResponse"),
				},
			},
		},
	},
}

// fileDescriptor must get a function-call initializer rather than being
// assigned inside init(): Go runs all package-level var initializers
// before any init() func, so the var blocks below that dereference
// fileDescriptor need it populated by ordinary initialization-order
// dependency tracking, not by init() side effects.
var fileDescriptor = mustBuildFileDescriptor()

func mustBuildFileDescriptor() protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(fileDescriptorProto, nil)
	if err != nil {
		panic("rpc: building file descriptor: " + err.Error())
	}
	return fd
}

var (
	compileRequestDesc  = fileDescriptor.Messages().ByName("CompileRequest")
	compileResponseDesc = fileDescriptor.Messages().ByName("CompileResponse")

	fieldSourceJSON   = compileRequestDesc.Fields().ByName("source_json")
	fieldDebugInfo    = compileRequestDesc.Fields().ByName("debug_info")
	fieldOK           = compileResponseDesc.Fields().ByName("ok")
	fieldProgramBytes = compileResponseDesc.Fields().ByName("program_bytes")
	fieldDiagnostics  = compileResponseDesc.Fields().ByName("diagnostics")
)

func newCompileRequest() *dynamicpb.Message {
	return dynamicpb.NewMessage(compileRequestDesc)
}

func newCompileResponse() *dynamicpb.Message {
	return dynamicpb.NewMessage(compileResponseDesc)
}

// Diagnostics reads back a CompileResponse's diagnostics field.
func Diagnostics(resp *dynamicpb.Message) []string {
	list := resp.Get(fieldDiagnostics).List()
	out := make([]string, list.Len())
	for i := range out {
		out[i] = list.Get(i).String()
	}
	return out
}

// ProgramBytes reads back a CompileResponse's compiled bytecode.
func ProgramBytes(resp *dynamicpb.Message) []byte {
	return resp.Get(fieldProgramBytes).Bytes()
}

// OK reads back a CompileResponse's success flag.
func OK(resp *dynamicpb.Message) bool {
	return resp.Get(fieldOK).Bool()
}
