package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/lacewing-lang/lacewing/internal/astjson"
	"github.com/lacewing-lang/lacewing/internal/bytecode"
	"github.com/lacewing-lang/lacewing/internal/compiler"
	"github.com/lacewing-lang/lacewing/internal/lexerr"
)

// CompileServiceServer is the interface cmd/lacewing's serve subcommand
// registers with a *grpc.Server, matching the shape protoc-gen-go-grpc
// would emit for a one-method CompileService.
type CompileServiceServer interface {
	Compile(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error)
}

// CompileServer implements CompileServiceServer on top of this repo's
// compiler entry point. DebugInfo controls whether compiled chunks carry
// a line table (spec §4.2/§4.6).
type CompileServer struct {
	DebugInfo bool
}

// Compile decodes a CompileRequest's source_json field with
// internal/astjson, compiles it, and encodes the result with
// internal/bytecode. Compilation failures are reported both as a
// diagnostics entry on the response and as a mapped gRPC status.
func (s *CompileServer) Compile(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	debugInfo := s.DebugInfo
	if fieldDebugInfo != nil && in.Has(fieldDebugInfo) {
		debugInfo = in.Get(fieldDebugInfo).Bool()
	}
	sourceJSON := in.Get(fieldSourceJSON).String()

	resp := newCompileResponse()

	fail := func(err error) (*dynamicpb.Message, error) {
		resp.Set(fieldOK, protoreflect.ValueOfBool(false))
		resp.Mutable(fieldDiagnostics).List().Append(protoreflect.ValueOfString(err.Error()))
		return resp, statusFor(err)
	}

	block, err := astjson.DecodeBlock([]byte(sourceJSON))
	if err != nil {
		return fail(lexerr.New(lexerr.Parse, "%s", err))
	}
	program, err := compiler.CompileProgram(debugInfo, block)
	if err != nil {
		return fail(err)
	}
	data, err := bytecode.Encode(program)
	if err != nil {
		return fail(err)
	}

	resp.Set(fieldOK, protoreflect.ValueOfBool(true))
	resp.Set(fieldProgramBytes, protoreflect.ValueOfBytes(data))
	return resp, nil
}

// statusFor maps this repo's error taxonomy onto gRPC status codes, per
// spec §7: Parse/Compilation are the caller's fault (InvalidArgument),
// IO is ours (Internal).
func statusFor(err error) error {
	le, ok := err.(*lexerr.Error)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	switch le.Kind {
	case lexerr.Parse, lexerr.Compilation:
		return status.Error(codes.InvalidArgument, le.Error())
	case lexerr.IO:
		return status.Error(codes.Internal, le.Error())
	default:
		return status.Error(codes.Unknown, le.Error())
	}
}

func _CompileService_Compile_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := newCompileRequest()
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CompileServiceServer).Compile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/lacewing.rpc.CompileService/Compile",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CompileServiceServer).Compile(ctx, req.(*dynamicpb.Message))
	}
	return interceptor(ctx, in, info, handler)
}

// CompileService_ServiceDesc is this service's grpc.ServiceDesc, built by
// hand in the same shape protoc-gen-go-grpc generates since this repo has
// no protoc available (see descriptor.go).
var CompileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "lacewing.rpc.CompileService",
	HandlerType: (*CompileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Compile",
			Handler:    _CompileService_Compile_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lacewing/rpc/compile.proto",
}

// RegisterCompileServiceServer registers srv with s, the same call shape
// generated code exposes as RegisterCompileServiceServer.
func RegisterCompileServiceServer(s *grpc.Server, srv CompileServiceServer) {
	s.RegisterService(&CompileService_ServiceDesc, srv)
}
