package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// CompileServiceClient is a thin hand-written stand-in for the client stub
// protoc-gen-go-grpc would generate for CompileService.
type CompileServiceClient struct {
	cc *grpc.ClientConn
}

// NewCompileServiceClient wraps an established connection.
func NewCompileServiceClient(cc *grpc.ClientConn) *CompileServiceClient {
	return &CompileServiceClient{cc: cc}
}

// Compile sends sourceJSON to the server's CompileService.Compile RPC and
// returns the raw CompileResponse message; use OK/ProgramBytes/Diagnostics
// to read it.
func (c *CompileServiceClient) Compile(ctx context.Context, sourceJSON string, debugInfo bool) (*dynamicpb.Message, error) {
	req := newCompileRequest()
	req.Set(fieldSourceJSON, protoreflect.ValueOfString(sourceJSON))
	req.Set(fieldDebugInfo, protoreflect.ValueOfBool(debugInfo))

	resp := newCompileResponse()
	if err := c.cc.Invoke(ctx, "/lacewing.rpc.CompileService/Compile", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
