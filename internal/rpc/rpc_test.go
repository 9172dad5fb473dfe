package rpc_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/lacewing-lang/lacewing/internal/rpc"
)

func startServer(t *testing.T) (*rpc.CompileServiceClient, func()) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	rpc.RegisterCompileServiceServer(srv, &rpc.CompileServer{DebugInfo: true})
	go srv.Serve(lis)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	client := rpc.NewCompileServiceClient(conn)
	return client, func() {
		conn.Close()
		srv.Stop()
	}
}

func TestCompileServiceCompilesValidSource(t *testing.T) {
	client, stop := startServer(t)
	defer stop()

	src := `[{"kind": "log", "expr": {"kind": "int", "int": 7}}]`
	resp, err := client.Compile(context.Background(), src, true)
	require.NoError(t, err)
	require.True(t, rpc.OK(resp))
	require.NotEmpty(t, rpc.ProgramBytes(resp))
	require.Empty(t, rpc.Diagnostics(resp))
}

func TestCompileServiceReportsBadSourceAsInvalidArgument(t *testing.T) {
	client, stop := startServer(t)
	defer stop()

	// A handler error discards the response message on the wire (gRPC
	// unary semantics), so only the mapped status is observable here; the
	// diagnostics the handler puts on its response are not checked by
	// any test in this package.
	_, err := client.Compile(context.Background(), `[{"kind": "nonsense"}]`, true)
	require.Error(t, err)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}
