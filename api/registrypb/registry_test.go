package registrypb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type echoServer struct {
	UnimplementedObjectRepositoryServer
}

func (echoServer) GetObject(ctx context.Context, req *GetRequest) (*GetResponse, error) {
	return &GetResponse{ObjectAddress: "addr-of-" + req.ObjectName}, nil
}

func methodDesc(t *testing.T, name string) grpc.MethodDesc {
	t.Helper()
	for _, m := range ObjectRepository_ServiceDesc.Methods {
		if m.MethodName == name {
			return m
		}
	}
	t.Fatalf("method %s not in service descriptor", name)
	return grpc.MethodDesc{}
}

func decodeGet(name string) func(interface{}) error {
	return func(v interface{}) error {
		v.(*GetRequest).ObjectName = name
		return nil
	}
}

func TestServiceDescListsEveryMethod(t *testing.T) {
	names := make([]string, 0, len(ObjectRepository_ServiceDesc.Methods))
	for _, m := range ObjectRepository_ServiceDesc.Methods {
		names = append(names, m.MethodName)
	}
	assert.ElementsMatch(t, []string{
		"RegisterObject", "DeregisterObject", "UpdateObject", "GetObject",
		"ListObjects", "Heartbeat", "SyncState",
	}, names)
}

func TestUnaryHandlerWithoutInterceptor(t *testing.T) {
	out, err := methodDesc(t, "GetObject").Handler(echoServer{}, context.Background(), decodeGet("printer"), nil)
	require.NoError(t, err)
	assert.Equal(t, "addr-of-printer", out.(*GetResponse).ObjectAddress)
}

func TestUnaryHandlerRunsInterceptor(t *testing.T) {
	var fullMethod string
	intercept := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		fullMethod = info.FullMethod
		return handler(ctx, req)
	}

	out, err := methodDesc(t, "GetObject").Handler(echoServer{}, context.Background(), decodeGet("scanner"), intercept)
	require.NoError(t, err)
	assert.Equal(t, "/objrepo.ObjectRepository/GetObject", fullMethod)
	assert.Equal(t, "addr-of-scanner", out.(*GetResponse).ObjectAddress)
}

func TestUnimplementedMethodsReturnErrors(t *testing.T) {
	_, err := methodDesc(t, "SyncState").Handler(echoServer{}, context.Background(), func(interface{}) error { return nil }, nil)
	assert.Error(t, err)
}
