// Package heartbeatpb defines the liveness gRPC service used for pings and
// uptime queries between replicas.
package heartbeatpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "hb.HeartbeatService"

type UptimeInfo struct {
	NodeID    string `json:"node_id"`
	UptimeSec int64  `json:"uptime_sec"`
}

// HeartbeatServiceServer is the server API for the liveness service.
type HeartbeatServiceServer interface {
	// Ping succeeds only on the primary.
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetUptime(context.Context, *emptypb.Empty) (*UptimeInfo, error)
}

type UnimplementedHeartbeatServiceServer struct{}

func (UnimplementedHeartbeatServiceServer) Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedHeartbeatServiceServer) GetUptime(context.Context, *emptypb.Empty) (*UptimeInfo, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUptime not implemented")
}

func RegisterHeartbeatServiceServer(s grpc.ServiceRegistrar, srv HeartbeatServiceServer) {
	s.RegisterService(&HeartbeatService_ServiceDesc, srv)
}

func _HeartbeatService_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HeartbeatServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Ping"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HeartbeatServiceServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _HeartbeatService_GetUptime_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HeartbeatServiceServer).GetUptime(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetUptime"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HeartbeatServiceServer).GetUptime(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var HeartbeatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HeartbeatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: _HeartbeatService_Ping_Handler},
		{MethodName: "GetUptime", Handler: _HeartbeatService_GetUptime_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "objrepo/heartbeat",
}

// HeartbeatServiceClient is the client API for the liveness service.
type HeartbeatServiceClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetUptime(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*UptimeInfo, error)
}

type heartbeatServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewHeartbeatServiceClient(cc grpc.ClientConnInterface) HeartbeatServiceClient {
	return &heartbeatServiceClient{cc}
}

func (c *heartbeatServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Ping", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *heartbeatServiceClient) GetUptime(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*UptimeInfo, error) {
	out := new(UptimeInfo)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetUptime", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
