// Package registrypb defines the business (object registry) gRPC service.
// Messages travel with the json codec from objrepo/api/codec.
package registrypb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "objrepo.ObjectRepository"

type ObjectInfo struct {
	ObjectName    string `json:"object_name"`
	ObjectAddress string `json:"object_address"`
	Language      string `json:"language"`
	Version       string `json:"version"`
	Region        string `json:"region"`
}

type RegisterRequest struct {
	ObjectName    string `json:"object_name"`
	ObjectAddress string `json:"object_address"`
	Language      string `json:"language"`
	Version       string `json:"version"`
	Region        string `json:"region"`
}

type RegisterResponse struct {
	Success bool `json:"success"`
}

type UpdateRequest struct {
	ObjectName    string `json:"object_name"`
	ObjectAddress string `json:"object_address"`
	Language      string `json:"language"`
	Version       string `json:"version"`
	Region        string `json:"region"`
}

type UpdateResponse struct {
	Success bool `json:"success"`
}

type DeregisterRequest struct {
	ObjectName string `json:"object_name"`
}

type DeregisterResponse struct {
	Success bool `json:"success"`
}

type GetRequest struct {
	ObjectName string `json:"object_name"`
}

// GetResponse carries an empty address when the object is unknown.
type GetResponse struct {
	ObjectAddress string `json:"object_address"`
}

type ObjectListResponse struct {
	Objects []*ObjectInfo `json:"objects"`
}

type HeartbeatPing struct {
	ObjectName string `json:"object_name"`
}

type HeartbeatAck struct {
	Ok bool `json:"ok"`
}

// ObjectRepositoryServer is the server API for the business service.
type ObjectRepositoryServer interface {
	RegisterObject(context.Context, *RegisterRequest) (*RegisterResponse, error)
	DeregisterObject(context.Context, *DeregisterRequest) (*DeregisterResponse, error)
	UpdateObject(context.Context, *UpdateRequest) (*UpdateResponse, error)
	GetObject(context.Context, *GetRequest) (*GetResponse, error)
	ListObjects(context.Context, *emptypb.Empty) (*ObjectListResponse, error)
	Heartbeat(context.Context, *HeartbeatPing) (*HeartbeatAck, error)
	SyncState(context.Context, *ObjectListResponse) (*emptypb.Empty, error)
}

// UnimplementedObjectRepositoryServer can be embedded for forward compatibility.
type UnimplementedObjectRepositoryServer struct{}

func (UnimplementedObjectRepositoryServer) RegisterObject(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterObject not implemented")
}
func (UnimplementedObjectRepositoryServer) DeregisterObject(context.Context, *DeregisterRequest) (*DeregisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeregisterObject not implemented")
}
func (UnimplementedObjectRepositoryServer) UpdateObject(context.Context, *UpdateRequest) (*UpdateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateObject not implemented")
}
func (UnimplementedObjectRepositoryServer) GetObject(context.Context, *GetRequest) (*GetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetObject not implemented")
}
func (UnimplementedObjectRepositoryServer) ListObjects(context.Context, *emptypb.Empty) (*ObjectListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListObjects not implemented")
}
func (UnimplementedObjectRepositoryServer) Heartbeat(context.Context, *HeartbeatPing) (*HeartbeatAck, error) {
	return nil, status.Error(codes.Unimplemented, "method Heartbeat not implemented")
}
func (UnimplementedObjectRepositoryServer) SyncState(context.Context, *ObjectListResponse) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SyncState not implemented")
}

// RegisterObjectRepositoryServer attaches srv to s.
func RegisterObjectRepositoryServer(s grpc.ServiceRegistrar, srv ObjectRepositoryServer) {
	s.RegisterService(&ObjectRepository_ServiceDesc, srv)
}

// unaryHandler builds the MethodDesc handler for a typed unary method.
func unaryHandler[Req any, Resp any](method string, call func(ObjectRepositoryServer, context.Context, *Req) (*Resp, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ObjectRepositoryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ObjectRepositoryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ObjectRepository_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ObjectRepositoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterObject", Handler: unaryHandler("RegisterObject", ObjectRepositoryServer.RegisterObject)},
		{MethodName: "DeregisterObject", Handler: unaryHandler("DeregisterObject", ObjectRepositoryServer.DeregisterObject)},
		{MethodName: "UpdateObject", Handler: unaryHandler("UpdateObject", ObjectRepositoryServer.UpdateObject)},
		{MethodName: "GetObject", Handler: unaryHandler("GetObject", ObjectRepositoryServer.GetObject)},
		{MethodName: "ListObjects", Handler: unaryHandler("ListObjects", ObjectRepositoryServer.ListObjects)},
		{MethodName: "Heartbeat", Handler: unaryHandler("Heartbeat", ObjectRepositoryServer.Heartbeat)},
		{MethodName: "SyncState", Handler: unaryHandler("SyncState", ObjectRepositoryServer.SyncState)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "objrepo/object_repository",
}

// ObjectRepositoryClient is the client API for the business service.
type ObjectRepositoryClient interface {
	RegisterObject(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	DeregisterObject(ctx context.Context, in *DeregisterRequest, opts ...grpc.CallOption) (*DeregisterResponse, error)
	UpdateObject(ctx context.Context, in *UpdateRequest, opts ...grpc.CallOption) (*UpdateResponse, error)
	GetObject(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error)
	ListObjects(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ObjectListResponse, error)
	Heartbeat(ctx context.Context, in *HeartbeatPing, opts ...grpc.CallOption) (*HeartbeatAck, error)
	SyncState(ctx context.Context, in *ObjectListResponse, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type objectRepositoryClient struct {
	cc grpc.ClientConnInterface
}

func NewObjectRepositoryClient(cc grpc.ClientConnInterface) ObjectRepositoryClient {
	return &objectRepositoryClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *objectRepositoryClient) RegisterObject(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, "RegisterObject", in, opts)
}

func (c *objectRepositoryClient) DeregisterObject(ctx context.Context, in *DeregisterRequest, opts ...grpc.CallOption) (*DeregisterResponse, error) {
	return invoke[DeregisterResponse](ctx, c.cc, "DeregisterObject", in, opts)
}

func (c *objectRepositoryClient) UpdateObject(ctx context.Context, in *UpdateRequest, opts ...grpc.CallOption) (*UpdateResponse, error) {
	return invoke[UpdateResponse](ctx, c.cc, "UpdateObject", in, opts)
}

func (c *objectRepositoryClient) GetObject(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error) {
	return invoke[GetResponse](ctx, c.cc, "GetObject", in, opts)
}

func (c *objectRepositoryClient) ListObjects(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ObjectListResponse, error) {
	return invoke[ObjectListResponse](ctx, c.cc, "ListObjects", in, opts)
}

func (c *objectRepositoryClient) Heartbeat(ctx context.Context, in *HeartbeatPing, opts ...grpc.CallOption) (*HeartbeatAck, error) {
	return invoke[HeartbeatAck](ctx, c.cc, "Heartbeat", in, opts)
}

func (c *objectRepositoryClient) SyncState(ctx context.Context, in *ObjectListResponse, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "SyncState", in, opts)
}
