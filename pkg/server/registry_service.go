package server

import (
	"context"

	"google.golang.org/protobuf/types/known/emptypb"

	"objrepo/api/registrypb"
	"objrepo/pkg/cluster"
	"objrepo/pkg/registry"
)

// RegistryService implements the business gRPC service. Writes are accepted on
// every replica regardless of its role.
type RegistryService struct {
	registrypb.UnimplementedObjectRepositoryServer
	store  *registry.Store
	bridge *cluster.Bridge
}

// NewRegistryService creates a new registry service
func NewRegistryService(store *registry.Store, bridge *cluster.Bridge) *RegistryService {
	return &RegistryService{store: store, bridge: bridge}
}

// RegisterObject upserts an object
func (s *RegistryService) RegisterObject(ctx context.Context, req *registrypb.RegisterRequest) (*registrypb.RegisterResponse, error) {
	return &registrypb.RegisterResponse{Success: s.store.Register(req.ToObject())}, nil
}

// DeregisterObject removes an object; it succeeds even when the object is unknown
func (s *RegistryService) DeregisterObject(ctx context.Context, req *registrypb.DeregisterRequest) (*registrypb.DeregisterResponse, error) {
	return &registrypb.DeregisterResponse{Success: s.store.Deregister(req.ObjectName)}, nil
}

// UpdateObject upserts an object, same as RegisterObject
func (s *RegistryService) UpdateObject(ctx context.Context, req *registrypb.UpdateRequest) (*registrypb.UpdateResponse, error) {
	return &registrypb.UpdateResponse{Success: s.store.Update(req.ToObject())}, nil
}

// GetObject returns the object's address, or an empty address when unknown
func (s *RegistryService) GetObject(ctx context.Context, req *registrypb.GetRequest) (*registrypb.GetResponse, error) {
	obj, ok := s.store.Get(req.ObjectName)
	if !ok {
		return &registrypb.GetResponse{}, nil
	}
	return &registrypb.GetResponse{ObjectAddress: obj.Address}, nil
}

// ListObjects returns every registered object
func (s *RegistryService) ListObjects(ctx context.Context, _ *emptypb.Empty) (*registrypb.ObjectListResponse, error) {
	return registrypb.NewObjectList(s.store.List()), nil
}

// Heartbeat refreshes an existing object
func (s *RegistryService) Heartbeat(ctx context.Context, req *registrypb.HeartbeatPing) (*registrypb.HeartbeatAck, error) {
	return &registrypb.HeartbeatAck{Ok: s.store.Heartbeat(req.ObjectName)}, nil
}

// SyncState merges a snapshot pushed by another replica
func (s *RegistryService) SyncState(ctx context.Context, req *registrypb.ObjectListResponse) (*emptypb.Empty, error) {
	s.bridge.MergeSnapshot(req.ToObjects())
	return &emptypb.Empty{}, nil
}
