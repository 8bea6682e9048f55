package server

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"objrepo/api/heartbeatpb"
	"objrepo/pkg/cluster"
)

// HeartbeatService implements the liveness gRPC service
type HeartbeatService struct {
	heartbeatpb.UnimplementedHeartbeatServiceServer
	node *cluster.Node
	log  zerolog.Logger
}

// NewHeartbeatService creates a new liveness service
func NewHeartbeatService(node *cluster.Node, log zerolog.Logger) *HeartbeatService {
	return &HeartbeatService{node: node, log: log}
}

// Ping answers only while this node is primary
func (s *HeartbeatService) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if !s.node.IsPrimary() {
		return nil, status.Error(codes.Unavailable, "not primary")
	}
	s.log.Debug().Msg("ping")
	return &emptypb.Empty{}, nil
}

// GetUptime reports the node id and whole seconds since start
func (s *HeartbeatService) GetUptime(ctx context.Context, _ *emptypb.Empty) (*heartbeatpb.UptimeInfo, error) {
	id := s.node.ID()
	if id == "" {
		return nil, status.Error(codes.Internal, "node identity unavailable")
	}
	return &heartbeatpb.UptimeInfo{NodeID: id, UptimeSec: s.node.UptimeSeconds()}, nil
}
