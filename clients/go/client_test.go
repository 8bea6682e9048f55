package client_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"objrepo/api/codec"
	"objrepo/api/heartbeatpb"
	"objrepo/api/registrypb"
	client "objrepo/clients/go"
	"objrepo/pkg/cluster"
	"objrepo/pkg/registry"
)

type stubHeartbeat struct {
	heartbeatpb.UnimplementedHeartbeatServiceServer
	id     string
	uptime int64
}

func (s *stubHeartbeat) GetUptime(ctx context.Context, _ *emptypb.Empty) (*heartbeatpb.UptimeInfo, error) {
	return &heartbeatpb.UptimeInfo{NodeID: s.id, UptimeSec: s.uptime}, nil
}

type stubRegistry struct {
	registrypb.UnimplementedObjectRepositoryServer
	mu       sync.Mutex
	received []*registrypb.ObjectInfo
}

func (s *stubRegistry) SyncState(ctx context.Context, req *registrypb.ObjectListResponse) (*emptypb.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, req.Objects...)
	return &emptypb.Empty{}, nil
}

func startStub(t *testing.T) (*client.Options, *stubRegistry) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(grpc.ForceServerCodec(codec.JSON{}))
	reg := &stubRegistry{}
	heartbeatpb.RegisterHeartbeatServiceServer(srv, &stubHeartbeat{id: "peer-1", uptime: 42})
	registrypb.RegisterObjectRepositoryServer(srv, reg)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	opts := &client.Options{
		Insecure: true,
		Extra: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	}
	return opts, reg
}

func TestPeerDialerProbesUptime(t *testing.T) {
	opts, _ := startStub(t)
	peers := client.NewPeerDialer(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := peers.ProbeUptime(ctx, cluster.Peer{ID: "peer-1", Host: "peer-1", BizPort: 1, HBPort: 2})
	require.NoError(t, err)
	assert.Equal(t, cluster.Candidate{NodeID: "peer-1", UptimeSeconds: 42}, c)
}

func TestPeerDialerPushesSnapshot(t *testing.T) {
	opts, reg := startStub(t)
	peers := client.NewPeerDialer(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := peers.PushSnapshot(ctx, cluster.Peer{ID: "peer-1", Host: "peer-1", BizPort: 1, HBPort: 2},
		[]registry.Object{{Name: "a", Address: "h:1", Region: "eu"}})
	require.NoError(t, err)

	reg.mu.Lock()
	defer reg.mu.Unlock()
	require.Len(t, reg.received, 1)
	assert.Equal(t, "a", reg.received[0].ObjectName)
	assert.Equal(t, "eu", reg.received[0].Region)
}

func TestClientSurfacesRPCErrors(t *testing.T) {
	opts, _ := startStub(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The stub leaves Ping unimplemented.
	c, err := client.New(ctx, "", "peer-1:2", opts)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Heartbeat.Ping(ctx, &emptypb.Empty{})
	require.Error(t, err)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestPeerDialerReachesPeerBackFromOutage(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().(*net.TCPAddr)
	require.NoError(t, lis.Close())

	peer := cluster.Peer{ID: "peer-1", Host: "127.0.0.1", BizPort: addr.Port, HBPort: addr.Port}
	peers := client.NewPeerDialer(nil)

	// Fail several rounds in a row while the peer is down.
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		_, err := peers.ProbeUptime(ctx, peer)
		cancel()
		require.Error(t, err)
	}

	lis, err = net.Listen("tcp", addr.String())
	require.NoError(t, err)
	srv := grpc.NewServer(grpc.ForceServerCodec(codec.JSON{}))
	heartbeatpb.RegisterHeartbeatServiceServer(srv, &stubHeartbeat{id: "peer-1", uptime: 7})
	go srv.Serve(lis)
	defer srv.Stop()

	// The very next round sees the peer again.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := peers.ProbeUptime(ctx, peer)
	require.NoError(t, err)
	assert.Equal(t, cluster.Candidate{NodeID: "peer-1", UptimeSeconds: 7}, c)
}
