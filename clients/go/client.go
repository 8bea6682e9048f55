package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"objrepo/api/codec"
	"objrepo/api/heartbeatpb"
	"objrepo/api/registrypb"
	"objrepo/pkg/cluster"
	"objrepo/pkg/registry"
)

// Client is a typed SDK for the objrepo services.
type Client struct {
	bizConn   *grpc.ClientConn
	hbConn    *grpc.ClientConn
	Registry  registrypb.ObjectRepositoryClient
	Heartbeat heartbeatpb.HeartbeatServiceClient
}

// Options control Client behavior.
type Options struct {
	// DialTimeout is the timeout for establishing the initial connection.
	DialTimeout time.Duration
	// Insecure skips TLS (default true for local dev).
	Insecure bool
	// Extra is appended to the dial options, e.g. a custom dialer in tests.
	Extra []grpc.DialOption
}

func defaultOptions() *Options {
	return &Options{Insecure: true, DialTimeout: 5 * time.Second}
}

// DialOptions returns the gRPC dial options matching opts, including the json codec.
func DialOptions(opts *Options) []grpc.DialOption {
	if opts == nil {
		opts = defaultOptions()
	}
	dialOpts := []grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.ForceCodec(codec.JSON{})),
	}
	if opts.Insecure {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	return append(dialOpts, opts.Extra...)
}

// New dials the business endpoint at bizAddr and the liveness endpoint at
// hbAddr (host:port). Either address may be empty to skip that service.
func New(ctx context.Context, bizAddr, hbAddr string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = defaultOptions()
	}
	if opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.DialTimeout)
		defer cancel()
	}

	c := &Client{}
	if bizAddr != "" {
		conn, err := grpc.DialContext(ctx, bizAddr, DialOptions(opts)...)
		if err != nil {
			return nil, fmt.Errorf("dial business endpoint %s: %w", bizAddr, err)
		}
		c.bizConn = conn
		c.Registry = registrypb.NewObjectRepositoryClient(conn)
	}
	if hbAddr != "" {
		conn, err := grpc.DialContext(ctx, hbAddr, DialOptions(opts)...)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("dial liveness endpoint %s: %w", hbAddr, err)
		}
		c.hbConn = conn
		c.Heartbeat = heartbeatpb.NewHeartbeatServiceClient(conn)
	}
	return c, nil
}

// Close closes the underlying connections.
func (c *Client) Close() error {
	var firstErr error
	for _, conn := range []*grpc.ClientConn{c.bizConn, c.hbConn} {
		if conn == nil {
			continue
		}
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PeerDialer reaches peer endpoints for the election loop and the replicator.
// Every call dials its own connection and closes it afterwards; no connection
// state, reconnect backoff included, carries over from one round to the next.
type PeerDialer struct {
	opts *Options
}

var (
	_ cluster.UptimeProber   = (*PeerDialer)(nil)
	_ cluster.SnapshotPusher = (*PeerDialer)(nil)
)

func NewPeerDialer(opts *Options) *PeerDialer {
	if opts == nil {
		opts = defaultOptions()
	}
	return &PeerDialer{opts: opts}
}

func (d *PeerDialer) dial(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	cc, err := grpc.DialContext(ctx, addr, DialOptions(d.opts)...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return cc, nil
}

// ProbeUptime asks the peer's liveness endpoint for its id and uptime.
func (d *PeerDialer) ProbeUptime(ctx context.Context, peer cluster.Peer) (cluster.Candidate, error) {
	cc, err := d.dial(ctx, peer.HBAddr())
	if err != nil {
		return cluster.Candidate{}, err
	}
	defer cc.Close()

	info, err := heartbeatpb.NewHeartbeatServiceClient(cc).GetUptime(ctx, &emptypb.Empty{})
	if err != nil {
		return cluster.Candidate{}, fmt.Errorf("get uptime from %s: %w", peer.ID, err)
	}
	return cluster.Candidate{NodeID: info.NodeID, UptimeSeconds: info.UptimeSec}, nil
}

// PushSnapshot sends objs to the peer's SyncState endpoint.
func (d *PeerDialer) PushSnapshot(ctx context.Context, peer cluster.Peer, objs []registry.Object) error {
	cc, err := d.dial(ctx, peer.BizAddr())
	if err != nil {
		return err
	}
	defer cc.Close()

	if _, err := registrypb.NewObjectRepositoryClient(cc).SyncState(ctx, registrypb.NewObjectList(objs)); err != nil {
		return fmt.Errorf("sync state to %s: %w", peer.ID, err)
	}
	return nil
}
