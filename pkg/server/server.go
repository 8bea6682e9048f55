package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"objrepo/api/codec"
	"objrepo/api/heartbeatpb"
	"objrepo/api/registrypb"
	client "objrepo/clients/go"
	"objrepo/config"
	"objrepo/pkg/cluster"
	"objrepo/pkg/registry"
)

// Server runs the business and liveness gRPC endpoints side by side, plus the
// background sweep, election and replication jobs.
type Server struct {
	config *config.Config
	log    zerolog.Logger

	node       *cluster.Node
	store      *registry.Store
	bridge     *cluster.Bridge
	elector    *cluster.Elector
	replicator *cluster.Replicator
	dialer     *client.PeerDialer

	biz   *grpc.Server
	hb    *grpc.Server
	admin *http.Server

	registryService  *RegistryService
	heartbeatService *HeartbeatService

	stopOnce sync.Once
}

// PeersFromConfig converts configured peers into cluster peers.
func PeersFromConfig(cfg *config.Config) []cluster.Peer {
	out := make([]cluster.Peer, 0, len(cfg.Peers))
	for _, p := range cfg.Peers {
		out = append(out, cluster.Peer{ID: p.ID, Host: p.Host, BizPort: p.BizPort, HBPort: p.HBPort})
	}
	return out
}

func grpcOptions(maxStreams uint32, log zerolog.Logger) []grpc.ServerOption {
	opts := []grpc.ServerOption{
		grpc.ForceServerCodec(codec.JSON{}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Second,
			MaxConnectionAge:      30 * time.Second,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  5 * time.Second,
			Timeout:               1 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.MaxRecvMsgSize(4 * 1024 * 1024), // 4MB
		grpc.MaxSendMsgSize(4 * 1024 * 1024), // 4MB
		grpc.ChainUnaryInterceptor(unaryLogger(log)),
	}
	if maxStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(maxStreams))
	}
	return opts
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, log zerolog.Logger) (*Server, error) {
	if cfg.Node.ID == "" {
		return nil, errors.New("node id is required")
	}

	peers := PeersFromConfig(cfg)
	s := &Server{
		config: cfg,
		log:    log,
		node:   cluster.NewNode(cfg.Node.ID),
		dialer: client.NewPeerDialer(nil),
	}

	s.store = registry.NewStore(cfg.TTL(), registry.WithLogger(log.With().Str("component", "registry").Logger()))
	s.bridge = cluster.NewBridge(s.store, log.With().Str("component", "sync").Logger())
	s.elector = cluster.NewElector(s.node, peers, s.dialer, cluster.ElectorConfig{
		Interval:     cfg.Election.Interval,
		ProbeTimeout: cfg.Election.ProbeTimeout,
	}, log.With().Str("component", "election").Logger())
	s.replicator = cluster.NewReplicator(s.node, s.store, peers, s.dialer,
		cfg.Replication.Interval, cfg.Replication.Timeout,
		log.With().Str("component", "replication").Logger())

	// Separate servers so registry traffic cannot starve uptime probes
	s.biz = grpc.NewServer(grpcOptions(cfg.Server.BizMaxStreams, log.With().Str("endpoint", "biz").Logger())...)
	s.hb = grpc.NewServer(grpcOptions(cfg.Server.HBMaxStreams, log.With().Str("endpoint", "hb").Logger())...)

	s.registryService = NewRegistryService(s.store, s.bridge)
	s.heartbeatService = NewHeartbeatService(s.node, log.With().Str("component", "heartbeat").Logger())
	registrypb.RegisterObjectRepositoryServer(s.biz, s.registryService)
	heartbeatpb.RegisterHeartbeatServiceServer(s.hb, s.heartbeatService)

	if cfg.Metrics.Enabled {
		s.admin = &http.Server{
			Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Metrics.Port)),
			Handler:           NewAdminRouter(s.node, s.store, cfg.Metrics.Path),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s, nil
}

func (s *Server) Node() *cluster.Node { return s.node }
func (s *Server) Store() *registry.Store { return s.store }
func (s *Server) Elector() *cluster.Elector { return s.elector }
func (s *Server) Replicator() *cluster.Replicator { return s.replicator }

// Start binds both endpoints and serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	bizLis, err := net.Listen("tcp", s.config.Server.BizAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.BizAddr, err)
	}
	hbLis, err := net.Listen("tcp", s.config.Server.HBAddr)
	if err != nil {
		bizLis.Close()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.HBAddr, err)
	}
	return s.Serve(ctx, bizLis, hbLis)
}

// Serve runs on already bound listeners until ctx is cancelled
func (s *Server) Serve(ctx context.Context, bizLis, hbLis net.Listener) error {
	s.log.Info().
		Str("node", s.node.ID()).
		Str("biz", bizLis.Addr().String()).
		Str("hb", hbLis.Addr().String()).
		Dur("ttl", s.store.TTL()).
		Msg("starting objrepo server")

	go func() {
		if err := s.biz.Serve(bizLis); err != nil {
			s.log.Error().Err(err).Msg("business server error")
		}
	}()
	go func() {
		if err := s.hb.Serve(hbLis); err != nil {
			s.log.Error().Err(err).Msg("liveness server error")
		}
	}()
	if s.admin != nil {
		go func() {
			if err := s.admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error().Err(err).Msg("admin server error")
			}
		}()
	}

	jobs, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	for _, run := range []func(context.Context){s.store.Run, s.elector.Run, s.replicator.Run} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(jobs)
		}(run)
	}

	// Wait for context cancellation
	<-ctx.Done()
	cancel()
	wg.Wait()

	return s.Stop()
}

// Stop stops the server gracefully
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		s.log.Info().Msg("stopping objrepo server")

		var wg sync.WaitGroup
		for _, g := range []*grpc.Server{s.biz, s.hb} {
			wg.Add(1)
			go func(g *grpc.Server) {
				defer wg.Done()
				gracefulStop(g, 30*time.Second, s.log)
			}(g)
		}
		wg.Wait()

		if s.admin != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.admin.Shutdown(ctx); err != nil {
				s.log.Warn().Err(err).Msg("admin shutdown")
			}
			cancel()
		}
		s.log.Info().Msg("server stopped")
	})
	return nil
}

func gracefulStop(g *grpc.Server, timeout time.Duration, log zerolog.Logger) {
	done := make(chan struct{})
	go func() {
		g.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn().Msg("force stopping grpc server")
		g.Stop()
	}
}
