package cluster

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"objrepo/pkg/observability"
)

const (
	DefaultElectionInterval = 2 * time.Second
	DefaultProbeTimeout     = 500 * time.Millisecond
)

// UptimeProber asks a peer's liveness endpoint for its id and uptime.
type UptimeProber interface {
	ProbeUptime(ctx context.Context, peer Peer) (Candidate, error)
}

// ProberFunc adapts a function to UptimeProber.
type ProberFunc func(ctx context.Context, peer Peer) (Candidate, error)

func (f ProberFunc) ProbeUptime(ctx context.Context, peer Peer) (Candidate, error) {
	return f(ctx, peer)
}

// ElectorConfig controls the election cadence.
type ElectorConfig struct {
	Interval     time.Duration
	ProbeTimeout time.Duration
}

// RoundResult describes one election round.
type RoundResult struct {
	Candidates []Candidate
	Leader     string
	// Transition is nil when the round changed nothing.
	Transition *Transition
}

// Elector periodically elects the longest-running reachable replica as primary
// and writes the outcome to the local Node.
//
// Ties are broken by enumeration order: self first, then peers in configured
// order. Two nodes with identical uptime can therefore both claim primary.
type Elector struct {
	node   *Node
	peers  []Peer
	prober UptimeProber
	cfg    ElectorConfig
	log    zerolog.Logger

	onTransition func(Transition)

	mu         sync.Mutex
	lastLeader string
	firstRound bool
}

// NewElector wires an elector for node over the given peers.
func NewElector(node *Node, peers []Peer, prober UptimeProber, cfg ElectorConfig, log zerolog.Logger) *Elector {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultElectionInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	return &Elector{
		node:       node,
		peers:      append([]Peer(nil), peers...),
		prober:     prober,
		cfg:        cfg,
		log:        log,
		firstRound: true,
	}
}

// OnTransition registers a callback invoked after every role transition.
// It must be set before Run.
func (e *Elector) OnTransition(fn func(Transition)) { e.onTransition = fn }

// Run executes a round every interval until ctx is cancelled. A failing round
// never stops the loop.
func (e *Elector) Run(ctx context.Context) {
	t := time.NewTicker(e.cfg.Interval)
	defer t.Stop()

	e.log.Info().Dur("interval", e.cfg.Interval).Int("peers", len(e.peers)).Msg("election loop started")
	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("election loop stopped")
			return
		case <-t.C:
			e.tick(ctx)
		}
	}
}

func (e *Elector) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("election round failed")
		}
	}()
	e.Round(ctx)
}

// Round runs a single election round synchronously.
func (e *Elector) Round(ctx context.Context) RoundResult {
	self := e.node.ID()
	candidates := []Candidate{{NodeID: self, UptimeSeconds: e.node.UptimeSeconds()}}

	for _, p := range e.peers {
		c, err := e.probe(ctx, p)
		if err != nil {
			e.log.Debug().Err(err).Str("peer", p.ID).Str("addr", p.HBAddr()).Msg("peer probe failed")
			observability.RecordProbeFailure(p.ID)
			continue
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].UptimeSeconds > candidates[j].UptimeSeconds
	})
	leader := candidates[0].NodeID
	amLeader := leader == self

	res := RoundResult{Candidates: candidates, Leader: leader}
	observability.RecordElectionRound()

	e.mu.Lock()
	wasPrimary := e.node.IsPrimary()
	prevLeader := e.lastLeader
	leaderChanged := leader != prevLeader
	roleChanged := wasPrimary != amLeader
	first := e.firstRound
	if leaderChanged || roleChanged || first {
		e.lastLeader = leader
		e.firstRound = false
		e.node.setRole(leader, amLeader)
		res.Transition = &Transition{
			Leader:     leader,
			Role:       e.node.Role(),
			PrevLeader: prevLeader,
			PrevRole:   roleOf(wasPrimary),
			At:         time.Now(),
		}
	}
	e.mu.Unlock()

	if res.Transition != nil {
		e.log.Info().
			Str("role", string(res.Transition.Role)).
			Str("leader", leader).
			Str("prev_leader", prevLeader).
			Msg("role changed")
		observability.RecordRole(string(res.Transition.Role), amLeader)
		if e.onTransition != nil {
			e.onTransition(*res.Transition)
		}
	}
	return res
}

func (e *Elector) probe(ctx context.Context, p Peer) (Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
	defer cancel()
	return e.prober.ProbeUptime(ctx, p)
}

func roleOf(primary bool) Role {
	if primary {
		return RolePrimary
	}
	return RoleBackup
}
