package cluster

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// nodeWithUptime returns a node that has been running for the given number of seconds.
func nodeWithUptime(id string, seconds int64) *Node {
	clock := newFakeClock()
	n := NewNodeWithClock(id, clock.Now)
	clock.Advance(time.Duration(seconds) * time.Second)
	return n
}

// staticProber answers with fixed uptimes; peers missing from the map are unreachable.
func staticProber(uptimes map[string]int64) UptimeProber {
	return ProberFunc(func(ctx context.Context, p Peer) (Candidate, error) {
		up, ok := uptimes[p.ID]
		if !ok {
			return Candidate{}, errors.New("connection refused")
		}
		return Candidate{NodeID: p.ID, UptimeSeconds: up}, nil
	})
}

func peers(ids ...string) []Peer {
	out := make([]Peer, 0, len(ids))
	for i, id := range ids {
		out = append(out, Peer{ID: id, Host: "127.0.0.1", BizPort: 50051 + 10*i, HBPort: 50052 + 10*i})
	}
	return out
}

func newTestElector(node *Node, ps []Peer, prober UptimeProber) *Elector {
	return NewElector(node, ps, prober, ElectorConfig{Interval: 20 * time.Millisecond, ProbeTimeout: 50 * time.Millisecond}, zerolog.Nop())
}

func TestNewNodeStartsAsBackup(t *testing.T) {
	n := NewNode("n1")
	assert.Equal(t, RoleBackup, n.Role())
	assert.False(t, n.IsPrimary())
	assert.Equal(t, "", n.Leader())
}

func TestRoundWinnerIsMaxUptime(t *testing.T) {
	node := nodeWithUptime("self", 10)
	e := newTestElector(node, peers("p1", "p2"), staticProber(map[string]int64{"p1": 30, "p2": 5}))

	res := e.Round(context.Background())

	assert.Equal(t, "p1", res.Leader)
	assert.Equal(t, []Candidate{{"p1", 30}, {"self", 10}, {"p2", 5}}, res.Candidates)
	assert.Equal(t, RoleBackup, node.Role())
	assert.Equal(t, "p1", node.Leader())
}

func TestRoundPromotesSelfWhenLongestRunning(t *testing.T) {
	node := nodeWithUptime("p1", 30)
	e := newTestElector(node, peers("self", "p2"), staticProber(map[string]int64{"self": 10, "p2": 5}))

	res := e.Round(context.Background())

	assert.Equal(t, "p1", res.Leader)
	require.NotNil(t, res.Transition)
	assert.Equal(t, RolePrimary, res.Transition.Role)
	assert.Equal(t, RoleBackup, res.Transition.PrevRole)
	assert.True(t, node.IsPrimary())
}

func TestRoundDegradesToSelfUnderPartition(t *testing.T) {
	node := nodeWithUptime("self", 1)
	e := newTestElector(node, peers("p1", "p2"), staticProber(nil))

	res := e.Round(context.Background())

	assert.Equal(t, []Candidate{{"self", 1}}, res.Candidates)
	assert.Equal(t, "self", res.Leader)
	assert.True(t, node.IsPrimary())
}

func TestRoundTieBreaksOnEnumerationOrder(t *testing.T) {
	node := nodeWithUptime("self", 10)
	e := newTestElector(node, peers("p1", "p2"), staticProber(map[string]int64{"p1": 10, "p2": 10}))

	res := e.Round(context.Background())
	assert.Equal(t, "self", res.Leader)

	// The same tie seen from p1 also elects itself.
	other := nodeWithUptime("p1", 10)
	e2 := newTestElector(other, peers("self", "p2"), staticProber(map[string]int64{"self": 10, "p2": 10}))
	assert.Equal(t, "p1", e2.Round(context.Background()).Leader)
}

func TestRoundDoesNotFlapOnUnchangedWinner(t *testing.T) {
	node := nodeWithUptime("self", 10)
	e := newTestElector(node, peers("p1"), staticProber(map[string]int64{"p1": 30}))

	var transitions []Transition
	e.OnTransition(func(tr Transition) { transitions = append(transitions, tr) })

	first := e.Round(context.Background())
	second := e.Round(context.Background())

	require.NotNil(t, first.Transition, "first round always publishes the role")
	assert.Nil(t, second.Transition)
	assert.Len(t, transitions, 1)
	assert.Equal(t, RoleBackup, transitions[0].Role)
	assert.Equal(t, "p1", transitions[0].Leader)
}

func TestRoundReportsLeaderChangeWithoutRoleChange(t *testing.T) {
	node := nodeWithUptime("self", 10)
	uptimes := map[string]int64{"p1": 30, "p2": 20}
	var mu sync.Mutex
	prober := ProberFunc(func(ctx context.Context, p Peer) (Candidate, error) {
		mu.Lock()
		defer mu.Unlock()
		up, ok := uptimes[p.ID]
		if !ok {
			return Candidate{}, errors.New("unreachable")
		}
		return Candidate{NodeID: p.ID, UptimeSeconds: up}, nil
	})
	e := newTestElector(node, peers("p1", "p2"), prober)

	e.Round(context.Background())
	assert.Equal(t, "p1", node.Leader())

	mu.Lock()
	delete(uptimes, "p1")
	mu.Unlock()

	res := e.Round(context.Background())
	require.NotNil(t, res.Transition)
	assert.Equal(t, "p2", res.Transition.Leader)
	assert.Equal(t, "p1", res.Transition.PrevLeader)
	assert.Equal(t, RoleBackup, res.Transition.Role)
	assert.Equal(t, RoleBackup, res.Transition.PrevRole)
}

func TestRoundDemotesWhenOlderPeerAppears(t *testing.T) {
	node := nodeWithUptime("self", 10)
	var reachable atomic.Bool
	prober := ProberFunc(func(ctx context.Context, p Peer) (Candidate, error) {
		if !reachable.Load() {
			return Candidate{}, errors.New("unreachable")
		}
		return Candidate{NodeID: p.ID, UptimeSeconds: 100}, nil
	})
	e := newTestElector(node, peers("p1"), prober)

	e.Round(context.Background())
	require.True(t, node.IsPrimary())

	reachable.Store(true)
	res := e.Round(context.Background())
	require.NotNil(t, res.Transition)
	assert.Equal(t, RolePrimary, res.Transition.PrevRole)
	assert.False(t, node.IsPrimary())
}

func TestProbeIsBoundedByTimeout(t *testing.T) {
	node := nodeWithUptime("self", 5)
	hanging := ProberFunc(func(ctx context.Context, p Peer) (Candidate, error) {
		<-ctx.Done()
		return Candidate{}, ctx.Err()
	})
	e := newTestElector(node, peers("p1", "p2"), hanging)

	start := time.Now()
	res := e.Round(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "self", res.Leader)
}

func TestTickSwallowsPanics(t *testing.T) {
	node := nodeWithUptime("self", 5)
	e := newTestElector(node, peers("p1"), ProberFunc(func(ctx context.Context, p Peer) (Candidate, error) {
		panic("boom")
	}))

	assert.NotPanics(t, func() { e.tick(context.Background()) })
}

func TestRunElectsPeriodicallyAndStops(t *testing.T) {
	node := NewNode("self")
	var probes atomic.Int32
	e := newTestElector(node, peers("p1"), ProberFunc(func(ctx context.Context, p Peer) (Candidate, error) {
		probes.Add(1)
		return Candidate{}, errors.New("unreachable")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return probes.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, node.IsPrimary())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestNodeStatusPairsLeaderWithRole(t *testing.T) {
	n := NewNode("self")
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			if i%2 == 0 {
				n.setRole("self", true)
			} else {
				n.setRole("other", false)
			}
		}
	}()

	for {
		select {
		case <-done:
			leader, role := n.Status()
			assert.Equal(t, "other", leader)
			assert.Equal(t, RoleBackup, role)
			return
		default:
		}
		leader, role := n.Status()
		switch leader {
		case "":
			require.Equal(t, RoleBackup, role)
		case "self":
			require.Equal(t, RolePrimary, role)
		default:
			require.Equal(t, RoleBackup, role)
		}
	}
}
