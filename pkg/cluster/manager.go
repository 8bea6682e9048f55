package cluster

import (
	"sync/atomic"
	"time"
)

// Node holds the runtime identity of the local replica: its id, when it
// started, and the role flag written by the election loop.
type Node struct {
	id      string
	started time.Time
	now     func() time.Time

	state atomic.Pointer[roleState]
}

// roleState is replaced as a whole so readers never see a leader paired with
// a role from a different round.
type roleState struct {
	leader  string
	primary bool
}

// NewNode creates the local node in the BACKUP role.
func NewNode(id string) *Node {
	return NewNodeWithClock(id, time.Now)
}

// NewNodeWithClock is NewNode with an injectable clock.
func NewNodeWithClock(id string, now func() time.Time) *Node {
	n := &Node{id: id, started: now(), now: now}
	n.state.Store(&roleState{})
	return n
}

// ID returns the node id.
func (n *Node) ID() string { return n.id }

// Uptime returns how long the node has been running.
func (n *Node) Uptime() time.Duration { return n.now().Sub(n.started) }

// UptimeSeconds returns the uptime truncated to whole seconds.
func (n *Node) UptimeSeconds() int64 { return int64(n.Uptime() / time.Second) }

// IsPrimary reports whether the node currently holds the primary role.
func (n *Node) IsPrimary() bool { return n.state.Load().primary }

// Role returns the current role.
func (n *Node) Role() Role { return roleOf(n.IsPrimary()) }

// Status returns the last leader and the local role as one consistent pair.
func (n *Node) Status() (leader string, role Role) {
	st := n.state.Load()
	return st.leader, roleOf(st.primary)
}

// Leader returns the winner of the last round that changed state.
func (n *Node) Leader() string { return n.state.Load().leader }

// setRole is called by the election loop only.
func (n *Node) setRole(leader string, primary bool) {
	n.state.Store(&roleState{leader: leader, primary: primary})
}
