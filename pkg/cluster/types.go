package cluster

import (
	"net"
	"strconv"
	"time"
)

// Role is the node's replica role.
type Role string

const (
	RolePrimary Role = "PRIMARY"
	RoleBackup  Role = "BACKUP"
)

// Peer describes a configured replica. The list is fixed at startup and
// usually contains the local node as well.
type Peer struct {
	ID      string
	Host    string
	BizPort int
	HBPort  int
}

// BizAddr is the peer's business (registry) endpoint.
func (p Peer) BizAddr() string { return net.JoinHostPort(p.Host, strconv.Itoa(p.BizPort)) }

// HBAddr is the peer's liveness endpoint.
func (p Peer) HBAddr() string { return net.JoinHostPort(p.Host, strconv.Itoa(p.HBPort)) }

// Candidate is one entry of an election round.
type Candidate struct {
	NodeID        string
	UptimeSeconds int64
}

// Transition is emitted when a round changes the leader or the local role.
type Transition struct {
	Leader     string
	Role       Role
	PrevLeader string
	PrevRole   Role
	At         time.Time
}
