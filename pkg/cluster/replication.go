package cluster

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"objrepo/pkg/registry"
)

// Bridge merges snapshots received from other replicas into the local store.
// Merging only adds or refreshes; deletions converge through TTL expiry.
type Bridge struct {
	store *registry.Store
	log   zerolog.Logger
}

func NewBridge(store *registry.Store, log zerolog.Logger) *Bridge {
	return &Bridge{store: store, log: log}
}

// MergeSnapshot upserts every object by name, stamped with the receipt time.
// It returns the number of objects merged.
func (b *Bridge) MergeSnapshot(objs []registry.Object) int {
	total := b.store.Merge(objs)
	b.log.Info().Int("received", len(objs)).Int("objects", total).Msg("sync received")
	return len(objs)
}

// SnapshotPusher delivers a snapshot to a peer's business endpoint.
type SnapshotPusher interface {
	PushSnapshot(ctx context.Context, peer Peer, objs []registry.Object) error
}

// Replicator periodically pushes the local store to every other peer while the
// local node is primary. Pushes are best effort: failures are logged and the
// next tick tries again.
type Replicator struct {
	node     *Node
	store    *registry.Store
	peers    []Peer
	pusher   SnapshotPusher
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

func NewReplicator(node *Node, store *registry.Store, peers []Peer, pusher SnapshotPusher, interval, timeout time.Duration, log zerolog.Logger) *Replicator {
	return &Replicator{
		node:     node,
		store:    store,
		peers:    append([]Peer(nil), peers...),
		pusher:   pusher,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// Run pushes once per interval until ctx is cancelled. A non-positive interval
// disables replication.
func (r *Replicator) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.PushOnce(ctx)
		}
	}
}

// PushOnce sends one snapshot to each peer other than self and returns how many
// pushes succeeded. Backups push nothing.
func (r *Replicator) PushOnce(ctx context.Context) int {
	if !r.node.IsPrimary() {
		return 0
	}
	snapshot := r.store.List()
	ok := 0
	for _, p := range r.peers {
		if p.ID == r.node.ID() {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.pusher.PushSnapshot(pctx, p, snapshot)
		cancel()
		if err != nil {
			r.log.Warn().Err(err).Str("peer", p.ID).Msg("snapshot push failed")
			continue
		}
		ok++
	}
	r.log.Debug().Int("objects", len(snapshot)).Int("peers", ok).Msg("snapshot pushed")
	return ok
}
