package cluster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objrepo/pkg/registry"
)

func TestMergeSnapshotKeepsLocalObjects(t *testing.T) {
	store := registry.NewStore(time.Minute)
	store.Register(registry.Object{Name: "B", Address: "10.0.0.2:7000"})
	b := NewBridge(store, zerolog.Nop())

	n := b.MergeSnapshot([]registry.Object{{Name: "A", Address: "10.0.0.1:6000", Language: "Java"}})

	assert.Equal(t, 1, n)
	a, ok := store.Get("A")
	require.True(t, ok)
	assert.Equal(t, "Java", a.Language)
	_, ok = store.Get("B")
	assert.True(t, ok)
}

func TestMergeSnapshotOverwritesByArrival(t *testing.T) {
	store := registry.NewStore(time.Minute)
	store.Register(registry.Object{Name: "A", Address: "local"})
	b := NewBridge(store, zerolog.Nop())

	b.MergeSnapshot([]registry.Object{{Name: "A", Address: "remote", LastSeen: time.Unix(0, 0)}})

	a, _ := store.Get("A")
	assert.Equal(t, "remote", a.Address)
	assert.WithinDuration(t, time.Now(), a.LastSeen, time.Second)
}

type recordingPusher struct {
	mu     sync.Mutex
	pushed map[string][]registry.Object
	fail   map[string]bool
}

func (p *recordingPusher) PushSnapshot(ctx context.Context, peer Peer, objs []registry.Object) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[peer.ID] {
		return errors.New("unavailable")
	}
	if p.pushed == nil {
		p.pushed = make(map[string][]registry.Object)
	}
	p.pushed[peer.ID] = objs
	return nil
}

func TestReplicatorPushesOnlyWhenPrimary(t *testing.T) {
	store := registry.NewStore(time.Minute)
	store.Register(registry.Object{Name: "calc", Address: "10.0.0.1:6000"})
	node := NewNode("n1")
	pusher := &recordingPusher{fail: map[string]bool{"n3": true}}
	r := NewReplicator(node, store, peers("n1", "n2", "n3"), pusher, time.Second, time.Second, zerolog.Nop())

	assert.Equal(t, 0, r.PushOnce(context.Background()), "backups never push")
	assert.Empty(t, pusher.pushed)

	node.setRole("n1", true)
	assert.Equal(t, 1, r.PushOnce(context.Background()))

	require.Contains(t, pusher.pushed, "n2")
	assert.NotContains(t, pusher.pushed, "n1", "self is skipped")
	assert.Len(t, pusher.pushed["n2"], 1)
	assert.Equal(t, "calc", pusher.pushed["n2"][0].Name)
}

func TestReplicatorDisabledWithZeroInterval(t *testing.T) {
	r := NewReplicator(NewNode("n1"), registry.NewStore(time.Minute), nil, &recordingPusher{}, 0, time.Second, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately when disabled")
	}
}
