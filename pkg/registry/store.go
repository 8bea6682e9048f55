package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"objrepo/pkg/observability"
)

// Object is a named entity's discoverable address plus free-form metadata.
type Object struct {
	Name     string
	Address  string
	Language string
	Version  string
	Region   string
	LastSeen time.Time
}

// Store is an in-memory registry of objects whose entries expire when they are not
// refreshed within the TTL. A single mutex guards the map, the sweep included.
// The objects gauge is set while that mutex is held so it follows mutation order.
type Store struct {
	mu      sync.Mutex
	objects map[string]Object
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for mutation and eviction events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns an empty store that evicts objects idle for longer than ttl.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		objects: make(map[string]Object),
		ttl:     ttl,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TTL returns the configured expiry interval.
func (s *Store) TTL() time.Duration { return s.ttl }

// Register upserts obj and marks it as seen now. It never fails.
func (s *Store) Register(obj Object) bool {
	s.put("register", obj)
	s.log.Info().Str("object", obj.Name).Str("address", obj.Address).Msg("register")
	return true
}

// Update behaves exactly like Register.
func (s *Store) Update(obj Object) bool {
	s.put("update", obj)
	s.log.Info().Str("object", obj.Name).Str("address", obj.Address).Msg("update")
	return true
}

func (s *Store) put(op string, obj Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj.LastSeen = s.now()
	s.objects[obj.Name] = obj
	observability.RecordRegistryOp(op, len(s.objects))
}

// Deregister removes name if present. Absent names are not an error, so it
// always reports true.
func (s *Store) Deregister(name string) bool {
	s.mu.Lock()
	delete(s.objects, name)
	observability.RecordRegistryOp("deregister", len(s.objects))
	s.mu.Unlock()

	s.log.Info().Str("object", name).Msg("deregister")
	return true
}

// Get returns a copy of the named object and whether it exists.
func (s *Store) Get(name string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[name]
	return obj, ok
}

// List returns a point-in-time copy of every object, ordered by name.
func (s *Store) List() []Object {
	s.mu.Lock()
	out := make([]Object, 0, len(s.objects))
	for _, obj := range s.objects {
		out = append(out, obj)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of objects currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Heartbeat refreshes the named object. It reports false, and creates nothing,
// when the object is unknown.
func (s *Store) Heartbeat(name string) bool {
	s.mu.Lock()
	obj, ok := s.objects[name]
	if ok {
		obj.LastSeen = s.now()
		s.objects[name] = obj
		observability.RecordRegistryOp("heartbeat", len(s.objects))
	}
	s.mu.Unlock()

	if !ok {
		s.log.Debug().Str("object", name).Msg("heartbeat rejected, object not found")
		return false
	}
	s.log.Debug().Str("object", name).Msg("heartbeat")
	return true
}

// Merge upserts every object in the batch, stamping each with the receipt time
// rather than any timestamp carried by the sender. Nothing is removed.
func (s *Store) Merge(objs []Object) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, obj := range objs {
		obj.LastSeen = now
		s.objects[obj.Name] = obj
	}
	observability.RecordSync(len(objs), len(s.objects))
	return len(s.objects)
}

// Sweep evicts every object not seen within the TTL and returns the evicted names.
func (s *Store) Sweep() []string {
	s.mu.Lock()
	now := s.now()
	var expired []string
	for name, obj := range s.objects {
		if now.Sub(obj.LastSeen) > s.ttl {
			delete(s.objects, name)
			expired = append(expired, name)
			observability.RecordEviction(len(s.objects))
		}
	}
	s.mu.Unlock()

	sort.Strings(expired)
	for _, name := range expired {
		s.log.Warn().Str("object", name).Dur("ttl", s.ttl).Msg("object expired")
	}
	return expired
}

// Run sweeps once per TTL until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	t := time.NewTicker(s.ttl)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
