package arena

import "sync"

// registryShards keeps lock contention low while many walker goroutines
// record identities. Power of two so the shard pick is a mask.
const registryShards = 16

// InodeKey identifies a filesystem object across hard links.
type InodeKey struct {
	Device uint64
	Inode  uint64
}

type registryShard struct {
	mu      sync.Mutex
	entries map[InodeKey]claim
}

type claim struct {
	node NodeID
	path string
}

// InodeRegistry maps (device, inode) pairs to the node that claims them.
// A pair contributes its size to aggregates exactly once, attributed to
// the claimant. Claims are resolved deterministically: the link with the
// lexicographically smallest path wins, regardless of which walker
// goroutine registered first.
type InodeRegistry struct {
	shards [registryShards]registryShard
}

// NewInodeRegistry returns an empty registry.
func NewInodeRegistry() *InodeRegistry {
	r := &InodeRegistry{}
	for i := range r.shards {
		r.shards[i].entries = make(map[InodeKey]claim)
	}
	return r
}

func (r *InodeRegistry) shard(key InodeKey) *registryShard {
	return &r.shards[(key.Device^key.Inode)&(registryShards-1)]
}

// Register records node at path as a candidate claimant for key. If a
// candidate with a lexicographically smaller path already holds the key,
// the existing claim stands.
func (r *InodeRegistry) Register(key InodeKey, node NodeID, path string) {
	s := r.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[key]
	if !ok || path < existing.path {
		s.entries[key] = claim{node: node, path: path}
	}
}

// Claimant returns the node holding key, or InvalidNode when the key was
// never registered.
func (r *InodeRegistry) Claimant(key InodeKey) NodeID {
	s := r.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.entries[key]; ok {
		return c.node
	}
	return InvalidNode
}

// Len returns the number of distinct identities registered.
func (r *InodeRegistry) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}
