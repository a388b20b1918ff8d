package store

import (
	"sync"

	"github.com/mr-tron/base58"
)

const shardCount = 16

type shard struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// MemStore is a sharded in-memory Store: one RWMutex-guarded map per shard,
// selected by a cheap hash of the key, adapted from the pool-cache's
// RWMutex-guarded map and the RPC pool's distribute-across-N pattern. It
// backs cmd/simcli and tests in place of a real host key-value backend.
type MemStore struct {
	shards [shardCount]*shard
}

func NewMemStore() *MemStore {
	ms := &MemStore{}
	for i := range ms.shards {
		ms.shards[i] = &shard{data: make(map[string][]byte)}
	}
	return ms
}

func (m *MemStore) shardFor(key []byte) *shard {
	var h uint32 = 2166136261
	for _, b := range key {
		h ^= uint32(b)
		h *= 16777619
	}
	return m.shards[h%shardCount]
}

// encodeKey renders a key in the same base58 alphabet the host uses for
// public keys, so a debug dump of the map is readable alongside pool/owner
// addresses.
func encodeKey(key []byte) string {
	return base58.Encode(key)
}

func (m *MemStore) Get(key []byte) ([]byte, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[encodeKey(key)]
	return v, ok
}

func (m *MemStore) Put(key []byte, value []byte) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[encodeKey(key)] = value
}

func (m *MemStore) Delete(key []byte) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, encodeKey(key))
}
