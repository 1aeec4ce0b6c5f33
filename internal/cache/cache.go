package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// ErrTooLarge is returned when a value exceeds a tier's capacity.
var ErrTooLarge = errors.New("value too large for cache")

// Stats holds performance counters for one cache tier.
type Stats struct {
	Capacity  int64
	Size      int64
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits over total lookups, or zero before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Key derives a cache key for a synthesis request. The same engine, voice,
// speed, and text always map to the same key.
func Key(engine, voice string, speed float64, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f|%s", engine, voice, speed, text)))
	return hex.EncodeToString(sum[:16])
}

// Store is the two-tier audio cache: a memory LRU in front of an optional
// persistent disk tier. Hits in the disk tier are promoted to memory.
// Failures in either tier are logged and treated as misses; callers never
// see a cache error on the read path.
type Store struct {
	memory *Memory
	disk   *Disk
}

// NewStore creates a store with the given memory capacity in bytes. disk
// may be nil for a memory-only store.
func NewStore(memoryCapacity int64, disk *Disk) *Store {
	return &Store{
		memory: NewMemory(memoryCapacity),
		disk:   disk,
	}
}

// Get returns the cached value for key, consulting memory first and then
// disk.
func (s *Store) Get(key string) ([]byte, bool) {
	if data, ok := s.memory.Get(key); ok {
		return data, true
	}
	if s.disk == nil {
		return nil, false
	}

	data, ok := s.disk.Get(key)
	if !ok {
		return nil, false
	}
	if err := s.memory.Put(key, data); err != nil {
		log.Debug("cache promotion skipped", "key", key, "err", err)
	}
	return data, true
}

// Put stores the value in both tiers. Tier failures are non-fatal.
func (s *Store) Put(key string, data []byte) {
	if err := s.memory.Put(key, data); err != nil {
		log.Debug("memory cache put failed", "key", key, "err", err)
	}
	if s.disk == nil {
		return
	}
	if err := s.disk.Put(key, data); err != nil {
		log.Debug("disk cache put failed", "key", key, "err", err)
	}
}

// Delete removes key from both tiers. Missing keys are a no-op.
func (s *Store) Delete(key string) {
	s.memory.Delete(key)
	if s.disk != nil {
		s.disk.Delete(key)
	}
}

// Close flushes the disk index and reports each tier's hit rate. It is
// idempotent, so a store shared by several engines can be closed by each.
func (s *Store) Close() error {
	mem := s.memory.Stats()
	log.Debug("memory cache closing",
		"items", mem.Items,
		"hit_rate", fmt.Sprintf("%.2f", mem.HitRate()))

	if s.disk == nil {
		return nil
	}
	dsk := s.disk.Stats()
	log.Debug("disk cache closing",
		"items", dsk.Items,
		"hit_rate", fmt.Sprintf("%.2f", dsk.HitRate()))
	return s.disk.Close()
}

// MemoryStats returns the memory tier's counters.
func (s *Store) MemoryStats() Stats {
	return s.memory.Stats()
}
