package cache

import (
	"container/list"
	"sync"
)

// Memory is the in-memory LRU tier. Capacity is enforced in bytes; putting
// a value evicts least recently used entries until it fits.
type Memory struct {
	mu       sync.Mutex
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	stats Stats
}

type memoryEntry struct {
	key  string
	data []byte
}

// NewMemory creates a memory tier with the given capacity in bytes.
func NewMemory(capacity int64) *Memory {
	return &Memory{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get returns the value for key and marks it most recently used.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		m.stats.Misses++
		return nil, false
	}

	m.eviction.MoveToFront(elem)
	m.stats.Hits++
	return elem.Value.(*memoryEntry).data, true
}

// Put stores the value, evicting old entries as needed. Values larger than
// the whole tier are rejected with ErrTooLarge.
func (m *Memory) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := int64(len(data))
	if size > m.capacity {
		return ErrTooLarge
	}

	if elem, ok := m.items[key]; ok {
		entry := elem.Value.(*memoryEntry)
		m.size += size - int64(len(entry.data))
		entry.data = data
		m.eviction.MoveToFront(elem)
		return nil
	}

	for m.size+size > m.capacity && m.eviction.Len() > 0 {
		m.evictOldest()
	}

	m.items[key] = m.eviction.PushFront(&memoryEntry{key: key, data: data})
	m.size += size
	return nil
}

// Delete removes key from the tier. Missing keys are a no-op.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
}

// Clear empties the tier.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.eviction.Init()
	m.size = 0
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Stats returns the tier's counters.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats
	stats.Size = m.size
	stats.Items = int64(len(m.items))
	return stats
}

// evictOldest drops the least recently used entry. Caller holds the lock.
func (m *Memory) evictOldest() {
	if elem := m.eviction.Back(); elem != nil {
		m.remove(elem)
		m.stats.Evictions++
	}
}

func (m *Memory) remove(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	m.eviction.Remove(elem)
	delete(m.items, entry.key)
	m.size -= int64(len(entry.data))
}
