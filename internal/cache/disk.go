package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const indexFile = "index.gob"

// Values below this size are stored raw; compressing small PCM chunks is
// all overhead.
const compressionThreshold = 1024

// Disk is the persistent tier. Values are stored one file per key under a
// base directory, zstd-compressed when that actually shrinks them, with a
// gob index for lookups across runs.
type Disk struct {
	mu       sync.Mutex
	basePath string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index  map[string]*diskEntry
	stats  Stats
	closed bool
}

type diskEntry struct {
	Key        string
	File       string
	Size       int64 // bytes on disk, after compression
	Compressed bool
	LastAccess time.Time
}

// NewDisk creates (or reopens) a disk tier rooted at basePath with the
// given capacity in bytes. A stale or unreadable index is discarded and
// rebuilt empty.
func NewDisk(basePath string, capacity int64) (*Disk, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	d := &Disk{
		basePath: basePath,
		capacity: capacity,
		encoder:  encoder,
		decoder:  decoder,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}

	if err := d.loadIndex(); err != nil {
		d.index = make(map[string]*diskEntry)
	}
	for _, entry := range d.index {
		d.size += entry.Size
	}

	return d, nil
}

// Get reads the value for key from disk. Missing or corrupt files are
// dropped from the index and reported as misses.
func (d *Disk) Get(key string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.index[key]
	if !ok {
		d.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.File)
	if err != nil {
		d.dropEntry(entry)
		d.stats.Misses++
		return nil, false
	}

	if entry.Compressed {
		data, err = d.decoder.DecodeAll(data, nil)
		if err != nil {
			d.dropEntry(entry)
			d.stats.Misses++
			return nil, false
		}
	}

	entry.LastAccess = time.Now()
	d.stats.Hits++
	return data, true
}

// Put writes the value for key, evicting least recently accessed entries
// until it fits.
func (d *Disk) Put(key string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := data
	compressed := false
	if len(data) > compressionThreshold {
		if c := d.encoder.EncodeAll(data, nil); len(c) < len(data) {
			stored = c
			compressed = true
		}
	}

	size := int64(len(stored))
	if size > d.capacity {
		return ErrTooLarge
	}

	if existing, ok := d.index[key]; ok {
		d.dropEntry(existing)
	}
	for d.size+size > d.capacity && len(d.index) > 0 {
		d.evictOldest()
	}

	file := filepath.Join(d.basePath, d.fileName(key))
	if err := writeFileAtomic(file, stored); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	d.index[key] = &diskEntry{
		Key:        key,
		File:       file,
		Size:       size,
		Compressed: compressed,
		LastAccess: time.Now(),
	}
	d.size += size
	return nil
}

// Delete removes key and its file. Missing keys are a no-op.
func (d *Disk) Delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entry, ok := d.index[key]; ok {
		d.dropEntry(entry)
	}
}

// Len returns the number of indexed entries.
func (d *Disk) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.index)
}

// Stats returns the tier's counters.
func (d *Disk) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.stats
	stats.Size = d.size
	stats.Items = int64(len(d.index))
	return stats
}

// Close persists the index. It is idempotent, so a tier shared by several
// owners can be closed by each of them.
func (d *Disk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.saveIndex()
}

func (d *Disk) fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16]) + ".clip"
}

// dropEntry removes an entry and its file. Caller holds the lock.
func (d *Disk) dropEntry(entry *diskEntry) {
	os.Remove(entry.File)
	delete(d.index, entry.Key)
	d.size -= entry.Size
}

func (d *Disk) evictOldest() {
	var oldest *diskEntry
	for _, entry := range d.index {
		if oldest == nil || entry.LastAccess.Before(oldest.LastAccess) {
			oldest = entry
		}
	}
	if oldest != nil {
		d.dropEntry(oldest)
		d.stats.Evictions++
	}
}

func (d *Disk) loadIndex() error {
	f, err := os.Open(filepath.Join(d.basePath, indexFile))
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	return gob.NewDecoder(f).Decode(&d.index)
}

func (d *Disk) saveIndex() error {
	path := filepath.Join(d.basePath, indexFile)
	tmp, err := os.CreateTemp(d.basePath, "index-*")
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(tmp).Encode(d.index); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// writeFileAtomic writes via a temp file and rename so a crash never leaves
// a truncated cache file behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "clip-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
