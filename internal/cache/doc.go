// Package cache stores synthesized audio so repeated reads and palette
// glyphs play instantly. A small in-memory LRU fronts an optional
// zstd-compressed disk tier; both are pure performance caches and carry
// no semantics across runs.
package cache
