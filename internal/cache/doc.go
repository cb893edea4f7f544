// Package cache provides a two-level cache for slow-changing service
// metadata such as the voice catalog. It combines an in-memory LRU (L1)
// with a zstd-compressed disk store (L2), both bounded by size and age.
package cache
