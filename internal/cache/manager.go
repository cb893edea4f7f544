package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// Loader produces the value for a key on a cache miss.
type Loader func(ctx context.Context) ([]byte, error)

// Store coordinates the memory and disk levels. Disk hits are promoted to
// memory, and concurrent misses for one key share a single load.
type Store struct {
	l1 *MemoryCache
	l2 *DiskCache // nil when disabled

	group  singleflight.Group
	logger *log.Logger

	cleanupStop chan struct{}
	cleanupWg   sync.WaitGroup

	mu    sync.Mutex
	stats struct {
		L1Hits int64
		L2Hits int64
		Loads  int64
	}
}

// NewStore creates a Store. The disk level is skipped when cfg.DiskPath is
// empty.
func NewStore(cfg Config, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default().WithPrefix("cache")
	}

	s := &Store{
		l1:          NewMemoryCache(cfg.MemoryCapacity, cfg.TTL),
		logger:      logger,
		cleanupStop: make(chan struct{}),
	}

	if cfg.DiskPath != "" {
		l2, err := NewDiskCache(cfg.DiskPath, cfg.DiskCapacity, cfg.CompressionLevel, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		s.l2 = l2
	}

	return s, nil
}

// Get checks memory, then disk.
func (s *Store) Get(key string) ([]byte, bool) {
	if data, ok := s.l1.Get(key); ok {
		s.count(LevelMemory)
		return data, true
	}
	if s.l2 == nil {
		return nil, false
	}

	data, stored, ok := s.l2.Get(key)
	if !ok {
		return nil, false
	}
	s.count(LevelDisk)
	if err := s.l1.put(key, data, stored); err != nil && err != ErrItemTooLarge {
		s.logger.Warn("promotion failed", "err", err)
	}
	return data, true
}

// Put stores value in both levels. A disk failure is logged, not returned,
// since the memory copy still serves this process.
func (s *Store) Put(key string, value []byte) error {
	if err := s.l1.Put(key, value); err != nil && err != ErrItemTooLarge {
		return fmt.Errorf("L1 cache error: %w", err)
	}
	if s.l2 != nil {
		if err := s.l2.Put(key, value); err != nil {
			s.logger.Warn("disk cache write failed", "err", err)
		}
	}
	return nil
}

// GetOrLoad returns the cached value for key or calls load once, even when
// several callers miss at the same time.
func (s *Store) GetOrLoad(ctx context.Context, key string, load Loader) ([]byte, error) {
	if data, ok := s.Get(key); ok {
		return data, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if data, ok := s.Get(key); ok {
			return data, nil
		}
		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.stats.Loads++
		s.mu.Unlock()
		if err := s.Put(key, data); err != nil {
			s.logger.Warn("cache store failed", "err", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Delete removes key from every level.
func (s *Store) Delete(key string) error {
	s.l1.Delete(key)
	if s.l2 != nil {
		return s.l2.Delete(key)
	}
	return nil
}

// Clear empties every level.
func (s *Store) Clear() error {
	s.l1.Clear()
	if s.l2 != nil {
		return s.l2.Clear()
	}
	return nil
}

// Prune drops expired entries from every level.
func (s *Store) Prune() int {
	n := s.l1.Prune()
	if s.l2 != nil {
		removed, err := s.l2.Prune()
		if err != nil {
			s.logger.Warn("disk prune failed", "err", err)
		}
		n += removed
	}
	return n
}

// StoreStats summarizes a Store.
type StoreStats struct {
	Memory Stats
	Disk   Stats
	L1Hits int64
	L2Hits int64
	Loads  int64
}

// Stats returns per-level and aggregate statistics.
func (s *Store) Stats() StoreStats {
	s.mu.Lock()
	out := StoreStats{L1Hits: s.stats.L1Hits, L2Hits: s.stats.L2Hits, Loads: s.stats.Loads}
	s.mu.Unlock()

	out.Memory = s.l1.Stats()
	if s.l2 != nil {
		out.Disk = s.l2.Stats()
	}
	return out
}

// StartCleanup prunes expired entries every interval until Close.
func (s *Store) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.cleanupWg.Add(1)
	go func() {
		defer s.cleanupWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Prune(); n > 0 {
					s.logger.Debug("pruned expired entries", "count", n)
				}
			case <-s.cleanupStop:
				return
			}
		}
	}()
}

// Close stops cleanup and flushes the disk index.
func (s *Store) Close() error {
	select {
	case <-s.cleanupStop:
	default:
		close(s.cleanupStop)
	}
	s.cleanupWg.Wait()

	if s.l2 != nil {
		return s.l2.Close()
	}
	return nil
}

func (s *Store) count(level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch level {
	case LevelMemory:
		s.stats.L1Hits++
	case LevelDisk:
		s.stats.L2Hits++
	}
}
