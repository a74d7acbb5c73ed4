package cache

import (
	"sync"
	"time"

	applog "ledger/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically evicts expired entries from registered caches.
type Manager struct {
	caches      []Cleaner
	logger      *applog.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	startOnce   sync.Once
	stopOnce    sync.Once
	started     bool
}

// NewManager creates a new cache manager
func NewManager(logger *applog.Logger) *Manager {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Manager{
		logger:      logger.WithComponent(applog.ComponentSession),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager for cleanup. It must be called
// before StartCleanup.
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	m.startOnce.Do(func() {
		m.started = true
		go m.cleanup(interval)
	})
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanNow(); n > 0 {
				m.logger.Debug("Cache cleanup completed", "entries_removed", n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// CleanNow evicts expired entries from every registered cache and returns
// how many were removed.
func (m *Manager) CleanNow() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the cleanup routine and waits for it to exit. It is safe to call
// more than once, and before StartCleanup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
		if m.started {
			<-m.cleanupDone
		}
	})
}
