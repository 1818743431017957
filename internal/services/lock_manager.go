// internal/services/lock_manager.go
package services

import (
	"sync"
	"time"
)

// LockManager hands out one RWMutex per novel so that a structure read-modify-write
// is never interleaved with another write to the same novel.
type LockManager struct {
	locks      map[string]*LockInfo
	globalLock sync.RWMutex
	lockTTL    time.Duration
	maxLocks   int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// LockInfo wraps a lock with its last use.
type LockInfo struct {
	Mutex    *sync.RWMutex
	LastUsed time.Time
}

// NewLockManager creates a lock manager and starts its janitor. Call Close to stop it.
func NewLockManager() *LockManager {
	lm := &LockManager{
		locks:    make(map[string]*LockInfo),
		lockTTL:  30 * time.Minute,
		maxLocks: 200,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go lm.cleanupLoop(5 * time.Minute)
	return lm
}

// Close stops the janitor.
func (lm *LockManager) Close() {
	lm.stopOnce.Do(func() { close(lm.stop) })
	<-lm.done
}

// GetLock returns the lock for key, creating it on first use.
func (lm *LockManager) GetLock(key string) *sync.RWMutex {
	lm.globalLock.RLock()
	if info, exists := lm.locks[key]; exists {
		lm.globalLock.RUnlock()
		lm.touch(key)
		return info.Mutex
	}
	lm.globalLock.RUnlock()

	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()
	if info, exists := lm.locks[key]; exists {
		info.LastUsed = time.Now()
		return info.Mutex
	}
	info := &LockInfo{Mutex: &sync.RWMutex{}, LastUsed: time.Now()}
	lm.locks[key] = info
	return info.Mutex
}

func (lm *LockManager) touch(key string) {
	lm.globalLock.Lock()
	if info, exists := lm.locks[key]; exists {
		info.LastUsed = time.Now()
	}
	lm.globalLock.Unlock()
}

// WithLock runs fn holding the write lock for key.
func (lm *LockManager) WithLock(key string, fn func() error) error {
	lock := lm.GetLock(key)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// WithReadLock runs fn holding the read lock for key.
func (lm *LockManager) WithReadLock(key string, fn func() error) error {
	lock := lm.GetLock(key)
	lock.RLock()
	defer lock.RUnlock()
	return fn()
}

func (lm *LockManager) cleanupLoop(interval time.Duration) {
	defer close(lm.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-lm.stop:
			return
		case <-ticker.C:
			lm.cleanupUnusedLocks()
		}
	}
}

// cleanupUnusedLocks only prunes once the table has grown past maxLocks, and then
// only locks that nobody holds.
func (lm *LockManager) cleanupUnusedLocks() {
	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()

	if len(lm.locks) <= lm.maxLocks {
		return
	}
	now := time.Now()
	for key, info := range lm.locks {
		if now.Sub(info.LastUsed) <= lm.lockTTL {
			continue
		}
		if info.Mutex.TryLock() {
			delete(lm.locks, key)
			info.Mutex.Unlock()
		}
	}
}
