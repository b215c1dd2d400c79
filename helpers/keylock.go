package helpers

import (
	"strings"
	"sync"
)

// KeyedMutex hands out one mutex per string key. Locks are created on first
// use and never removed, so keys should come from a bounded set such as
// account+chain pairs or sync query keys.
type KeyedMutex struct {
	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyedMutex) getOrCreate(key string) *sync.Mutex {
	k.mu.RLock()
	lock, exists := k.locks[key]
	k.mu.RUnlock()

	if exists {
		return lock
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if lock, exists := k.locks[key]; exists {
		return lock
	}

	lock = &sync.Mutex{}
	k.locks[key] = lock
	return lock
}

// Lock blocks until the mutex for key is held and returns its release func.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	lock := k.getOrCreate(key)
	lock.Lock()
	return lock.Unlock
}

// TryLock reports whether the mutex for key was free and is now held.
func (k *KeyedMutex) TryLock(key string) (unlock func(), ok bool) {
	lock := k.getOrCreate(key)
	if !lock.TryLock() {
		return nil, false
	}
	return lock.Unlock, true
}

// LockKey joins key parts with ":".
func LockKey(parts ...string) string {
	return strings.Join(parts, ":")
}
