package mutation

import (
	"slices"
	"sync"
)

// Locker serializes read-modify-write sequences on individual records within
// the process. Keys are arbitrary strings, conventionally
// "<collection>/<id>".
//
// Lock acquires every key in sorted order, so two callers locking
// overlapping sets cannot deadlock.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocker creates an empty locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*keyLock)}
}

// Key formats a lock key for a record.
func Key(collection, id string) string {
	return collection + "/" + id
}

// Lock blocks until all keys are held and returns the function that releases
// them. Duplicate keys are locked once.
func (l *Locker) Lock(keys ...string) (unlock func()) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]*keyLock, 0, len(sorted))
	for _, key := range sorted {
		kl := l.acquire(key)
		kl.mu.Lock()
		held = append(held, kl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(sorted[i])
		}
	}
}

func (l *Locker) acquire(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl := l.locks[key]
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// held returns the number of keys currently tracked. Used by tests.
func (l *Locker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
