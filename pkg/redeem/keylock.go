package redeem

import "sync"

// keyLocks hands out one mutex per license key so redemptions for the same
// key serialize while unrelated keys proceed in parallel. Entries are
// reference-counted and dropped once the last holder releases, so the map
// does not grow with the key space.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[string]*keyLock)}
}

// acquire blocks until the lock for key is held and returns the release
// function. Callers must release on every exit path.
func (p *keyLocks) acquire(key string) (release func()) {
	p.mu.Lock()
	l, ok := p.m[key]
	if !ok {
		l = &keyLock{}
		p.m[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.m, key)
		}
		p.mu.Unlock()
	}
}
