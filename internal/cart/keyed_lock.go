package cart

import "sync"

// keyedLock serializes mutations per line item. Each key owns a capacity-1
// channel; the runtime wakes blocked senders in FIFO order, so queued
// mutations for the same line apply in submission order while mutations on
// different lines proceed independently.
type keyedLock struct {
	mu    sync.Mutex
	locks map[int64]*lockEntry
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{locks: make(map[int64]*lockEntry)}
}

func (k *keyedLock) acquire(key int64) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.ch <- struct{}{}
}

func (k *keyedLock) release(key int64) {
	k.mu.Lock()
	e := k.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	<-e.ch
}
