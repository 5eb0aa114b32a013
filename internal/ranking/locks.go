package ranking

import (
	"context"
	"sync"
)

// clientLocks hands out one mutex per client. Entries are dropped once no
// goroutine holds or waits on them.
type clientLocks struct {
	mu    sync.Mutex
	locks map[int64]*clientLock
}

type clientLock struct {
	sem  chan struct{}
	refs int
}

func newClientLocks() *clientLocks {
	return &clientLocks{locks: make(map[int64]*clientLock)}
}

// acquire blocks until the client's lock is held or ctx is done.
func (l *clientLocks) acquire(ctx context.Context, clientID int64) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[clientID]
	if !ok {
		lk = &clientLock{sem: make(chan struct{}, 1)}
		l.locks[clientID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(clientID, lk)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.sem
			l.release(clientID, lk)
		})
	}, nil
}

func (l *clientLocks) release(clientID int64, lk *clientLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, clientID)
	}
}

// size returns the number of clients with a held or awaited lock.
func (l *clientLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
