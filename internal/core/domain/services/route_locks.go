package services

import (
	"sync"

	"routeplanner/internal/core/domain/model/kernel"
)

// RouteLocks gives every route a single writer. Commands that load, change
// and save a route hold its lock for the whole sequence, so a caller that
// waited re-reads the state left by the previous one. Different routes never
// block each other.
type RouteLocks struct {
	mu    sync.Mutex
	locks map[kernel.UUID]*routeLock
}

type routeLock struct {
	mu   sync.Mutex
	refs int
}

func NewRouteLocks() *RouteLocks {
	return &RouteLocks{locks: make(map[kernel.UUID]*routeLock)}
}

// Lock blocks until the route is free and returns the matching unlock func.
//
//	unlock := locks.Lock(routeID)
//	defer unlock()
func (l *RouteLocks) Lock(routeID kernel.UUID) func() {
	l.mu.Lock()
	rl, ok := l.locks[routeID]
	if !ok {
		rl = &routeLock{}
		l.locks[routeID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()

	return func() {
		rl.mu.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, routeID)
		}
		l.mu.Unlock()
	}
}

// Held reports how many routes currently have a holder or a waiter.
func (l *RouteLocks) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
