package services

import (
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

var ErrGenerationInFlight = errors.New("generation already in progress")

// Guard allows a single in-flight generation per owner key
type Guard struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func NewGuard() *Guard {
	return &Guard{sems: make(map[string]*semaphore.Weighted)}
}

// Acquire claims key without blocking. The returned func releases it.
func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sem, ok := g.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		g.sems[key] = sem
	}
	if !sem.TryAcquire(1) {
		return nil, ErrGenerationInFlight
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			sem.Release(1)
			delete(g.sems, key)
		})
	}, nil
}

// Busy reports whether key currently holds the guard
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.sems[key]
	return ok
}
