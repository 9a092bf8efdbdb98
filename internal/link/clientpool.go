package link

import "sync"

// clientPool holds at most one client per name for the life of the process.
// Clients are never released.
type clientPool[T any] struct {
	mu      sync.Mutex
	clients map[string]T
	create  func(name string) (T, error)
}

func newClientPool[T any](create func(name string) (T, error)) *clientPool[T] {
	return &clientPool[T]{clients: map[string]T{}, create: create}
}

// get returns the client for name, creating it on first use. A failed
// creation is not cached.
func (p *clientPool[T]) get(name string) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[name]; ok {
		return c, nil
	}
	c, err := p.create(name)
	if err != nil {
		return c, err
	}
	p.clients[name] = c
	return c, nil
}
