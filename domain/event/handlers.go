package event

import "sync"

// Handler Each kind of telemetry has his own handler
// Based on the Chain of responsibility pattern
type Handler interface {
	Handle(t Telemetry)
}

// Counter counts telemetry occurrences per type.
type Counter struct {
	mu     sync.Mutex
	counts map[Type]uint64
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[Type]uint64)}
}

func (c *Counter) Increment(t Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[t]++
}

func (c *Counter) Get(t Type) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[t]
}
