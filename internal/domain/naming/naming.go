// Package naming generates sequential instance names such as Browser_0, Browser_1.
package naming

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Generator hands out <prefix>_<n> names with n counting up from zero.
// Safe for concurrent use; every call to Next returns a distinct name.
type Generator struct {
	prefix string
	next   atomic.Uint64
}

// NewGenerator creates a generator for prefix.
func NewGenerator(prefix string) *Generator {
	return &Generator{prefix: prefix}
}

// Prefix returns the generator's prefix.
func (g *Generator) Prefix() string { return g.prefix }

// Next returns the next name and advances the counter.
func (g *Generator) Next() string {
	n := g.next.Add(1) - 1
	return format(g.prefix, n)
}

// Peek returns the name Next would return, without consuming it.
func (g *Generator) Peek() string {
	return format(g.prefix, g.next.Load())
}

// Reset restarts the sequence at zero.
func (g *Generator) Reset() {
	g.next.Store(0)
}

func format(prefix string, n uint64) string {
	return fmt.Sprintf("%s_%d", prefix, n)
}

// Pool keeps one independent Generator per prefix.
type Pool struct {
	mu   sync.Mutex
	gens map[string]*Generator
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{gens: make(map[string]*Generator)}
}

// Generator returns the generator for prefix, creating it on first use.
func (p *Pool) Generator(prefix string) *Generator {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.gens[prefix]
	if !ok {
		g = NewGenerator(prefix)
		p.gens[prefix] = g
	}
	return g
}

// Next is shorthand for p.Generator(prefix).Next().
func (p *Pool) Next(prefix string) string {
	return p.Generator(prefix).Next()
}
