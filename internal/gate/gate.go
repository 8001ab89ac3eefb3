// Package gate wraps calls to an external collaborator: optional process-wide
// serialization for models that are not safe for concurrent inference, plus
// call metrics.
package gate

import (
	"sync"
	"time"

	"github.com/Vovarama1992/medassist/internal/metrics"
)

type Gate struct {
	name    string
	mu      *sync.Mutex
	metrics *metrics.Metrics
}

func New(name string, serialize bool, m *metrics.Metrics) *Gate {
	g := &Gate{name: name, metrics: m}
	if serialize {
		g.mu = &sync.Mutex{}
	}
	return g
}

// Do runs fn, holding the collaborator lock when serialization is on.
// A nil Gate just runs fn.
func (g *Gate) Do(fn func() error) error {
	if g == nil {
		return fn()
	}
	if g.mu != nil {
		g.mu.Lock()
		defer g.mu.Unlock()
	}

	start := time.Now()
	err := fn()
	g.metrics.Observe(g.name, start, err)
	return err
}
