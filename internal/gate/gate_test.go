package gate

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Vovarama1992/medassist/internal/metrics"
)

func TestDo_SerializesWhenEnabled(t *testing.T) {
	g := New("recognition", true, nil)

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Do(func() error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight)
}

func TestDo_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	g := New(metrics.Synthesis, false, m)

	assert.NoError(t, g.Do(func() error { return nil }))
	err := g.Do(func() error { return errors.New("voice missing") })
	assert.EqualError(t, err, "voice missing")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CollaboratorCalls.WithLabelValues(metrics.Synthesis, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CollaboratorCalls.WithLabelValues(metrics.Synthesis, "error")))
}

func TestDo_NilGate(t *testing.T) {
	var g *Gate
	called := false
	assert.NoError(t, g.Do(func() error { called = true; return nil }))
	assert.True(t, called)
}
