package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

type chain struct {
	blocks, mempool, difficulty int
}

func (c chain) QueryBlocksLength() int  { return c.blocks }
func (c chain) QueryMempoolLength() int { return c.mempool }
func (c chain) Difficulty() int         { return c.difficulty }

func TestObserveRequest(t *testing.T) {
	if inc := delta(t, requestsTotal.WithLabelValues("POST", "201"), func() {
		ObserveRequest("POST", 201, time.Now().Add(-time.Millisecond))
	}); inc != 1 {
		t.Fatalf("expected request counter increment, got %v", inc)
	}

	if inc := delta(t, errorsTotal, AddError); inc != 1 {
		t.Fatalf("expected error counter increment, got %v", inc)
	}

	if inc := delta(t, panicsTotal, AddPanic); inc != 1 {
		t.Fatalf("expected panic counter increment, got %v", inc)
	}
}

func TestRegisterChain(t *testing.T) {
	reg := prometheus.NewRegistry()

	if err := RegisterChain(reg, chain{blocks: 3, mempool: 5, difficulty: 2}); err != nil {
		t.Fatalf("expected gauges to register, got %v", err)
	}

	if n, err := testutil.GatherAndCount(reg); err != nil || n != 3 {
		t.Fatalf("expected 3 gauges, got %d: %v", n, err)
	}

	if err := RegisterChain(reg, chain{}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
