package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 8)
	c.Collect(ch)
	close(ch)
	var total float64
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			t.Fatalf("Write: %v", err)
		}
		total += pb.GetCounter().GetValue()
	}
	return total
}

func TestPrometheusRecorderIncrementsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.SessionOpened()
	r.SessionOpened()
	r.SessionClosed(true)
	r.SessionClosed(false)
	r.ProofVerified(true)
	r.RecordProduced()
	r.BatchAttested()

	if got := counterValue(t, r.sessionsOpened); got != 2 {
		t.Fatalf("sessionsOpened = %v, want 2", got)
	}
	if got := counterValue(t, r.sessionsClosed); got != 2 {
		t.Fatalf("sessionsClosed total = %v, want 2", got)
	}
	if got := counterValue(t, r.recordsProduced); got != 1 {
		t.Fatalf("recordsProduced = %v, want 1", got)
	}
}

func TestNoOpRecorderDoesNothing(t *testing.T) {
	r := NoOp()
	r.SessionOpened()
	r.SessionClosed(true)
	r.ProofVerified(false)
	r.RecordProduced()
	r.BatchAttested()
}

func TestLogPeriodicallyStopsOnSignal(t *testing.T) {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		LogPeriodically(zap.NewNop(), time.Millisecond, func() Snapshot { return Snapshot{} }, stop)
		close(done)
	}()
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("LogPeriodically did not stop after stop was closed")
	}
}
