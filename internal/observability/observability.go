// Package observability exposes presence-exchange counters for Session,
// Protocol, and Group, reworked from the teacher's NetworkMetricsCollector
// (go/metrics.go): periodic structured logging plus Prometheus counters,
// scoped to in-process state only; persisting metrics to disk is out of
// scope for this repository.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Recorder is the counters interface injected into session, protocol, and
// group. A nil Recorder is never passed around; use NoOp() instead.
type Recorder interface {
	SessionOpened()
	SessionClosed(succeeded bool)
	ProofVerified(ok bool)
	RecordProduced()
	BatchAttested()
}

type noop struct{}

func (noop) SessionOpened()     {}
func (noop) SessionClosed(bool) {}
func (noop) ProofVerified(bool) {}
func (noop) RecordProduced()    {}
func (noop) BatchAttested()     {}

// NoOp returns a Recorder that discards everything, keeping the core
// packages usable without a metrics backend.
func NoOp() Recorder { return noop{} }

// PrometheusRecorder implements Recorder with client_golang counters.
type PrometheusRecorder struct {
	sessionsOpened  prometheus.Counter
	sessionsClosed  *prometheus.CounterVec
	proofsVerified  *prometheus.CounterVec
	recordsProduced prometheus.Counter
	batchesAttested prometheus.Counter
}

// NewPrometheusRecorder constructs a PrometheusRecorder and registers its
// metrics with reg. Pass prometheus.NewRegistry() in tests to avoid
// colliding with the global default registry.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alice_presence_sessions_opened_total",
			Help: "Sessions moved out of Idle via Discover.",
		}),
		sessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alice_presence_sessions_closed_total",
			Help: "Sessions that reached Closed, labeled by outcome.",
		}, []string{"outcome"}),
		proofsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alice_presence_proofs_verified_total",
			Help: "Proofs checked by ReceiveProof, labeled by result.",
		}, []string{"result"}),
		recordsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alice_presence_records_produced_total",
			Help: "Crossing records assembled by Finalize.",
		}),
		batchesAttested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alice_presence_batches_attested_total",
			Help: "BatchAttest calls against a Group.",
		}),
	}
	reg.MustRegister(r.sessionsOpened, r.sessionsClosed, r.proofsVerified, r.recordsProduced, r.batchesAttested)
	return r
}

func (r *PrometheusRecorder) SessionOpened() { r.sessionsOpened.Inc() }

func (r *PrometheusRecorder) SessionClosed(succeeded bool) {
	outcome := "failed"
	if succeeded {
		outcome = "succeeded"
	}
	r.sessionsClosed.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRecorder) ProofVerified(ok bool) {
	result := "rejected"
	if ok {
		result = "accepted"
	}
	r.proofsVerified.WithLabelValues(result).Inc()
}

func (r *PrometheusRecorder) RecordProduced() { r.recordsProduced.Inc() }

func (r *PrometheusRecorder) BatchAttested() { r.batchesAttested.Inc() }

// Snapshot is a point-in-time summary suitable for structured logging.
type Snapshot struct {
	SessionsOpened  float64
	SessionsClosed  float64
	RecordsProduced float64
}

// LogPeriodically logs a Snapshot on every tick until stop is closed,
// mirroring the teacher's MonitorMetrics ticker loop.
func LogPeriodically(log *zap.Logger, interval time.Duration, snap func() Snapshot, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s := snap()
			log.Info("presence metrics",
				zap.Float64("sessions_opened", s.SessionsOpened),
				zap.Float64("sessions_closed", s.SessionsClosed),
				zap.Float64("records_produced", s.RecordsProduced),
			)
		}
	}
}
