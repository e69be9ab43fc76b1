package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the spender's prometheus collectors. A nil *Metrics is
// valid and records nothing, so tests and tools can run unregistered.
type Metrics struct {
	ReservationsTotal *prometheus.CounterVec // result=granted|denied
	CommitsTotal      prometheus.Counter
	ReleasesTotal     prometheus.Counter
	SubmitErrorsTotal *prometheus.CounterVec // kind=transient|fatal

	SubmitLatencyMS prometheus.Histogram

	InFlight        prometheus.Gauge
	CommittedAmount prometheus.Gauge
}

// NewMetrics builds the collectors and registers them with the default
// registry. Call at most once per process.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txbot_reservations_total",
				Help: "Total budget reservation attempts by result",
			},
			[]string{"result"},
		),
		CommitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txbot_commits_total",
			Help: "Total committed transactions",
		}),
		ReleasesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txbot_releases_total",
			Help: "Total reservations released without a commit",
		}),
		SubmitErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txbot_submit_errors_total",
				Help: "Total submission errors by kind",
			},
			[]string{"kind"},
		),
		SubmitLatencyMS: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "txbot_submit_latency_ms",
			Help:    "Latency of transaction submissions (ms)",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1ms .. ~2048ms
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "txbot_inflight_reservations",
			Help: "Reservations currently held by workers",
		}),
		CommittedAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "txbot_committed_amount",
			Help: "Sum of committed amounts (approximate, for dashboards)",
		}),
	}

	prometheus.MustRegister(
		m.ReservationsTotal,
		m.CommitsTotal,
		m.ReleasesTotal,
		m.SubmitErrorsTotal,
		m.SubmitLatencyMS,
		m.InFlight,
		m.CommittedAmount,
	)

	return m
}

// ReservationGranted records an admitted reservation.
func (m *Metrics) ReservationGranted() {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues("granted").Inc()
	m.InFlight.Inc()
}

// ReservationDenied records a denied reservation.
func (m *Metrics) ReservationDenied() {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues("denied").Inc()
}

// CommitRecorded records a committed transaction and its actual amount.
func (m *Metrics) CommitRecorded(actual float64) {
	if m == nil {
		return
	}
	m.CommitsTotal.Inc()
	m.CommittedAmount.Add(actual)
	m.InFlight.Dec()
}

// ReleaseRecorded records a reservation returned unspent.
func (m *Metrics) ReleaseRecorded() {
	if m == nil {
		return
	}
	m.ReleasesTotal.Inc()
	m.InFlight.Dec()
}

// SubmitError records a failed submission. kind is transient or fatal.
func (m *Metrics) SubmitError(kind string) {
	if m == nil {
		return
	}
	m.SubmitErrorsTotal.WithLabelValues(kind).Inc()
}

// ObserveSubmit records the duration of one submission attempt.
func (m *Metrics) ObserveSubmit(d time.Duration) {
	if m == nil {
		return
	}
	m.SubmitLatencyMS.Observe(float64(d.Milliseconds()))
}
