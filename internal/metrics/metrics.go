// Package metrics exposes delivery outcome and SMTP dispatch metrics.
package metrics

import (
	"time"

	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commit_emailer"

// Metrics groups the collectors updated while handling deliveries.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Deliveries       *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec

	deliveries metrics.Counter
	dispatch   metrics.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	_inst := &Metrics{
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "Number of webhook deliveries by terminal status.",
		}, []string{"status", "reason"}),
		DispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "smtp",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of SMTP delivery attempts in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
	_inst.deliveries = kitprometheus.NewCounter(_inst.Deliveries)
	_inst.dispatch = kitprometheus.NewHistogram(_inst.DispatchDuration)
	return _inst
}

// ObserveDelivery counts a delivery that reached status.
func (m *Metrics) ObserveDelivery(status, reason string) {
	if m == nil {
		return
	}
	m.deliveries.With("status", status, "reason", reason).Add(1)
}

// ObserveDispatch records the duration of a delivery attempt started at begin.
func (m *Metrics) ObserveDispatch(begin time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.dispatch.With("result", result).Observe(time.Since(begin).Seconds())
}
