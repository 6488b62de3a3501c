package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rl1809/checkout-sim/internal/core/domain"
	"github.com/rl1809/checkout-sim/internal/core/eventlog"
	"github.com/rl1809/checkout-sim/internal/core/service"
)

const namespace = "checkout_sim"

// Recorder owns its registry so parallel tests and scenarios never collide
// on the default one.
type Recorder struct {
	registry *prometheus.Registry

	events           *prometheus.CounterVec
	couponRejections *prometheus.CounterVec
	paymentDeclines  *prometheus.CounterVec
	scenarios        *prometheus.CounterVec
	scenarioDuration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Domain events published, by kind",
		}, []string{"kind"}),
		couponRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_rejections_total",
			Help:      "Coupon rejections, by reason",
		}, []string{"reason"}),
		paymentDeclines: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_declines_total",
			Help:      "Declined payments, by reason",
		}, []string{"reason"}),
		scenarios: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_total",
			Help:      "Scenario runs, by name and result",
		}, []string{"scenario", "result"}),
		scenarioDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scenario_duration_seconds",
			Help:      "Scenario run duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"scenario"}),
	}
}

// Attach subscribes the recorder to every event kind on log.
func (r *Recorder) Attach(log *eventlog.Log) {
	for _, kind := range domain.EventKinds() {
		log.Subscribe(kind, r.observeEvent)
	}
}

func (r *Recorder) observeEvent(evt domain.DomainEvent) {
	r.events.WithLabelValues(string(evt.Kind)).Inc()
	switch p := evt.Payload.(type) {
	case domain.CouponRejected:
		r.couponRejections.WithLabelValues(p.Reason).Inc()
	case domain.PaymentDeclined:
		r.paymentDeclines.WithLabelValues(p.Reason).Inc()
	}
}

func (r *Recorder) ObserveReport(report service.Report) {
	result := "passed"
	if !report.Passed {
		result = "failed"
	}
	r.scenarios.WithLabelValues(report.Scenario, result).Inc()
	r.scenarioDuration.WithLabelValues(report.Scenario).Observe(report.Duration.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
