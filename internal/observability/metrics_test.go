package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/checkout-sim/internal/core/domain"
	"github.com/rl1809/checkout-sim/internal/core/eventlog"
	"github.com/rl1809/checkout-sim/internal/core/service"
)

func TestRecorder_CountsEvents(t *testing.T) {
	rec := NewRecorder()
	log := eventlog.New()
	rec.Attach(log)

	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "A", Quantity: 1})
	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "B", Quantity: 1})
	log.Emit(domain.EventCouponRejected, domain.CouponRejected{Code: "X", Reason: domain.ReasonExpired})
	log.Emit(domain.EventPaymentDeclined, domain.PaymentDeclined{Reason: domain.DeclineAntifraud})

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.events.WithLabelValues("ItemAdded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.couponRejections.WithLabelValues(domain.ReasonExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.paymentDeclines.WithLabelValues(domain.DeclineAntifraud)))
}

func TestRecorder_ObserveReport(t *testing.T) {
	rec := NewRecorder()

	rec.ObserveReport(service.Report{Scenario: "checkout", Passed: true, Duration: time.Millisecond})
	rec.ObserveReport(service.Report{Scenario: "checkout", Passed: false, Duration: time.Millisecond})
	rec.ObserveReport(service.Report{Scenario: "checkout", Passed: true, Duration: time.Millisecond})

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.scenarios.WithLabelValues("checkout", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.scenarios.WithLabelValues("checkout", "failed")))
}

func TestRecorder_Handler(t *testing.T) {
	rec := NewRecorder()
	log := eventlog.New()
	rec.Attach(log)
	log.Emit(domain.EventOrderCreated, domain.OrderCreated{ID: "o-1"})

	rr := httptest.NewRecorder()
	rec.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `checkout_sim_events_total{kind="OrderCreated"} 1`))
}
