package handler

import (
	"github.com/rl1809/checkout-sim/internal/core/service"
	"github.com/rl1809/checkout-sim/internal/observability"
	"github.com/rl1809/checkout-sim/internal/port"
)

// Runner builds an isolated scenario per call, with logging and metrics
// attached to its event log.
type Runner struct {
	catalog  port.Catalog
	payments port.PaymentFixtures
	logger   *observability.Logger
	recorder *observability.Recorder
}

func NewRunner(catalog port.Catalog, payments port.PaymentFixtures, logger *observability.Logger, recorder *observability.Recorder) *Runner {
	return &Runner{catalog: catalog, payments: payments, logger: logger, recorder: recorder}
}

func (r *Runner) Catalog() port.Catalog {
	return r.catalog
}

func (r *Runner) NewScenario(name string) *service.CheckoutService {
	svc := service.NewScenario(r.catalog, r.payments)
	if r.logger != nil {
		observability.AttachLogger(svc.Log(), r.logger.With("scenario", name))
	}
	if r.recorder != nil {
		r.recorder.Attach(svc.Log())
	}
	return svc
}

func (r *Runner) Run(name string) service.Report {
	report := r.NewScenario(name).Run(name)
	if r.recorder != nil {
		r.recorder.ObserveReport(report)
	}
	if r.logger != nil {
		r.logger.Info("scenario finished",
			"scenario", report.Scenario,
			"passed", report.Passed,
			"error", report.Error,
			"order_id", report.OrderID,
			"duration", report.Duration,
		)
	}
	return report
}
