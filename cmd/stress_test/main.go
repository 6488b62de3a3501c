package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rl1809/checkout-sim/internal/adapter/catalog"
	"github.com/rl1809/checkout-sim/internal/config"
	"github.com/rl1809/checkout-sim/internal/core/domain"
	"github.com/rl1809/checkout-sim/internal/core/service"
	"github.com/rl1809/checkout-sim/internal/observability"
)

// Runs many scenarios at once, each on its own cart and event log, and checks
// that every order-producing run created exactly one order.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := observability.NewLogger(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load catalog", "error", err)
	}

	recorder := observability.NewRecorder()
	names := service.Scenarios()
	total := cfg.StressScenarios

	var (
		passCount  atomic.Int32
		failCount  atomic.Int32
		orderCount atomic.Int32
		leaked     atomic.Int32
	)

	var g errgroup.Group
	start := time.Now()

	for i := 0; i < total; i++ {
		name := names[i%len(names)]
		g.Go(func() error {
			svc := service.NewScenario(cat, cat)
			recorder.Attach(svc.Log())

			report := svc.Run(name)
			recorder.ObserveReport(report)

			orders := int32(len(svc.Log().EventsByKind(domain.EventOrderCreated)))
			orderCount.Add(orders)
			wantOrders := int32(1)
			if name == service.ScenarioCouponLifecycle {
				wantOrders = 0
			}
			if orders != wantOrders {
				leaked.Add(1)
			}

			if report.Passed {
				passCount.Add(1)
			} else {
				failCount.Add(1)
				logger.Warn("scenario failed", "scenario", name, "error", report.Error)
			}
			return nil
		})
	}

	_ = g.Wait()
	elapsed := time.Since(start)

	pass := passCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Scenarios:        %d\n", total)
	fmt.Printf("Passed:           %d\n", pass)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Orders created:   %d\n", orderCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	ok := true
	if fail == 0 && pass == int32(total) {
		fmt.Printf("PASS: all %d scenarios passed\n", total)
	} else {
		fmt.Printf("FAIL: expected %d passes, got %d\n", total, pass)
		ok = false
	}

	if leaked.Load() == 0 {
		fmt.Println("PASS: every event log saw only its own orders")
	} else {
		fmt.Printf("FAIL: %d scenarios saw an unexpected number of orders\n", leaked.Load())
		ok = false
	}

	if !ok {
		os.Exit(1)
	}
}
