package handler

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServicePrefix namespaces the per-scenario health entries.
const ServicePrefix = "checkoutsim.scenario."

// GRPCHandler exposes the standard gRPC health service. Each named scenario
// has its own entry, set by the last Probe; the empty service name reflects
// all of them together.
type GRPCHandler struct {
	runner *Runner
	health *health.Server
}

func NewGRPCHandler(runner *Runner) *GRPCHandler {
	return &GRPCHandler{runner: runner, health: health.NewServer()}
}

func (h *GRPCHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

func (h *GRPCHandler) Health() healthpb.HealthServer {
	return h.health
}

// Probe runs every scenario once and publishes the outcome as health status.
// It returns the number of failed scenarios.
func (h *GRPCHandler) Probe(names []string) int {
	failed := 0
	for _, name := range names {
		status := healthpb.HealthCheckResponse_SERVING
		if !h.runner.Run(name).Passed {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			failed++
		}
		h.health.SetServingStatus(ServicePrefix+name, status)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if failed > 0 {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", overall)
	return failed
}

// Shutdown marks every entry NOT_SERVING ahead of GracefulStop.
func (h *GRPCHandler) Shutdown() {
	h.health.Shutdown()
}
