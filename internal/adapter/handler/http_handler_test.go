package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/checkout-sim/internal/adapter/catalog"
	"github.com/rl1809/checkout-sim/internal/core/domain"
	"github.com/rl1809/checkout-sim/internal/core/service"
	"github.com/rl1809/checkout-sim/internal/observability"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.MustDefault()
	runner := NewRunner(cat, cat, observability.NopLogger(), observability.NewRecorder())
	r := gin.New()
	NewHTTPHandler(runner).Register(r)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestListScenarios(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodGet, "/api/scenarios", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Scenarios []string `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, service.Scenarios(), body.Scenarios)
}

func TestRunScenario(t *testing.T) {
	r := newTestRouter(t)

	for _, name := range service.Scenarios() {
		rr := do(r, http.MethodPost, "/api/scenarios/"+name, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var report service.Report
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.True(t, report.Passed, report.Error)
		assert.Equal(t, name, report.Scenario)
	}
}

func TestRunScenario_Unknown(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodPost, "/api/scenarios/refund", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCheckout_Success(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodPost, "/api/checkout", CheckoutHTTPRequest{
		SKU:      "CAMISETA-PRETA-M",
		Quantity: 2,
		Coupon:   "BEMVINDO10",
		Shipping: "Economico",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp CheckoutHTTPResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "95.72", resp.Total)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, domain.EventOrderCreated, resp.Events[len(resp.Events)-1])
}

func TestCheckout_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		req    any
		status int
	}{
		{"declined", CheckoutHTTPRequest{SKU: "CAMISETA-PRETA-M", Card: "RecusadoPorLimite"}, http.StatusPaymentRequired},
		{"unknown sku", CheckoutHTTPRequest{SKU: "NOPE"}, http.StatusNotFound},
		{"stock", CheckoutHTTPRequest{SKU: "CAMISETA-PRETA-M", Quantity: 1000}, http.StatusConflict},
		{"expired coupon", CheckoutHTTPRequest{SKU: "CAMISETA-PRETA-M", Coupon: "BLACK2022"}, http.StatusBadRequest},
		{"missing sku", map[string]any{"quantity": 1}, http.StatusBadRequest},
	}

	r := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(r, http.MethodPost, "/api/checkout", tt.req)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())

			var resp CheckoutHTTPResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotContains(t, resp.Events, domain.EventOrderCreated)
		})
	}
}

func TestListProducts(t *testing.T) {
	rr := do(newTestRouter(t), http.MethodGet, "/api/catalog/products", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "CAMISETA-PRETA-M")
}

func TestGRPCHandler_Probe(t *testing.T) {
	cat := catalog.MustDefault()
	h := NewGRPCHandler(NewRunner(cat, cat, nil, nil))

	failed := h.Probe(service.Scenarios())
	require.Equal(t, 0, failed)

	ctx := context.Background()
	resp, err := h.Health().Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	resp, err = h.Health().Check(ctx, &healthpb.HealthCheckRequest{Service: ServicePrefix + service.ScenarioPaymentRetry})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestGRPCHandler_ProbeUnknownScenario(t *testing.T) {
	cat := catalog.MustDefault()
	h := NewGRPCHandler(NewRunner(cat, cat, nil, nil))

	assert.Equal(t, 1, h.Probe([]string{"refund"}))
	resp, err := h.Health().Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
