package handler

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rl1809/checkout-sim/internal/core/domain"
	"github.com/rl1809/checkout-sim/internal/core/service"
)

const requestIDHeader = "X-Request-ID"

type HTTPHandler struct {
	runner *Runner
}

type CheckoutHTTPRequest struct {
	Address      string `json:"address"`
	SKU          string `json:"sku" binding:"required"`
	Quantity     int    `json:"quantity" binding:"omitempty,gt=0"`
	Coupon       string `json:"coupon"`
	Shipping     string `json:"shipping"`
	Card         string `json:"card"`
	Installments int    `json:"installments" binding:"omitempty,gt=0,lte=12"`
}

type CheckoutHTTPResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	OrderID string             `json:"order_id,omitempty"`
	Total   string             `json:"total,omitempty"`
	Events  []domain.EventKind `json:"events"`
}

func NewHTTPHandler(runner *Runner) *HTTPHandler {
	return &HTTPHandler{runner: runner}
}

// Register mounts the routes on r.
func (h *HTTPHandler) Register(r gin.IRouter) {
	r.Use(requestID())
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	api.GET("/scenarios", h.ListScenarios)
	api.POST("/scenarios/:name", h.RunScenario)
	api.POST("/checkout", h.Checkout)
	api.GET("/catalog/products", h.ListProducts)
	api.GET("/catalog/coupons", h.ListCoupons)
}

// GET /api/scenarios
func (h *HTTPHandler) ListScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scenarios": service.Scenarios()})
}

// POST /api/scenarios/:name
func (h *HTTPHandler) RunScenario(c *gin.Context) {
	name := c.Param("name")
	if !slices.Contains(service.Scenarios(), name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown scenario " + name})
		return
	}

	report := h.runner.Run(name)
	status := http.StatusOK
	if !report.Passed {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, report)
}

// POST /api/checkout
func (h *HTTPHandler) Checkout(c *gin.Context) {
	var req CheckoutHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CheckoutHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}
	if req.Address == "" {
		req.Address = service.DefaultAddress
	}

	svc := h.runner.NewScenario("api-checkout")
	order, err := func() (domain.Order, error) {
		if err := svc.PrepareCustomer(req.Address); err != nil {
			return domain.Order{}, err
		}
		return svc.Checkout(service.CheckoutRequest{
			SKU:          req.SKU,
			Quantity:     req.Quantity,
			Coupon:       req.Coupon,
			Shipping:     req.Shipping,
			Card:         req.Card,
			Installments: req.Installments,
		})
	}()

	events := svc.Log().Kinds()
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, CheckoutHTTPResponse{
			Success: false,
			Message: message,
			Events:  events,
		})
		return
	}

	c.JSON(http.StatusOK, CheckoutHTTPResponse{
		Success: true,
		Message: "order created",
		OrderID: order.ID,
		Total:   order.Total.StringFixed(2),
		Events:  events,
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrPaymentDeclined):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvariantViolation):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// GET /api/catalog/products
func (h *HTTPHandler) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.runner.Catalog().Products()})
}

// GET /api/catalog/coupons
func (h *HTTPHandler) ListCoupons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"coupons": h.runner.Catalog().Coupons()})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}
