package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/konstantin-nikolovski/perq/internal/payload"
	"github.com/konstantin-nikolovski/perq/internal/services"
	"golang.org/x/exp/slog"
)

// WebhookHandler receives platform event deliveries. Deliveries are
// acknowledged with 200 even when reconciliation fails: retries are driven by
// redelivery, and the reconcilers are idempotent against it.
type WebhookHandler struct {
	redemptionService services.RedemptionService
	refundService     services.RefundService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(redemptionService services.RedemptionService, refundService services.RefundService) *WebhookHandler {
	return &WebhookHandler{
		redemptionService: redemptionService,
		refundService:     refundService,
	}
}

// OrdersPaid handles POST /webhooks/orders-paid
func (h *WebhookHandler) OrdersPaid(c *gin.Context) {
	var p payload.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		slog.Warn("orders/paid delivery had unreadable body", "error", err)
		c.Status(http.StatusOK)
		return
	}

	if err := h.redemptionService.ProcessOrderPaid(c.Request.Context(), p); err != nil {
		slog.Error("orders/paid reconciliation failed", "error", err)
	}
	c.Status(http.StatusOK)
}

// RefundsCreate handles POST /webhooks/refunds-create
func (h *WebhookHandler) RefundsCreate(c *gin.Context) {
	var p payload.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		slog.Warn("refunds/create delivery had unreadable body", "error", err)
		c.Status(http.StatusOK)
		return
	}

	if err := h.refundService.ProcessRefundCreated(c.Request.Context(), p); err != nil {
		slog.Error("refunds/create reconciliation failed", "error", err)
	}
	c.Status(http.StatusOK)
}
