package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/konstantin-nikolovski/perq/internal/payload"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	"github.com/konstantin-nikolovski/perq/internal/services"
)

// PointsHandler handles point balance reads and Flow-driven adjustments.
type PointsHandler struct {
	pointsService services.PointsService
}

// NewPointsHandler creates a new PointsHandler
func NewPointsHandler(pointsService services.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

// customerGIDFromParam accepts either a full gid or a bare numeric id.
func customerGIDFromParam(id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return fmt.Sprintf("gid://shopify/Customer/%s", id)
}

// AdjustPoints handles POST /flow/adjust-points, the platform Flow action
// that awards or revokes points. The body is HMAC-verified by middleware.
func (h *PointsHandler) AdjustPoints(c *gin.Context) {
	var body struct {
		CustomerID       interface{} `json:"customerId"`
		PointsAdjustment interface{} `json:"pointsAdjustment"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data"})
		return
	}

	customerGID := ""
	switch id := body.CustomerID.(type) {
	case string:
		if strings.HasPrefix(id, "gid://") {
			customerGID = id
		} else if id != "" {
			customerGID = customerGIDFromParam(id)
		}
	case float64:
		customerGID = customerGIDFromParam(strconv.FormatInt(int64(id), 10))
	}
	delta := payload.IntValue(body.PointsAdjustment)

	if customerGID == "" || delta == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data"})
		return
	}

	balance, err := h.pointsService.AdjustPoints(c.Request.Context(), customerGID, delta)
	if err != nil {
		if errors.Is(err, repositories.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust points: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "balance": balance})
}

// GetPoints handles GET /customers/:id/points
func (h *PointsHandler) GetPoints(c *gin.Context) {
	customerGID := customerGIDFromParam(c.Param("id"))

	balance, err := h.pointsService.GetBalance(c.Request.Context(), customerGID)
	if err != nil {
		if errors.Is(err, repositories.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get points: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customerId": customerGID, "balance": balance})
}

// GetTransactions handles GET /customers/:id/transactions
func (h *PointsHandler) GetTransactions(c *gin.Context) {
	customerGID := customerGIDFromParam(c.Param("id"))

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	transactions, err := h.pointsService.GetTransactions(c.Request.Context(), customerGID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transactions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, transactions)
}
