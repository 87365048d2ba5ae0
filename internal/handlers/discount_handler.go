package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/services"
)

// DiscountHandler serves the checkout pipeline's discount-generation calls.
type DiscountHandler struct {
	discountService services.DiscountService
}

// NewDiscountHandler creates a new DiscountHandler
func NewDiscountHandler(discountService services.DiscountService) *DiscountHandler {
	return &DiscountHandler{discountService: discountService}
}

// Generate handles POST /discount/generate. A malformed snapshot yields an
// empty operation list rather than an error; the checkout pipeline must never
// be blocked by the loyalty program.
func (h *DiscountHandler) Generate(c *gin.Context) {
	var input models.DiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusOK, models.DiscountResult{Operations: []models.DiscountOperation{}})
		return
	}
	c.JSON(http.StatusOK, h.discountService.Generate(&input))
}
