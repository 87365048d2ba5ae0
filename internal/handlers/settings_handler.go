package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/services"
)

// SettingsHandler handles loyalty configuration requests.
type SettingsHandler struct {
	settingsService services.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetRules handles GET /settings/rules
func (h *SettingsHandler) GetRules(c *gin.Context) {
	earn, ladder, err := h.settingsService.GetRules(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rules: " + err.Error()})
		return
	}
	if ladder == nil {
		ladder = []models.LadderStep{}
	}
	c.JSON(http.StatusOK, gin.H{"earn": earn, "ladder": ladder})
}

// UpdateRules handles PUT /settings/rules
func (h *SettingsHandler) UpdateRules(c *gin.Context) {
	var body struct {
		Earn   *models.EarnRules   `json:"earn"`
		Ladder []models.LadderStep `json:"ladder"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rules payload"})
		return
	}

	validationErrs, err := h.settingsService.SaveRules(c.Request.Context(), body.Earn, body.Ladder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rules: " + err.Error()})
		return
	}
	if len(validationErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "errors": validationErrs})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
