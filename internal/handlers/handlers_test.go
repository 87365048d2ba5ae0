package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/payload"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	"github.com/konstantin-nikolovski/perq/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRedemptionService struct {
	calls int
	err   error
}

func (f *fakeRedemptionService) ProcessOrderPaid(_ context.Context, _ payload.Payload) error {
	f.calls++
	return f.err
}

type fakeRefundService struct {
	calls int
	err   error
}

func (f *fakeRefundService) ProcessRefundCreated(_ context.Context, _ payload.Payload) error {
	f.calls++
	return f.err
}

type fakePointsService struct {
	balance     int
	err         error
	adjustedGID string
	adjustedBy  int
}

func (f *fakePointsService) GetBalance(_ context.Context, customerGID string) (int, error) {
	return f.balance, f.err
}

func (f *fakePointsService) AdjustPoints(_ context.Context, customerGID string, delta int) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.adjustedGID = customerGID
	f.adjustedBy = delta
	f.balance += delta
	return f.balance, nil
}

func (f *fakePointsService) GetTransactions(_ context.Context, customerGID string, page, limit int) ([]*models.PointTransaction, error) {
	return []*models.PointTransaction{}, f.err
}

type fakeSettingsService struct {
	earn           *models.EarnRules
	ladder         []models.LadderStep
	validationErrs []string
	saved          bool
}

func (f *fakeSettingsService) GetRules(_ context.Context) (*models.EarnRules, []models.LadderStep, error) {
	return f.earn, f.ladder, nil
}

func (f *fakeSettingsService) SaveRules(_ context.Context, earn *models.EarnRules, ladder []models.LadderStep) ([]string, error) {
	if len(f.validationErrs) > 0 {
		return f.validationErrs, nil
	}
	f.saved = true
	return nil, nil
}

func TestOrdersPaidAcknowledgesServiceFailure(t *testing.T) {
	redemption := &fakeRedemptionService{err: errors.New("admin api unavailable")}
	handler := NewWebhookHandler(redemption, &fakeRefundService{})

	router := gin.New()
	router.POST("/webhooks/orders-paid", handler.OrdersPaid)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders-paid", strings.NewReader(`{"id": 1001}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Retries come from platform redelivery, not error statuses.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, redemption.calls)
}

func TestRefundsCreateAcknowledgesUnreadableBody(t *testing.T) {
	refund := &fakeRefundService{}
	handler := NewWebhookHandler(&fakeRedemptionService{}, refund)

	router := gin.New()
	router.POST("/webhooks/refunds-create", handler.RefundsCreate)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/refunds-create", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, refund.calls)
}

func TestGenerateReturnsEmptyOperationsOnMalformedBody(t *testing.T) {
	handler := NewDiscountHandler(services.NewDiscountService())

	router := gin.New()
	router.POST("/discount/generate", handler.Generate)

	req := httptest.NewRequest(http.MethodPost, "/discount/generate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"operations": []}`, rec.Body.String())
}

func TestAdjustPointsNormalizesNumericCustomerID(t *testing.T) {
	points := &fakePointsService{balance: 100}
	handler := NewPointsHandler(points)

	router := gin.New()
	router.POST("/flow/adjust-points", handler.AdjustPoints)

	req := httptest.NewRequest(http.MethodPost, "/flow/adjust-points",
		strings.NewReader(`{"customerId": 7, "pointsAdjustment": "25"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gid://shopify/Customer/7", points.adjustedGID)
	assert.Equal(t, 25, points.adjustedBy)
	assert.JSONEq(t, `{"success": true, "balance": 125}`, rec.Body.String())
}

func TestAdjustPointsRejectsMissingFields(t *testing.T) {
	handler := NewPointsHandler(&fakePointsService{})

	router := gin.New()
	router.POST("/flow/adjust-points", handler.AdjustPoints)

	tests := []struct {
		name string
		body string
	}{
		{"no customer", `{"pointsAdjustment": 10}`},
		{"zero delta", `{"customerId": 7, "pointsAdjustment": 0}`},
		{"empty body", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/flow/adjust-points", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetPointsReportsUnknownCustomer(t *testing.T) {
	handler := NewPointsHandler(&fakePointsService{err: repositories.ErrCustomerNotFound})

	router := gin.New()
	router.GET("/customers/:id/points", handler.GetPoints)

	req := httptest.NewRequest(http.MethodGet, "/customers/404/points", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRulesReturnsValidationMessages(t *testing.T) {
	settings := &fakeSettingsService{validationErrs: []string{"Points and value must be positive."}}
	handler := NewSettingsHandler(settings)

	router := gin.New()
	router.PUT("/settings/rules", handler.UpdateRules)

	req := httptest.NewRequest(http.MethodPut, "/settings/rules",
		strings.NewReader(`{"earn": {"newsletter": 50}, "ladder": [{"points": 0, "type": "amount", "value": 5}]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok": false, "errors": ["Points and value must be positive."]}`, rec.Body.String())
	assert.False(t, settings.saved)
}

func TestUpdateRulesPersistsValidConfiguration(t *testing.T) {
	settings := &fakeSettingsService{}
	handler := NewSettingsHandler(settings)

	router := gin.New()
	router.PUT("/settings/rules", handler.UpdateRules)

	req := httptest.NewRequest(http.MethodPut, "/settings/rules",
		strings.NewReader(`{"earn": {"newsletter": 50, "perEuro": 1, "perItem": 10}, "ladder": [{"points": 100, "type": "amount", "value": 10}]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, settings.saved)
}
