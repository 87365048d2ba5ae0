package services

import (
	"context"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/payload"
)

// RedemptionService reconciles orders/paid events against the points ledger.
type RedemptionService interface {
	ProcessOrderPaid(ctx context.Context, p payload.Payload) error
}

// RefundService reconciles refunds/create events against the points ledger.
type RefundService interface {
	ProcessRefundCreated(ctx context.Context, p payload.Payload) error
}

// DiscountService allocates a redemption discount across cart lines. It is
// purely computational and never fails; unresolvable input degrades to an
// empty operation list.
type DiscountService interface {
	Generate(input *models.DiscountInput) *models.DiscountResult
}

// SettingsService manages the shop's earn rules and redemption ladder.
type SettingsService interface {
	GetRules(ctx context.Context) (*models.EarnRules, []models.LadderStep, error)
	// SaveRules validates the configuration; validation failures are returned
	// as user-facing messages, not as an error.
	SaveRules(ctx context.Context, earn *models.EarnRules, ladder []models.LadderStep) ([]string, error)
}

// PointsService exposes direct balance reads and adjustments, used by the
// platform Flow action and the admin API.
type PointsService interface {
	GetBalance(ctx context.Context, customerGID string) (int, error)
	AdjustPoints(ctx context.Context, customerGID string, delta int) (int, error)
	GetTransactions(ctx context.Context, customerGID string, page, limit int) ([]*models.PointTransaction, error)
}
