package repositories

import (
	"context"
	"errors"

	"github.com/konstantin-nikolovski/perq/internal/models"
)

// ErrCustomerNotFound is returned when a ledger adjustment targets a customer
// that does not exist in the platform.
var ErrCustomerNotFound = errors.New("customer not found")

// LedgerRepository defines the interface for customer point balance operations.
// Balances are mutated only through signed deltas; an absent balance reads as
// zero.
type LedgerRepository interface {
	GetBalance(ctx context.Context, customerGID string) (int, error)
	// AdjustBalance applies a signed delta in a single read-modify-write and
	// returns the new balance. Callers are responsible for not over-redeeming.
	AdjustBalance(ctx context.Context, customerGID string, delta int) (int, error)
}

// OrderStateRepository defines the interface for per-order redemption state.
type OrderStateRepository interface {
	// Get returns the zero-value state when the order has no prior record.
	Get(ctx context.Context, orderGID string) (*models.OrderPointsState, error)
	// Set writes all state fields in one bulk operation.
	Set(ctx context.Context, orderGID string, state *models.OrderPointsState) error
}

// SettingsRepository defines the interface for shop-wide loyalty configuration.
type SettingsRepository interface {
	GetRules(ctx context.Context) (*models.EarnRules, []models.LadderStep, error)
	SaveRules(ctx context.Context, earn *models.EarnRules, ladder []models.LadderStep) error
}

// PointTransactionRepository defines the interface for the point-transaction
// audit trail.
type PointTransactionRepository interface {
	Create(ctx context.Context, transaction *models.PointTransaction) error
	FindByCustomerGID(ctx context.Context, customerGID string, page, limit int) ([]*models.PointTransaction, error)
}
