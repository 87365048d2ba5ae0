package services

import (
	"context"
	"fmt"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure PointsServiceImpl implements PointsService
var _ PointsService = (*PointsServiceImpl)(nil)

// PointsServiceImpl handles direct balance reads and adjustments outside the
// webhook reconcilers, such as Flow-driven earning.
type PointsServiceImpl struct {
	ledgerRepo repositories.LedgerRepository
	txnRepo    repositories.PointTransactionRepository
}

// NewPointsService creates a new PointsService
func NewPointsService(ledgerRepo repositories.LedgerRepository, txnRepo repositories.PointTransactionRepository) *PointsServiceImpl {
	return &PointsServiceImpl{
		ledgerRepo: ledgerRepo,
		txnRepo:    txnRepo,
	}
}

// GetBalance reads the customer's current point balance.
func (s *PointsServiceImpl) GetBalance(ctx context.Context, customerGID string) (int, error) {
	return s.ledgerRepo.GetBalance(ctx, customerGID)
}

// AdjustPoints applies a signed adjustment to the customer's balance and
// records it in the audit trail.
func (s *PointsServiceImpl) AdjustPoints(ctx context.Context, customerGID string, delta int) (int, error) {
	newBalance, err := s.ledgerRepo.AdjustBalance(ctx, customerGID, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust customer points: %w", err)
	}

	if s.txnRepo != nil {
		err := s.txnRepo.Create(ctx, &models.PointTransaction{
			CustomerGID:  customerGID,
			Points:       delta,
			Kind:         models.TransactionKindFlow,
			BalanceAfter: newBalance,
		})
		if err != nil {
			slog.Warn("failed to record point transaction", "error", err, "customer", customerGID)
		}
	}

	slog.Info("customer points adjusted", "customer", customerGID, "delta", delta, "balance", newBalance)
	return newBalance, nil
}

// GetTransactions returns the customer's audit trail, newest first.
func (s *PointsServiceImpl) GetTransactions(ctx context.Context, customerGID string, page, limit int) ([]*models.PointTransaction, error) {
	if s.txnRepo == nil {
		return []*models.PointTransaction{}, nil
	}
	return s.txnRepo.FindByCustomerGID(ctx, customerGID, page, limit)
}
