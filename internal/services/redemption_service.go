package services

import (
	"context"
	"fmt"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/payload"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure RedemptionServiceImpl implements RedemptionService
var _ RedemptionService = (*RedemptionServiceImpl)(nil)

// RedemptionServiceImpl debits the points ledger when an order that redeemed
// points is paid. Deliveries are at-least-once, so the debit is computed as a
// delta against the last recorded per-order state: the ledger is charged
// exactly once per unit of redeemed points no matter how often the event is
// redelivered.
type RedemptionServiceImpl struct {
	ledgerRepo     repositories.LedgerRepository
	orderStateRepo repositories.OrderStateRepository
	txnRepo        repositories.PointTransactionRepository
}

// NewRedemptionService creates a new RedemptionService
func NewRedemptionService(
	ledgerRepo repositories.LedgerRepository,
	orderStateRepo repositories.OrderStateRepository,
	txnRepo repositories.PointTransactionRepository,
) *RedemptionServiceImpl {
	return &RedemptionServiceImpl{
		ledgerRepo:     ledgerRepo,
		orderStateRepo: orderStateRepo,
		txnRepo:        txnRepo,
	}
}

// ProcessOrderPaid reconciles one orders/paid delivery.
func (s *RedemptionServiceImpl) ProcessOrderPaid(ctx context.Context, p payload.Payload) error {
	redeemedPoints := payload.RedeemedPoints(p)
	if redeemedPoints <= 0 {
		return nil
	}

	customerGID := payload.CustomerGID(p)
	if customerGID == "" {
		slog.Warn("orders/paid skipped: missing customer id")
		return nil
	}

	orderGID := payload.OrderGID(p)
	if orderGID == "" {
		slog.Warn("orders/paid skipped: missing order id")
		return nil
	}

	state, err := s.orderStateRepo.Get(ctx, orderGID)
	if err != nil {
		return fmt.Errorf("read order state: %w", err)
	}

	discountValueCents := payload.FirstMoneyCents(p,
		"total_discounts",
		"total_discounts_set.shop_money.amount",
		"current_total_discounts",
		"current_total_discounts_set.shop_money.amount",
	)
	netSubtotalRaw := payload.FirstMoneyCents(p,
		"current_subtotal_price",
		"current_subtotal_price_set.shop_money.amount",
		"subtotal_price",
		"subtotal_price_set.shop_money.amount",
	)

	// Reconstruct the gross subtotal: the payload's figure, else net plus
	// discount, else whatever was recorded before.
	grossSubtotalCents := payload.OrderSubtotalCents(p)
	if grossSubtotalCents == 0 && netSubtotalRaw > 0 {
		grossSubtotalCents = netSubtotalRaw + discountValueCents
	}
	if grossSubtotalCents == 0 {
		grossSubtotalCents = state.SubtotalCents
	}
	if grossSubtotalCents > 0 && netSubtotalRaw > 0 && grossSubtotalCents < netSubtotalRaw {
		grossSubtotalCents = netSubtotalRaw + discountValueCents
	}

	netSubtotalCents := netSubtotalRaw
	if netSubtotalCents == 0 {
		netSubtotalCents = grossSubtotalCents - discountValueCents
		if netSubtotalCents < 0 {
			netSubtotalCents = 0
		}
	}

	delta := redeemedPoints - state.PointsRedeemed
	if delta <= 0 {
		// Duplicate or non-increasing delivery. Persist subtotal figures if
		// they have become available, but leave the ledger untouched.
		if (state.SubtotalCents == 0 && grossSubtotalCents > 0) ||
			(state.NetSubtotalCents == 0 && netSubtotalCents > 0) {
			refreshed := &models.OrderPointsState{
				CustomerGID:        state.CustomerGID,
				PointsRedeemed:     state.PointsRedeemed,
				PointsRefunded:     state.PointsRefunded,
				SubtotalCents:      grossSubtotalCents,
				NetSubtotalCents:   netSubtotalCents,
				DiscountValueCents: discountValueCents,
			}
			if refreshed.CustomerGID == "" {
				refreshed.CustomerGID = customerGID
			}
			if err := s.orderStateRepo.Set(ctx, orderGID, refreshed); err != nil {
				return fmt.Errorf("refresh order state: %w", err)
			}
		}
		return nil
	}

	newBalance, err := s.ledgerRepo.AdjustBalance(ctx, customerGID, -delta)
	if err != nil {
		return fmt.Errorf("debit customer points: %w", err)
	}

	if err := s.orderStateRepo.Set(ctx, orderGID, &models.OrderPointsState{
		CustomerGID:        customerGID,
		PointsRedeemed:     redeemedPoints,
		PointsRefunded:     state.PointsRefunded,
		SubtotalCents:      grossSubtotalCents,
		NetSubtotalCents:   netSubtotalCents,
		DiscountValueCents: discountValueCents,
	}); err != nil {
		return fmt.Errorf("write order state: %w", err)
	}

	s.recordTransaction(ctx, customerGID, orderGID, -delta, newBalance)
	slog.Info("order redemption reconciled",
		"order", orderGID, "customer", customerGID, "debited", delta, "balance", newBalance)
	return nil
}

// recordTransaction appends to the audit trail; failures are logged, never
// surfaced, so reconciliation does not depend on the audit store.
func (s *RedemptionServiceImpl) recordTransaction(ctx context.Context, customerGID, orderGID string, points, balanceAfter int) {
	if s.txnRepo == nil {
		return
	}
	err := s.txnRepo.Create(ctx, &models.PointTransaction{
		CustomerGID:  customerGID,
		OrderGID:     orderGID,
		Points:       points,
		Kind:         models.TransactionKindRedeem,
		BalanceAfter: balanceAfter,
	})
	if err != nil {
		slog.Warn("failed to record point transaction", "error", err, "order", orderGID)
	}
}
