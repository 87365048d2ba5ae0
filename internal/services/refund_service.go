package services

import (
	"context"
	"fmt"
	"math"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/payload"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure RefundServiceImpl implements RefundService
var _ RefundService = (*RefundServiceImpl)(nil)

// RefundServiceImpl returns previously redeemed points in proportion to the
// refunded share of the order. Cumulative refunds across repeated partial
// refund events converge toward full restitution but never exceed the points
// the order redeemed.
type RefundServiceImpl struct {
	ledgerRepo     repositories.LedgerRepository
	orderStateRepo repositories.OrderStateRepository
	txnRepo        repositories.PointTransactionRepository
}

// NewRefundService creates a new RefundService
func NewRefundService(
	ledgerRepo repositories.LedgerRepository,
	orderStateRepo repositories.OrderStateRepository,
	txnRepo repositories.PointTransactionRepository,
) *RefundServiceImpl {
	return &RefundServiceImpl{
		ledgerRepo:     ledgerRepo,
		orderStateRepo: orderStateRepo,
		txnRepo:        txnRepo,
	}
}

func orderPayload(p payload.Payload) payload.Payload {
	if nested, ok := p["order"].(map[string]interface{}); ok {
		return payload.Payload(nested)
	}
	return p
}

// ProcessRefundCreated reconciles one refunds/create delivery.
func (s *RefundServiceImpl) ProcessRefundCreated(ctx context.Context, p payload.Payload) error {
	orderGID := payload.OrderGID(p)
	if orderGID == "" {
		slog.Warn("refunds/create skipped: missing order id")
		return nil
	}

	state, err := s.orderStateRepo.Get(ctx, orderGID)
	if err != nil {
		return fmt.Errorf("read order state: %w", err)
	}
	remaining := state.PointsRedeemed - state.PointsRefunded
	if remaining <= 0 {
		return nil
	}

	orderSubtotalCents := state.SubtotalCents
	if orderSubtotalCents == 0 {
		orderSubtotalCents = payload.OrderSubtotalCents(orderPayload(p))
	}
	if orderSubtotalCents == 0 {
		orderSubtotalCents = payload.FirstMoneyCents(p,
			"order.subtotal_price",
			"order.subtotal_price_set.shop_money.amount",
			"order.current_subtotal_price",
			"order.current_subtotal_price_set.shop_money.amount",
		)
	}

	discountValueCents := state.DiscountValueCents
	if discountValueCents == 0 {
		discountValueCents = payload.FirstMoneyCents(p,
			"order.total_discounts",
			"order.total_discounts_set.shop_money.amount",
			"order.current_total_discounts",
			"order.current_total_discounts_set.shop_money.amount",
			"total_discounts",
			"current_total_discounts",
		)
	}

	netSubtotalCents := state.NetSubtotalCents
	if netSubtotalCents == 0 {
		netSubtotalCents = orderSubtotalCents - discountValueCents
		if netSubtotalCents < 0 {
			netSubtotalCents = 0
		}
	}

	refundNetCents := payload.RefundLineSubtotalCents(p)
	if refundNetCents <= 0 && orderSubtotalCents <= 0 {
		slog.Warn("refunds/create skipped: no refundable amount detected", "order", orderGID)
		return nil
	}

	// Proportional share of the redeemed points, against the net subtotal
	// when known. A refund covering the whole base restores everything still
	// outstanding, so rounding can never underpay a total refund.
	refundPoints := 0
	base := netSubtotalCents
	if base <= 0 {
		base = orderSubtotalCents
	}
	if base <= 0 {
		refundPoints = remaining
	} else {
		cappedRefund := refundNetCents
		if cappedRefund > base {
			cappedRefund = base
		}
		proportional := int(math.Round(float64(state.PointsRedeemed) * float64(cappedRefund) / float64(base)))
		if proportional < 0 {
			proportional = 0
		}
		refundPoints = proportional
		if refundPoints > remaining {
			refundPoints = remaining
		}
		if refundNetCents >= base {
			refundPoints = remaining
		}
	}

	if refundPoints <= 0 {
		return nil
	}

	customerGID := state.CustomerGID
	if customerGID == "" {
		customerGID = payload.CustomerGID(p)
	}
	if customerGID == "" {
		customerGID = payload.CustomerGID(orderPayload(p))
	}
	if customerGID == "" {
		slog.Warn("refunds/create skipped: missing customer id", "order", orderGID)
		return nil
	}

	newBalance, err := s.ledgerRepo.AdjustBalance(ctx, customerGID, refundPoints)
	if err != nil {
		return fmt.Errorf("credit customer points: %w", err)
	}

	newRefunded := state.PointsRefunded + refundPoints
	if newRefunded > state.PointsRedeemed {
		newRefunded = state.PointsRedeemed
	}
	subtotalCents := orderSubtotalCents
	if subtotalCents == 0 {
		subtotalCents = state.SubtotalCents
	}
	if err := s.orderStateRepo.Set(ctx, orderGID, &models.OrderPointsState{
		CustomerGID:        customerGID,
		PointsRedeemed:     state.PointsRedeemed,
		PointsRefunded:     newRefunded,
		SubtotalCents:      subtotalCents,
		NetSubtotalCents:   netSubtotalCents,
		DiscountValueCents: discountValueCents,
	}); err != nil {
		return fmt.Errorf("write order state: %w", err)
	}

	s.recordTransaction(ctx, customerGID, orderGID, refundPoints, newBalance)
	slog.Info("order refund reconciled",
		"order", orderGID, "customer", customerGID, "credited", refundPoints, "balance", newBalance)
	return nil
}

func (s *RefundServiceImpl) recordTransaction(ctx context.Context, customerGID, orderGID string, points, balanceAfter int) {
	if s.txnRepo == nil {
		return
	}
	err := s.txnRepo.Create(ctx, &models.PointTransaction{
		CustomerGID:  customerGID,
		OrderGID:     orderGID,
		Points:       points,
		Kind:         models.TransactionKindRefund,
		BalanceAfter: balanceAfter,
	})
	if err != nil {
		slog.Warn("failed to record point transaction", "error", err, "order", orderGID)
	}
}
