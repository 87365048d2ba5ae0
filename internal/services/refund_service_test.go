package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refundPayload(t *testing.T, raw string) payload.Payload {
	t.Helper()
	var p payload.Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func refundOfCents(cents int64) string {
	return fmt.Sprintf(`{
		"order_id": 1001,
		"refund_line_items": [{"subtotal": "%d.%02d"}]
	}`, cents/100, cents%100)
}

func seededRefundFixture() (*fakeLedgerRepo, *fakeOrderStateRepo, *RefundServiceImpl) {
	ledger := newFakeLedgerRepo()
	ledger.balances[testCustomerGID] = 50
	states := newFakeOrderStateRepo()
	states.states[testOrderGID] = models.OrderPointsState{
		CustomerGID:        testCustomerGID,
		PointsRedeemed:     200,
		PointsRefunded:     0,
		SubtotalCents:      2200,
		NetSubtotalCents:   2000,
		DiscountValueCents: 200,
	}
	svc := NewRefundService(ledger, states, &fakeTxnRepo{})
	return ledger, states, svc
}

func TestProcessRefundCreatedProportionalPartialRefund(t *testing.T) {
	ledger, states, svc := seededRefundFixture()

	// Half the net subtotal refunded: half the points come back.
	require.NoError(t, svc.ProcessRefundCreated(context.Background(), refundPayload(t, refundOfCents(1000))))

	assert.Equal(t, 150, ledger.balances[testCustomerGID])
	state := states.states[testOrderGID]
	assert.Equal(t, 100, state.PointsRefunded)
	assert.Equal(t, 200, state.PointsRedeemed)
}

func TestProcessRefundCreatedConvergesToFullRestitution(t *testing.T) {
	ledger, states, svc := seededRefundFixture()

	// Partial refunds whose sum covers the full net subtotal.
	for _, cents := range []int64{700, 700, 600} {
		require.NoError(t, svc.ProcessRefundCreated(context.Background(), refundPayload(t, refundOfCents(cents))))
		state := states.states[testOrderGID]
		assert.GreaterOrEqual(t, state.PointsRefunded, 0)
		assert.LessOrEqual(t, state.PointsRefunded, state.PointsRedeemed)
	}

	// Exactly the redeemed points restored, never more.
	assert.Equal(t, 250, ledger.balances[testCustomerGID])
	assert.Equal(t, 200, states.states[testOrderGID].PointsRefunded)

	// Another refund event finds nothing left to restore.
	require.NoError(t, svc.ProcessRefundCreated(context.Background(), refundPayload(t, refundOfCents(500))))
	assert.Equal(t, 250, ledger.balances[testCustomerGID])
}

func TestProcessRefundCreatedFullRefundAvoidsRoundingUnderpayment(t *testing.T) {
	ledger, states, svc := seededRefundFixture()
	// Refund meets the base: short-circuit to full restitution regardless of
	// how the proportional share would round.
	require.NoError(t, svc.ProcessRefundCreated(context.Background(), refundOfCentsPayload(t, 2000)))

	assert.Equal(t, 250, ledger.balances[testCustomerGID])
	assert.Equal(t, 200, states.states[testOrderGID].PointsRefunded)
}

func refundOfCentsPayload(t *testing.T, cents int64) payload.Payload {
	return refundPayload(t, refundOfCents(cents))
}

func TestProcessRefundCreatedWithoutUsableBaseRefundsRemainder(t *testing.T) {
	ledger := newFakeLedgerRepo()
	ledger.balances[testCustomerGID] = 0
	states := newFakeOrderStateRepo()
	states.states[testOrderGID] = models.OrderPointsState{
		CustomerGID:    testCustomerGID,
		PointsRedeemed: 120,
		PointsRefunded: 20,
	}
	svc := NewRefundService(ledger, states, &fakeTxnRepo{})

	// No subtotal anywhere: a ratio cannot be computed, treat as full refund.
	require.NoError(t, svc.ProcessRefundCreated(context.Background(), refundOfCentsPayload(t, 500)))

	assert.Equal(t, 100, ledger.balances[testCustomerGID])
	assert.Equal(t, 120, states.states[testOrderGID].PointsRefunded)
}

func TestProcessRefundCreatedResolvesCustomerFromPayload(t *testing.T) {
	ledger := newFakeLedgerRepo()
	ledger.balances[testCustomerGID] = 0
	states := newFakeOrderStateRepo()
	// State written before the customer id was known.
	states.states[testOrderGID] = models.OrderPointsState{
		PointsRedeemed:   100,
		SubtotalCents:    1000,
		NetSubtotalCents: 1000,
	}
	svc := NewRefundService(ledger, states, &fakeTxnRepo{})

	p := refundPayload(t, `{
		"order_id": 1001,
		"order": {"customer": {"admin_graphql_api_id": "gid://shopify/Customer/7"}},
		"refund_line_items": [{"subtotal": "10.00"}]
	}`)
	require.NoError(t, svc.ProcessRefundCreated(context.Background(), p))

	assert.Equal(t, 100, ledger.balances[testCustomerGID])
	assert.Equal(t, testCustomerGID, states.states[testOrderGID].CustomerGID)
}

func TestProcessRefundCreatedSkipsBenignly(t *testing.T) {
	t.Run("missing order id", func(t *testing.T) {
		ledger, states, svc := seededRefundFixture()
		require.NoError(t, svc.ProcessRefundCreated(context.Background(), refundPayload(t, `{"refund_line_items":[{"subtotal":"5.00"}]}`)))
		assert.Equal(t, 0, ledger.adjustCalls)
		assert.Equal(t, 0, states.setCalls)
	})

	t.Run("nothing redeemed", func(t *testing.T) {
		ledger := newFakeLedgerRepo()
		states := newFakeOrderStateRepo()
		svc := NewRefundService(ledger, states, &fakeTxnRepo{})
		require.NoError(t, svc.ProcessRefundCreated(context.Background(), refundOfCentsPayload(t, 1000)))
		assert.Equal(t, 0, ledger.adjustCalls)
	})

	t.Run("no refundable amount", func(t *testing.T) {
		ledger := newFakeLedgerRepo()
		ledger.balances[testCustomerGID] = 0
		states := newFakeOrderStateRepo()
		states.states[testOrderGID] = models.OrderPointsState{
			CustomerGID:    testCustomerGID,
			PointsRedeemed: 100,
		}
		svc := NewRefundService(ledger, states, &fakeTxnRepo{})
		require.NoError(t, svc.ProcessRefundCreated(context.Background(), refundPayload(t, `{"order_id": 1001}`)))
		assert.Equal(t, 0, ledger.adjustCalls)
	})

	t.Run("unresolvable customer", func(t *testing.T) {
		ledger := newFakeLedgerRepo()
		states := newFakeOrderStateRepo()
		states.states[testOrderGID] = models.OrderPointsState{
			PointsRedeemed:   100,
			SubtotalCents:    1000,
			NetSubtotalCents: 1000,
		}
		svc := NewRefundService(ledger, states, &fakeTxnRepo{})
		require.NoError(t, svc.ProcessRefundCreated(context.Background(), refundOfCentsPayload(t, 500)))
		assert.Equal(t, 0, ledger.adjustCalls)
	})
}
