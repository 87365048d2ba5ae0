package shopify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/payload"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	"github.com/konstantin-nikolovski/perq/pkg/shopify"
)

// Compile-time check to ensure OrderStateRepository implements the interface
var _ repositories.OrderStateRepository = (*OrderStateRepository)(nil)

// Order metafield keys holding the redemption state.
const (
	redeemedKey      = "loyalty_points_redeemed"
	refundedKey      = "loyalty_points_refunded"
	subtotalKey      = "loyalty_points_redeemed_subtotal_cents"
	netSubtotalKey   = "loyalty_points_net_subtotal_cents"
	discountValueKey = "loyalty_points_discount_value_cents"
)

const orderPointsStateQuery = `
  query GetOrderPointsState($orderId: ID!) {
    order(id: $orderId) {
      id
      customer { id }
      pointsRedeemed: metafield(namespace: "custom", key: "loyalty_points_redeemed") { value }
      pointsRefunded: metafield(namespace: "custom", key: "loyalty_points_refunded") { value }
      subtotalCents: metafield(namespace: "custom", key: "loyalty_points_redeemed_subtotal_cents") { value }
      netSubtotalCents: metafield(namespace: "custom", key: "loyalty_points_net_subtotal_cents") { value }
      discountValueCents: metafield(namespace: "custom", key: "loyalty_points_discount_value_cents") { value }
    }
  }`

// OrderStateRepository stores per-order redemption state as order metafields.
type OrderStateRepository struct {
	client *shopify.Client
}

// NewOrderStateRepository creates a new OrderStateRepository
func NewOrderStateRepository(client *shopify.Client) *OrderStateRepository {
	return &OrderStateRepository{client: client}
}

// orderGIDFor accepts either a full gid or a bare numeric order id.
func orderGIDFor(orderID string) string {
	if strings.HasPrefix(orderID, "gid://") {
		return orderID
	}
	return fmt.Sprintf("gid://shopify/Order/%s", orderID)
}

type metafieldValue struct {
	Value string `json:"value"`
}

type orderStateResult struct {
	Order *struct {
		ID       string `json:"id"`
		Customer *struct {
			ID string `json:"id"`
		} `json:"customer"`
		PointsRedeemed     *metafieldValue `json:"pointsRedeemed"`
		PointsRefunded     *metafieldValue `json:"pointsRefunded"`
		SubtotalCents      *metafieldValue `json:"subtotalCents"`
		NetSubtotalCents   *metafieldValue `json:"netSubtotalCents"`
		DiscountValueCents *metafieldValue `json:"discountValueCents"`
	} `json:"order"`
}

func intField(mf *metafieldValue) int {
	if mf == nil {
		return 0
	}
	return payload.IntValue(mf.Value)
}

// Get reads the order's redemption state. An unknown order or absent
// metafields read as the zero-value state; this never fails on "not found".
func (r *OrderStateRepository) Get(ctx context.Context, orderGID string) (*models.OrderPointsState, error) {
	var result orderStateResult
	err := r.client.Do(ctx, orderPointsStateQuery, map[string]interface{}{"orderId": orderGIDFor(orderGID)}, &result)
	if err != nil {
		return nil, fmt.Errorf("fetch order points state: %w", err)
	}
	if result.Order == nil {
		return &models.OrderPointsState{}, nil
	}

	state := &models.OrderPointsState{
		PointsRedeemed:     intField(result.Order.PointsRedeemed),
		PointsRefunded:     intField(result.Order.PointsRefunded),
		SubtotalCents:      int64(intField(result.Order.SubtotalCents)),
		NetSubtotalCents:   int64(intField(result.Order.NetSubtotalCents)),
		DiscountValueCents: int64(intField(result.Order.DiscountValueCents)),
	}
	if result.Order.Customer != nil {
		state.CustomerGID = result.Order.Customer.ID
	}
	return state, nil
}

// Set writes all five state fields in one bulk metafield operation.
func (r *OrderStateRepository) Set(ctx context.Context, orderGID string, state *models.OrderPointsState) error {
	ownerID := orderGIDFor(orderGID)
	metafields := []shopify.MetafieldInput{
		{OwnerID: ownerID, Namespace: shopify.NamespaceCustom, Key: redeemedKey, Type: shopify.TypeNumberInteger, Value: strconv.Itoa(state.PointsRedeemed)},
		{OwnerID: ownerID, Namespace: shopify.NamespaceCustom, Key: refundedKey, Type: shopify.TypeNumberInteger, Value: strconv.Itoa(state.PointsRefunded)},
		{OwnerID: ownerID, Namespace: shopify.NamespaceCustom, Key: subtotalKey, Type: shopify.TypeNumberInteger, Value: strconv.FormatInt(state.SubtotalCents, 10)},
		{OwnerID: ownerID, Namespace: shopify.NamespaceCustom, Key: netSubtotalKey, Type: shopify.TypeNumberInteger, Value: strconv.FormatInt(state.NetSubtotalCents, 10)},
		{OwnerID: ownerID, Namespace: shopify.NamespaceCustom, Key: discountValueKey, Type: shopify.TypeNumberInteger, Value: strconv.FormatInt(state.DiscountValueCents, 10)},
	}
	if err := r.client.SetMetafields(ctx, metafields); err != nil {
		return fmt.Errorf("update order points state: %w", err)
	}
	return nil
}
