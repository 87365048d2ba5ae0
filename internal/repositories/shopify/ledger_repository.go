package shopify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/konstantin-nikolovski/perq/internal/payload"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	"github.com/konstantin-nikolovski/perq/pkg/shopify"
)

// Compile-time check to ensure LedgerRepository implements the interface
var _ repositories.LedgerRepository = (*LedgerRepository)(nil)

const pointsKey = "loyalty_points"

const customerPointsQuery = `
  query GetCustomerPoints($customerId: ID!) {
    customer(id: $customerId) {
      id
      metafield(namespace: "custom", key: "loyalty_points") {
        id
        value
      }
    }
  }`

// LedgerRepository stores customer point balances as customer metafields.
type LedgerRepository struct {
	client *shopify.Client
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(client *shopify.Client) *LedgerRepository {
	return &LedgerRepository{client: client}
}

type customerPointsResult struct {
	Customer *struct {
		ID        string `json:"id"`
		Metafield *struct {
			Value string `json:"value"`
		} `json:"metafield"`
	} `json:"customer"`
}

func (r *LedgerRepository) fetch(ctx context.Context, customerGID string) (string, int, error) {
	var result customerPointsResult
	err := r.client.Do(ctx, customerPointsQuery, map[string]interface{}{"customerId": customerGID}, &result)
	if err != nil {
		return "", 0, fmt.Errorf("fetch customer points: %w", err)
	}
	if result.Customer == nil {
		return "", 0, repositories.ErrCustomerNotFound
	}
	balance := 0
	if result.Customer.Metafield != nil {
		balance = payload.IntValue(result.Customer.Metafield.Value)
	}
	return result.Customer.ID, balance, nil
}

// GetBalance reads the customer's current point balance. An absent metafield
// reads as zero; a missing customer is ErrCustomerNotFound.
func (r *LedgerRepository) GetBalance(ctx context.Context, customerGID string) (int, error) {
	_, balance, err := r.fetch(ctx, customerGID)
	return balance, err
}

// AdjustBalance applies a signed delta to the customer's balance and writes
// the new value back as a single metafield update.
func (r *LedgerRepository) AdjustBalance(ctx context.Context, customerGID string, delta int) (int, error) {
	ownerID, balance, err := r.fetch(ctx, customerGID)
	if err != nil {
		return 0, err
	}

	newBalance := balance + delta
	err = r.client.SetMetafields(ctx, []shopify.MetafieldInput{{
		OwnerID:   ownerID,
		Namespace: shopify.NamespaceCustom,
		Key:       pointsKey,
		Type:      shopify.TypeNumberInteger,
		Value:     strconv.Itoa(newBalance),
	}})
	if err != nil {
		return 0, fmt.Errorf("update customer points: %w", err)
	}
	return newBalance, nil
}
