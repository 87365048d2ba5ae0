package shopify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	"github.com/konstantin-nikolovski/perq/pkg/shopify"
)

// Compile-time check to ensure SettingsRepository implements the interface
var _ repositories.SettingsRepository = (*SettingsRepository)(nil)

// Shop metafield keys holding the loyalty configuration.
const (
	earnRulesKey = "loyalty_earn_rules"
	ladderKey    = "loyalty_ladder"
)

const shopRulesQuery = `
  query GetShopRules {
    shop {
      id
      earn: metafield(namespace: "custom", key: "loyalty_earn_rules") { value }
      ladder: metafield(namespace: "custom", key: "loyalty_ladder") { value }
    }
  }`

// defaultEarnRules applies when a shop has not configured earning yet.
var defaultEarnRules = models.EarnRules{Newsletter: 50, PerEuro: 1, PerItem: 10}

// SettingsRepository stores shop-wide loyalty configuration as shop metafields.
type SettingsRepository struct {
	client *shopify.Client
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(client *shopify.Client) *SettingsRepository {
	return &SettingsRepository{client: client}
}

type shopRulesResult struct {
	Shop struct {
		ID     string          `json:"id"`
		Earn   *metafieldValue `json:"earn"`
		Ladder *metafieldValue `json:"ladder"`
	} `json:"shop"`
}

// GetRules reads the earn rules and the redemption ladder, falling back to
// defaults when unset and tolerating malformed stored values.
func (r *SettingsRepository) GetRules(ctx context.Context) (*models.EarnRules, []models.LadderStep, error) {
	var result shopRulesResult
	if err := r.client.Do(ctx, shopRulesQuery, nil, &result); err != nil {
		return nil, nil, fmt.Errorf("fetch shop rules: %w", err)
	}

	earn := defaultEarnRules
	if result.Shop.Earn != nil && result.Shop.Earn.Value != "" {
		if err := json.Unmarshal([]byte(result.Shop.Earn.Value), &earn); err != nil {
			earn = defaultEarnRules
		}
	}

	var ladder []models.LadderStep
	if result.Shop.Ladder != nil {
		ladder = models.ParseLadder(result.Shop.Ladder.Value)
	}
	return &earn, ladder, nil
}

// SaveRules writes both configuration metafields in one bulk operation.
func (r *SettingsRepository) SaveRules(ctx context.Context, earn *models.EarnRules, ladder []models.LadderStep) error {
	var result shopRulesResult
	if err := r.client.Do(ctx, shopRulesQuery, nil, &result); err != nil {
		return fmt.Errorf("fetch shop id: %w", err)
	}

	earnJSON, err := json.Marshal(earn)
	if err != nil {
		return fmt.Errorf("encode earn rules: %w", err)
	}
	ladderJSON, err := json.Marshal(ladder)
	if err != nil {
		return fmt.Errorf("encode ladder: %w", err)
	}

	metafields := []shopify.MetafieldInput{
		{OwnerID: result.Shop.ID, Namespace: shopify.NamespaceCustom, Key: earnRulesKey, Type: shopify.TypeJSON, Value: string(earnJSON)},
		{OwnerID: result.Shop.ID, Namespace: shopify.NamespaceCustom, Key: ladderKey, Type: shopify.TypeJSON, Value: string(ladderJSON)},
	}
	if err := r.client.SetMetafields(ctx, metafields); err != nil {
		return fmt.Errorf("update shop rules: %w", err)
	}
	return nil
}
