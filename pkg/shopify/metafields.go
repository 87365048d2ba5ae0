package shopify

import (
	"context"
	"errors"
	"strings"
)

// Metafield namespace/type constants used by the loyalty program.
const (
	NamespaceCustom   = "custom"
	TypeNumberInteger = "number_integer"
	TypeJSON          = "json"
)

// MetafieldInput is one entry of a bulk metafieldsSet mutation.
type MetafieldInput struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// UserError is a field-level error returned by a mutation.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// JoinUserErrors flattens user errors into a single message.
func JoinUserErrors(errs []UserError) string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Message != "" {
			messages = append(messages, e.Message)
		}
	}
	return strings.Join(messages, ", ")
}

const metafieldsSetMutation = `
  mutation SetMetafields($metafields: [MetafieldsSetInput!]!) {
    metafieldsSet(metafields: $metafields) {
      metafields { id key namespace }
      userErrors { field message }
    }
  }`

// SetMetafields writes a batch of metafields in one bulk mutation. Any
// field-level rejection is returned as an error carrying the joined messages.
func (c *Client) SetMetafields(ctx context.Context, metafields []MetafieldInput) error {
	var result struct {
		MetafieldsSet struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := c.Do(ctx, metafieldsSetMutation, map[string]interface{}{"metafields": metafields}, &result); err != nil {
		return err
	}
	if len(result.MetafieldsSet.UserErrors) > 0 {
		return errors.New(JoinUserErrors(result.MetafieldsSet.UserErrors))
	}
	return nil
}
