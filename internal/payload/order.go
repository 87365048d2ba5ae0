package payload

import (
	"fmt"
	"strconv"
	"strings"
)

// PointsAttributeKey is the cart attribute carrying the customer's requested
// redemption amount, set by the storefront redemption widget.
const PointsAttributeKey = "perq_points_redeem"

// identityString renders a numeric or string identifier for use in a gid.
func identityString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatInt(int64(val), 10)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}

// CustomerGID resolves the customer identity from an order payload, preferring
// the admin GraphQL id and falling back to the numeric customer id.
func CustomerGID(p Payload) string {
	if s, ok := p.First("customer.admin_graphql_api_id", "customer.customer_admin_graphql_api_id").(string); ok && strings.HasPrefix(s, "gid://") {
		return s
	}
	id := identityString(p.First("customer.id", "customer_id"))
	if id == "" {
		return ""
	}
	return fmt.Sprintf("gid://shopify/Customer/%s", id)
}

// OrderGID resolves the order identity from an order or refund payload.
func OrderGID(p Payload) string {
	if s, ok := p.First("admin_graphql_api_id", "order.admin_graphql_api_id").(string); ok &&
		strings.HasPrefix(s, "gid://") && strings.Contains(s, "/Order/") {
		return s
	}
	id := identityString(p.First("order_id", "order.id"))
	if id == "" {
		return ""
	}
	return fmt.Sprintf("gid://shopify/Order/%s", id)
}

// Attribute scans the order's note attributes for the given key, tolerating
// both the "name" and "key" field aliases.
func Attribute(p Payload, key string) (string, bool) {
	attrs, ok := p["note_attributes"].([]interface{})
	if !ok {
		return "", false
	}
	for _, raw := range attrs {
		attr, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name := attr["name"]
		if name == nil {
			name = attr["key"]
		}
		if s, ok := name.(string); ok && s == key {
			if attr["value"] == nil {
				return "", false
			}
			return fmt.Sprintf("%v", attr["value"]), true
		}
	}
	return "", false
}

// RedeemedPoints reads the redemption attribute from an order payload.
func RedeemedPoints(p Payload) int {
	value, ok := Attribute(p, PointsAttributeKey)
	if !ok {
		return 0
	}
	return IntValue(value)
}

// OrderSubtotalCents reconstructs the gross order subtotal. It prefers the
// order-level subtotal fields and otherwise sums the line items, deriving
// price×quantity for lines without their own subtotal.
func OrderSubtotalCents(p Payload) int64 {
	direct := MoneyCents(p.First("current_subtotal_price", "subtotal_price"))
	if direct > 0 {
		return direct
	}

	lines, ok := p["line_items"].([]interface{})
	if !ok {
		return 0
	}
	var sum int64
	for _, raw := range lines {
		line, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		lp := Payload(line)
		subtotal := MoneyCents(lp.First("subtotal", "line_price", "discounted_price"))
		if subtotal > 0 {
			sum += subtotal
			continue
		}
		price := MoneyCents(line["price"])
		quantity := IntValue(line["quantity"])
		if price > 0 && quantity > 0 {
			sum += price * int64(quantity)
		}
	}
	if sum > 0 {
		return sum
	}
	return 0
}

// RefundLineSubtotalCents sums the refunded line items' subtotals from a
// refund payload.
func RefundLineSubtotalCents(p Payload) int64 {
	lines, ok := p["refund_line_items"].([]interface{})
	if !ok {
		return 0
	}
	var total int64
	for _, raw := range lines {
		line, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		lp := Payload(line)
		total += MoneyCents(lp.First(
			"subtotal",
			"total",
			"subtotal_set.shop_money.amount",
			"total_set.shop_money.amount",
		))
	}
	return total
}
