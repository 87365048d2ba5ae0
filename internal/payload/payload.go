package payload

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Payload is a generic JSON tree, as delivered by platform webhooks. Field
// shapes vary between platform versions, so values are always extracted
// defensively and coerced leniently.
type Payload map[string]interface{}

// Get traverses a dot-separated path of nested objects. It returns nil when
// any segment is missing or not an object.
func (p Payload) Get(path string) interface{} {
	var current interface{} = map[string]interface{}(p)
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = node[part]
	}
	return current
}

// First returns the value of the first path that is present, mirroring a
// fallback chain over known field aliases.
func (p Payload) First(paths ...string) interface{} {
	for _, path := range paths {
		if v := p.Get(path); v != nil {
			return v
		}
	}
	return nil
}

// IntValue coerces a dynamic value to an integer. Numbers are truncated,
// numeric strings parsed; anything else reads as zero.
func IntValue(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case int64:
		return int(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0
		}
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

// FloatValue coerces a dynamic value to a float64, defaulting to zero.
func FloatValue(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}

// MoneyCents coerces a decimal currency amount (string or number) to integer
// cents. Malformed amounts read as zero.
func MoneyCents(v interface{}) int64 {
	var d decimal.Decimal
	switch val := v.(type) {
	case float64:
		d = decimal.NewFromFloat(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int64:
		d = decimal.NewFromInt(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0
		}
		parsed, err := decimal.NewFromString(trimmed)
		if err != nil {
			return 0
		}
		d = parsed
	default:
		return 0
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FirstMoneyCents evaluates paths in priority order and converts the first
// present value to cents.
func FirstMoneyCents(p Payload, paths ...string) int64 {
	return MoneyCents(p.First(paths...))
}
