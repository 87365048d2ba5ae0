package models

import (
	"encoding/json"
	"sort"

	"github.com/konstantin-nikolovski/perq/internal/payload"
)

// Ladder step types.
const (
	LadderTypeAmount     = "amount"
	LadderTypePercentage = "percentage"
)

// LadderStep maps a points cost to a discount value. The shop-wide ladder is
// an ascending, deduplicated list of steps.
type LadderStep struct {
	Points int     `json:"points"`
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
}

// ParseLadder decodes a stored ladder value. It tolerates malformed input and
// legacy shapes (an "amount" field instead of "value"), drops non-positive
// steps, and returns the result sorted ascending by points.
func ParseLadder(raw string) []LadderStep {
	if raw == "" {
		return nil
	}
	var entries []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}

	steps := make([]LadderStep, 0, len(entries))
	for _, entry := range entries {
		value := entry["value"]
		if value == nil {
			value = entry["amount"]
		}
		stepType := LadderTypeAmount
		if s, ok := entry["type"].(string); ok && s == LadderTypePercentage {
			stepType = LadderTypePercentage
		}
		step := LadderStep{
			Points: payload.IntValue(entry["points"]),
			Type:   stepType,
			Value:  payload.FloatValue(value),
		}
		if step.Points <= 0 || step.Value <= 0 {
			continue
		}
		steps = append(steps, step)
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Points < steps[j].Points })
	return steps
}

// MaxLadderSteps bounds the configurable ladder size.
const MaxLadderSteps = 20

// ValidateLadder checks a configured ladder and returns user-facing error
// messages. An empty slice means the ladder is valid.
func ValidateLadder(steps []LadderStep) []string {
	var errs []string
	if len(steps) == 0 {
		errs = append(errs, "Add at least one ladder step.")
		return errs
	}
	byPoints := make([]LadderStep, len(steps))
	copy(byPoints, steps)
	sort.SliceStable(byPoints, func(i, j int) bool { return byPoints[i].Points < byPoints[j].Points })
	for i, s := range byPoints {
		if s.Points <= 0 || s.Value <= 0 {
			errs = append(errs, "Points and value must be positive.")
		}
		if s.Type == LadderTypePercentage && (s.Value <= 0 || s.Value > 100) {
			errs = append(errs, "Percentage must be between 1 and 100.")
		}
		if i > 0 && byPoints[i-1].Points == s.Points {
			errs = append(errs, "Duplicate point thresholds are not allowed.")
		}
	}
	for i := 1; i < len(steps); i++ {
		if steps[i-1].Points > steps[i].Points {
			errs = append(errs, "Ladder must be sorted ascending by points.")
			break
		}
	}
	if len(steps) > MaxLadderSteps {
		errs = append(errs, "Too many steps (max 20).")
	}
	return errs
}
