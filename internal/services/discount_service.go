package services

import (
	"fmt"
	"math"
	"strconv"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/payload"
)

// Compile-time check to ensure DiscountServiceImpl implements DiscountService
var _ DiscountService = (*DiscountServiceImpl)(nil)

// DiscountServiceImpl turns a cart snapshot into discount operations. Given
// the shop's redemption ladder, the customer's balance, and the requested
// redemption amount, it picks the best ladder step the customer both has and
// asked for, then applies it as a uniform percentage or distributes a fixed
// amount across the cart lines.
type DiscountServiceImpl struct{}

// NewDiscountService creates a new DiscountService
func NewDiscountService() *DiscountServiceImpl {
	return &DiscountServiceImpl{}
}

func emptyResult() *models.DiscountResult {
	return &models.DiscountResult{Operations: []models.DiscountOperation{}}
}

// Generate computes the discount operations for one cart snapshot. It never
// fails: any unresolvable condition yields an empty operation list, since no
// discount is always safe.
func (s *DiscountServiceImpl) Generate(input *models.DiscountInput) *models.DiscountResult {
	if input == nil {
		return emptyResult()
	}

	var ladderRaw string
	if input.Shop.Ladder != nil {
		ladderRaw = input.Shop.Ladder.Value
	}
	ladder := models.ParseLadder(ladderRaw)
	if len(ladder) == 0 {
		return emptyResult()
	}

	balance := 0
	if input.Cart.BuyerIdentity != nil && input.Cart.BuyerIdentity.Customer != nil &&
		input.Cart.BuyerIdentity.Customer.Metafield != nil {
		balance = payload.IntValue(input.Cart.BuyerIdentity.Customer.Metafield.Value)
	}
	if balance < 0 {
		balance = 0
	}

	requestedPoints := 0
	if input.Cart.Attribute != nil {
		requestedPoints = payload.IntValue(input.Cart.Attribute.Value)
	}
	if requestedPoints <= 0 {
		return emptyResult()
	}

	cappedRequest := requestedPoints
	if balance < cappedRequest {
		cappedRequest = balance
	}

	// Highest step not exceeding what the customer both has and asked for.
	var step *models.LadderStep
	for i := range ladder {
		if cappedRequest >= ladder[i].Points {
			step = &ladder[i]
		} else {
			break
		}
	}
	if step == nil {
		return emptyResult()
	}

	lines := input.Cart.Lines
	if len(lines) == 0 {
		return emptyResult()
	}

	if step.Type == models.LadderTypePercentage {
		targets := make([]models.DiscountTarget, 0, len(lines))
		for _, line := range lines {
			targets = append(targets, models.DiscountTarget{CartLine: models.CartLineTarget{ID: line.ID}})
		}
		candidate := models.DiscountCandidate{
			Targets: targets,
			Value: models.DiscountValue{
				Percentage: &models.PercentageValue{Value: strconv.FormatFloat(step.Value, 'f', -1, 64)},
			},
			Message: fmt.Sprintf("Redeemed %d points (%s%%)", step.Points, strconv.FormatFloat(step.Value, 'f', -1, 64)),
		}
		return &models.DiscountResult{Operations: []models.DiscountOperation{{
			ProductDiscountsAdd: &models.ProductDiscountsAdd{
				SelectionStrategy: models.SelectionStrategyAll,
				Candidates:        []models.DiscountCandidate{candidate},
			},
		}}}
	}

	var subtotalCents int64
	for _, line := range lines {
		cents := payload.MoneyCents(line.Cost.SubtotalAmount.Amount)
		if cents > 0 {
			subtotalCents += cents
		}
	}
	if subtotalCents <= 0 {
		return emptyResult()
	}

	targetAmountCents := int64(math.Round(step.Value * 100))
	if targetAmountCents <= 0 {
		return emptyResult()
	}

	remainingCents := targetAmountCents
	if remainingCents > subtotalCents {
		remainingCents = subtotalCents
	}

	candidates := make([]models.DiscountCandidate, 0, len(lines))
	for i, line := range lines {
		if remainingCents <= 0 {
			break
		}
		lineSubtotalCents := payload.MoneyCents(line.Cost.SubtotalAmount.Amount)
		if lineSubtotalCents <= 0 {
			continue
		}

		lineDiscountCents := targetAmountCents * lineSubtotalCents / subtotalCents
		if lineDiscountCents > lineSubtotalCents {
			lineDiscountCents = lineSubtotalCents
		}
		if lineDiscountCents > remainingCents {
			lineDiscountCents = remainingCents
		}

		// The last line absorbs the rounding remainder so the per-line
		// allocations sum exactly to the target.
		if i == len(lines)-1 {
			lineDiscountCents = remainingCents
			if lineDiscountCents > lineSubtotalCents {
				lineDiscountCents = lineSubtotalCents
			}
		}

		if lineDiscountCents <= 0 {
			continue
		}
		remainingCents -= lineDiscountCents

		candidate := models.DiscountCandidate{
			Targets: []models.DiscountTarget{{CartLine: models.CartLineTarget{ID: line.ID}}},
			Value: models.DiscountValue{
				FixedAmount: &models.FixedAmountValue{
					Amount:            fmt.Sprintf("%d.%02d", lineDiscountCents/100, lineDiscountCents%100),
					AppliesToEachItem: false,
				},
			},
		}
		if len(candidates) == 0 {
			candidate.Message = fmt.Sprintf("Redeemed %d points", step.Points)
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		return emptyResult()
	}
	return &models.DiscountResult{Operations: []models.DiscountOperation{{
		ProductDiscountsAdd: &models.ProductDiscountsAdd{
			SelectionStrategy: models.SelectionStrategyAll,
			Candidates:        candidates,
		},
	}}}
}
