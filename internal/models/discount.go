package models

// DiscountInput is the cart snapshot handed to the discount allocator by the
// platform's checkout pipeline. The shape mirrors the discount function input
// query: shop-level ladder config, buyer identity with the points balance
// metafield, the redemption cart attribute, and the cart lines.
type DiscountInput struct {
	Shop ShopInput `json:"shop"`
	Cart CartInput `json:"cart"`
}

// ShopInput carries shop-level configuration.
type ShopInput struct {
	Ladder *MetafieldValue `json:"ladder"`
}

// CartInput is the cart portion of the allocator input.
type CartInput struct {
	BuyerIdentity *BuyerIdentity  `json:"buyerIdentity"`
	Attribute     *AttributeValue `json:"attribute"`
	Lines         []CartLine      `json:"lines"`
}

// BuyerIdentity identifies the customer placing the order.
type BuyerIdentity struct {
	Customer *CustomerIdentity `json:"customer"`
}

// CustomerIdentity carries the customer's points balance metafield.
type CustomerIdentity struct {
	Metafield *MetafieldValue `json:"metafield"`
}

// MetafieldValue is a raw stored metafield value.
type MetafieldValue struct {
	Value string `json:"value"`
}

// AttributeValue is a raw cart attribute value.
type AttributeValue struct {
	Value string `json:"value"`
}

// CartLine is one line item in the cart, the unit of discount targeting.
type CartLine struct {
	ID   string       `json:"id"`
	Cost CartLineCost `json:"cost"`
}

// CartLineCost carries the line's subtotal amount.
type CartLineCost struct {
	SubtotalAmount MoneyV2 `json:"subtotalAmount"`
}

// MoneyV2 is a decimal currency amount as delivered by the platform.
type MoneyV2 struct {
	Amount string `json:"amount"`
}

// SelectionStrategyAll applies candidates across all targeted lines.
const SelectionStrategyAll = "ALL"

// DiscountResult is the allocator's output: zero or more discount operations.
type DiscountResult struct {
	Operations []DiscountOperation `json:"operations"`
}

// DiscountOperation wraps one product-discount instruction.
type DiscountOperation struct {
	ProductDiscountsAdd *ProductDiscountsAdd `json:"productDiscountsAdd,omitempty"`
}

// ProductDiscountsAdd lists discount candidates and how the platform should
// select among them.
type ProductDiscountsAdd struct {
	SelectionStrategy string              `json:"selectionStrategy"`
	Candidates        []DiscountCandidate `json:"candidates"`
}

// DiscountCandidate applies a value to a set of target lines.
type DiscountCandidate struct {
	Targets []DiscountTarget `json:"targets"`
	Value   DiscountValue    `json:"value"`
	Message string           `json:"message,omitempty"`
}

// DiscountTarget names one cart line.
type DiscountTarget struct {
	CartLine CartLineTarget `json:"cartLine"`
}

// CartLineTarget is the id of a targeted cart line.
type CartLineTarget struct {
	ID string `json:"id"`
}

// DiscountValue is either a uniform percentage or a fixed amount.
type DiscountValue struct {
	Percentage  *PercentageValue  `json:"percentage,omitempty"`
	FixedAmount *FixedAmountValue `json:"fixedAmount,omitempty"`
}

// PercentageValue is a percentage discount value.
type PercentageValue struct {
	Value string `json:"value"`
}

// FixedAmountValue is a fixed-amount discount value.
type FixedAmountValue struct {
	Amount            string `json:"amount"`
	AppliesToEachItem bool   `json:"appliesToEachItem"`
}
