package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderPointsState is the per-order redemption record persisted as order
// metafields. An order with no prior state reads as the zero value.
type OrderPointsState struct {
	CustomerGID        string `json:"customerGid"`
	PointsRedeemed     int    `json:"pointsRedeemed"`
	PointsRefunded     int    `json:"pointsRefunded"`
	SubtotalCents      int64  `json:"subtotalCents"`
	NetSubtotalCents   int64  `json:"netSubtotalCents"`
	DiscountValueCents int64  `json:"discountValueCents"`
}

// EarnRules configures how customers collect points.
type EarnRules struct {
	Newsletter int `json:"newsletter"`
	PerEuro    int `json:"perEuro"`
	PerItem    int `json:"perItem"`
}

// Point transaction kinds.
const (
	TransactionKindRedeem = "redeem"
	TransactionKindRefund = "refund"
	TransactionKindFlow   = "flow"
)

// PointTransaction records a single ledger adjustment for audit purposes.
type PointTransaction struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CustomerGID  string             `bson:"customerGid" json:"customerGid"`
	OrderGID     string             `bson:"orderGid,omitempty" json:"orderGid,omitempty"`
	Points       int                `bson:"points" json:"points"` // signed delta
	Kind         string             `bson:"kind" json:"kind"`
	BalanceAfter int                `bson:"balanceAfter" json:"balanceAfter"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
