package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionWorn    Condition = "worn"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionWorn:
		return true
	}
	return false
}

// Listing is a shoe offered for peer-to-peer exchange.
type Listing struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Brand        string          `json:"brand"`
	Size         string          `json:"size"`
	Condition    Condition       `json:"condition"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Description  string          `json:"description,omitempty"`
	Seller       string          `json:"seller"`
	WantsInTrade string          `json:"wantsInTrade,omitempty"`
	ListedAt     time.Time       `json:"listedAt"`
}
