package domain

import (
	"github.com/shopspring/decimal"
)

// ProductSnapshot product fields frozen on a cart line
type ProductSnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
}

// LineCustomization one flattened customization on a cart line
type LineCustomization struct {
	Type           string          `json:"type"`
	Label          string          `json:"label"`
	Value          string          `json:"value"`
	UnitPriceDelta decimal.Decimal `json:"unit_price_delta"`

	// filling provenance
	ListedPrice *decimal.Decimal `json:"listed_price,omitempty"`
	Multiplier  int              `json:"multiplier,omitempty"`
}

// CartLine confirmed, priced product customization
type CartLine struct {
	LineID          string              `json:"line_id"`
	Product         ProductSnapshot     `json:"product"`
	Quantity        int                 `json:"quantity"`
	Customizations  []LineCustomization `json:"customizations"`
	CustomMessage   string              `json:"custom_message"`
	UnitPrice       decimal.Decimal     `json:"unit_price"`
	HasFreeDelivery bool                `json:"has_free_delivery"`
	HasFreeTopper   bool                `json:"has_free_topper"`
}

// LineTotal unit price × quantity
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
