package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryType fulfillment mode
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// Valid reports whether the mode is known
func (d DeliveryType) Valid() bool {
	return d == DeliveryTypeDelivery || d == DeliveryTypePickup
}

// Label pt-BR label used in summaries and audit rows
func (d DeliveryType) Label() string {
	if d == DeliveryTypeDelivery {
		return "Entrega"
	}
	return "Retirada"
}

// DateLayout order date format (dd/MM/yyyy)
const DateLayout = "02/01/2006"

// Address delivery address
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	Complement   string `json:"complement,omitempty"`
}

// Complete reports whether every required field is filled
func (a *Address) Complete() bool {
	return a != nil &&
		strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.Number) != "" &&
		strings.TrimSpace(a.Neighborhood) != ""
}

// OrderRequest checkout form submitted by the shopper
type OrderRequest struct {
	DeliveryType DeliveryType `json:"delivery_type"`
	Date         string       `json:"date"`
	Time         string       `json:"time"`
	Address      *Address     `json:"address,omitempty"`
}

// Order submitted order, the payload relayed and audited
type Order struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	DeliveryType DeliveryType    `json:"delivery_type"`
	Date         string          `json:"date"`
	Time         string          `json:"time"`
	Address      *Address        `json:"address,omitempty"`
	Items        []CartLine      `json:"items"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
}

// GrandTotal subtotal plus delivery fee
func (o *Order) GrandTotal() decimal.Decimal {
	return o.TotalPrice.Add(o.DeliveryFee)
}

// HasFreeDelivery any line unlocks free delivery
func (o *Order) HasFreeDelivery() bool {
	for _, l := range o.Items {
		if l.HasFreeDelivery {
			return true
		}
	}
	return false
}

// HasFreeTopper any line unlocks a free topper
func (o *Order) HasFreeTopper() bool {
	for _, l := range o.Items {
		if l.HasFreeTopper {
			return true
		}
	}
	return false
}
