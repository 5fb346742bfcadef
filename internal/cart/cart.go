package cart

import (
	"errors"
	"sort"
	"strings"

	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Cart ordered cart lines of one shopper
type Cart struct {
	Items []domain.CartLine `json:"items"`
}

// New empty cart
func New() *Cart {
	return &Cart{Items: []domain.CartLine{}}
}

// mergeKey identity of a line for merging: product, message and the sorted customization multiset
func mergeKey(l domain.CartLine) string {
	pairs := make([]string, 0, len(l.Customizations))
	for _, c := range l.Customizations {
		pairs = append(pairs, c.Type+"\x1f"+c.Value)
	}
	sort.Strings(pairs)
	return l.Product.ID + "\x1e" + l.CustomMessage + "\x1e" + strings.Join(pairs, "\x1d")
}

// AddLine merges into an identical line or appends. Returns the resulting line.
func (c *Cart) AddLine(line domain.CartLine) domain.CartLine {
	key := mergeKey(line)
	for i := range c.Items {
		if mergeKey(c.Items[i]) == key {
			c.Items[i].Quantity += line.Quantity
			return c.Items[i]
		}
	}
	c.Items = append(c.Items, line)
	return line
}

func (c *Cart) indexByProduct(productID string) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) indexByLine(lineID string) int {
	for i := range c.Items {
		if c.Items[i].LineID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) setQuantity(i, n int) error {
	if i < 0 {
		return ErrLineNotFound
	}
	if n < 1 {
		return ErrInvalidQuantity
	}
	c.Items[i].Quantity = n
	return nil
}

func (c *Cart) remove(i int) error {
	if i < 0 {
		return ErrLineNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

// UpdateQuantity sets the quantity of the first line of a product.
// Differently customized lines of the same product are not distinguished.
func (c *Cart) UpdateQuantity(productID string, n int) error {
	return c.setQuantity(c.indexByProduct(productID), n)
}

// RemoveItem removes the first line of a product
func (c *Cart) RemoveItem(productID string) error {
	return c.remove(c.indexByProduct(productID))
}

// UpdateLine sets the quantity of one line
func (c *Cart) UpdateLine(lineID string, n int) error {
	return c.setQuantity(c.indexByLine(lineID), n)
}

// RemoveLine removes one line
func (c *Cart) RemoveLine(lineID string) error {
	return c.remove(c.indexByLine(lineID))
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []domain.CartLine{}
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalPrice Σ unit price × quantity
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Items {
		total = total.Add(l.LineTotal())
	}
	return total
}

// TotalItems Σ quantity
func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// HasFreeDelivery any line unlocks free delivery
func (c *Cart) HasFreeDelivery() bool {
	for _, l := range c.Items {
		if l.HasFreeDelivery {
			return true
		}
	}
	return false
}

// DeliveryFee flat fee unless picking up or a line ships free
func (c *Cart) DeliveryFee(mode domain.DeliveryType, flatFee decimal.Decimal) decimal.Decimal {
	if mode == domain.DeliveryTypePickup || c.HasFreeDelivery() {
		return decimal.Zero
	}
	return flatFee
}

// Summary totals view of a cart
type Summary struct {
	Items           []domain.CartLine `json:"items"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	TotalItems      int               `json:"total_items"`
	HasFreeDelivery bool              `json:"has_free_delivery"`
}

// Summary snapshot for responses
func (c *Cart) Summary() Summary {
	items := make([]domain.CartLine, len(c.Items))
	copy(items, c.Items)
	return Summary{
		Items:           items,
		TotalPrice:      c.TotalPrice(),
		TotalItems:      c.TotalItems(),
		HasFreeDelivery: c.HasFreeDelivery(),
	}
}
