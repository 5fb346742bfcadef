// Package cart builds priced cart lines and holds the cart aggregate.
package cart

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/pricing"
	"github.com/shopspring/decimal"
)

// ValidationError selection cannot be confirmed yet
type ValidationError struct {
	MissingGroups    []string `json:"missing_groups"`
	FillingShortfall int      `json:"filling_shortfall"`
	FillingLayers    int      `json:"filling_layers"`
	SelectedFillings int      `json:"selected_fillings"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.MissingGroups) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.MissingGroups, ", "))
	}
	if e.FillingShortfall > 0 {
		parts = append(parts, fmt.Sprintf("fillings: %d of %d selected", e.SelectedFillings, e.FillingLayers))
	}
	return "incomplete customization (" + strings.Join(parts, "; ") + ")"
}

// NewID line id generator, replaceable in tests
var NewID = func() string { return uuid.NewString() }

// BuildLine turns a valid selection into a cart line
func BuildLine(p *domain.Product, sel domain.Selection, res pricing.Result) (domain.CartLine, error) {
	if !res.IsFormValid {
		return domain.CartLine{}, &ValidationError{
			MissingGroups:    append([]string{}, res.MissingGroups...),
			FillingShortfall: res.FillingShortfall,
			FillingLayers:    res.FillingLayers,
			SelectedFillings: res.TotalSelectedFillings,
		}
	}
	if sel.Quantity < 1 {
		panic(fmt.Sprintf("cart: quantity %d below 1 for product %s", sel.Quantity, p.ID))
	}

	customizations := make([]domain.LineCustomization, 0, len(p.CustomizationOptions))
	for _, g := range p.ActiveGroups(sel.Customizations) {
		if domain.IsFillingGroup(g.Type) {
			continue
		}
		for _, id := range sel.Customizations[g.Type].IDs() {
			opt, ok := g.Option(id)
			if !ok {
				continue
			}
			delta := opt.Price
			if g.Type == domain.GroupTopper && res.HasFreeTopper {
				delta = decimal.Zero
			}
			customizations = append(customizations, domain.LineCustomization{
				Type:           g.Type,
				Label:          g.Label,
				Value:          opt.Name,
				UnitPriceDelta: delta,
			})
		}
	}

	for _, kind := range []domain.FillingKind{domain.FillingSimple, domain.FillingGourmet} {
		g, ok := p.Group(kind.GroupType())
		if !ok {
			continue
		}
		multiplier := 1
		if kind == domain.FillingGourmet {
			multiplier = res.GourmetFillingMultiplier
		}
		for _, id := range sel.Fillings(kind) {
			opt, ok := g.Option(id)
			if !ok {
				continue
			}
			listed := opt.Price
			customizations = append(customizations, domain.LineCustomization{
				Type:           g.Type,
				Label:          g.Label,
				Value:          opt.Name,
				UnitPriceDelta: pricing.FillingPrice(listed, kind, multiplier),
				ListedPrice:    &listed,
				Multiplier:     multiplier,
			})
		}
	}

	return domain.CartLine{
		LineID:          NewID(),
		Product:         p.Snapshot(),
		Quantity:        sel.Quantity,
		Customizations:  customizations,
		CustomMessage:   sel.CustomMessage,
		UnitPrice:       res.TotalPrice.Div(decimal.NewFromInt(int64(sel.Quantity))),
		HasFreeDelivery: res.HasFreeDelivery,
		HasFreeTopper:   res.HasFreeTopper,
	}, nil
}
