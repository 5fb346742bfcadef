// Package pricing derives price, filling budget, perks and validity from a selection.
package pricing

import (
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Result derived values of one (product, selection) pair
type Result struct {
	UnitPrice                decimal.Decimal `json:"unit_price"`
	TotalPrice               decimal.Decimal `json:"total_price"`
	FillingLayers            int             `json:"filling_layers"`
	TotalSelectedFillings    int             `json:"total_selected_fillings"`
	RemainingFillings        int             `json:"remaining_fillings"`
	IsFormValid              bool            `json:"is_form_valid"`
	HasFreeDelivery          bool            `json:"has_free_delivery"`
	HasFreeTopper            bool            `json:"has_free_topper"`
	GourmetFillingMultiplier int             `json:"gourmet_filling_multiplier"`
	MissingGroups            []string        `json:"missing_groups"`
	FillingShortfall         int             `json:"filling_shortfall"`
}

// Engine pricing and validity engine
type Engine struct {
	rules Rules
}

// NewEngine creates an engine backed by the given rule tables
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the engine's rule tables
func (e *Engine) Rules() Rules {
	return e.rules
}

// FillingLayers filling budget of a selection
func FillingLayers(p *domain.Product, sel domain.Selection) int {
	if _, ok := p.Group(domain.GroupFillingLayers); !ok {
		return 1
	}
	id, ok := sel.Customizations[domain.GroupFillingLayers].Single()
	if !ok || id == domain.FillingLayersOne {
		return 1
	}
	return 2
}

// Quote prices a selection. Pure: no state is read or written besides the arguments.
func (e *Engine) Quote(p *domain.Product, sel domain.Selection) Result {
	res := Result{
		FillingLayers:         FillingLayers(p, sel),
		TotalSelectedFillings: sel.TotalFillings(),
		MissingGroups:         []string{},
	}
	if rem := res.FillingLayers - res.TotalSelectedFillings; rem > 0 {
		res.RemainingFillings = rem
	}

	sizeID := e.selectedSize(p, sel)
	res.HasFreeDelivery, res.HasFreeTopper = e.rules.perk(p.ID, sizeID)
	res.GourmetFillingMultiplier = e.rules.multiplier(p.ID, sizeID)

	res.UnitPrice = e.unitPrice(p, sel, res)
	res.TotalPrice = res.UnitPrice.Mul(decimal.NewFromInt(int64(sel.Quantity)))

	res.MissingGroups, res.FillingShortfall = missing(p, sel, res)
	res.IsFormValid = len(res.MissingGroups) == 0 && res.FillingShortfall == 0

	return res
}

// selectedSize resolved cakeSize id; the first option when unset or unknown
func (e *Engine) selectedSize(p *domain.Product, sel domain.Selection) string {
	g, ok := p.Group(domain.GroupCakeSize)
	if !ok {
		return ""
	}
	if id, ok := sel.Customizations[domain.GroupCakeSize].Single(); ok {
		if _, known := g.Option(id); known {
			return id
		}
	}
	return g.Options[0].ID
}

func (e *Engine) unitPrice(p *domain.Product, sel domain.Selection, res Result) decimal.Decimal {
	base := e.basePrice(p, sel)
	if p.Mode() == domain.PricingSelectionReplaces {
		return base
	}

	baseGroup := p.BaseGroupType()
	additive := decimal.Zero
	for _, g := range p.ActiveGroups(sel.Customizations) {
		if g.Type == baseGroup || domain.IsFillingGroup(g.Type) {
			continue
		}
		if g.Type == domain.GroupTopper && res.HasFreeTopper {
			continue
		}
		for _, id := range sel.Customizations[g.Type].IDs() {
			if opt, ok := g.Option(id); ok {
				additive = additive.Add(opt.Price)
			}
		}
	}

	return base.Add(additive).Add(fillingCost(p, sel, res.GourmetFillingMultiplier))
}

// basePrice selected price of the base group. An unset or unknown size
// falls back to the first size, anything else to the catalog price.
func (e *Engine) basePrice(p *domain.Product, sel domain.Selection) decimal.Decimal {
	fallback := p.EffectiveBasePrice()
	if p.Mode() == domain.PricingSelectionReplaces {
		fallback = p.BasePrice
	}
	return selectedPrice(p, p.BaseGroupType(), sel, fallback)
}

// selectedPrice price of the single selection in a group, or fallback
func selectedPrice(p *domain.Product, groupType string, sel domain.Selection, fallback decimal.Decimal) decimal.Decimal {
	g, ok := p.Group(groupType)
	if !ok {
		return fallback
	}
	id, ok := sel.Customizations[groupType].Single()
	if !ok {
		return fallback
	}
	opt, ok := g.Option(id)
	if !ok {
		return fallback
	}
	return opt.Price
}

// FillingPrice price of one filling under the multiplier
func FillingPrice(listed decimal.Decimal, kind domain.FillingKind, multiplier int) decimal.Decimal {
	if kind == domain.FillingGourmet {
		return listed.Mul(decimal.NewFromInt(int64(multiplier)))
	}
	return listed
}

func fillingCost(p *domain.Product, sel domain.Selection, multiplier int) decimal.Decimal {
	total := decimal.Zero
	for _, kind := range []domain.FillingKind{domain.FillingSimple, domain.FillingGourmet} {
		g, ok := p.Group(kind.GroupType())
		if !ok {
			continue
		}
		for _, id := range sel.Fillings(kind) {
			if opt, ok := g.Option(id); ok {
				total = total.Add(FillingPrice(opt.Price, kind, multiplier))
			}
		}
	}
	return total
}

// missing labels of active required non-filling groups without a selection, and the filling shortfall
func missing(p *domain.Product, sel domain.Selection, res Result) ([]string, int) {
	labels := []string{}
	for _, g := range p.ActiveGroups(sel.Customizations) {
		if !g.Required || domain.IsFillingGroup(g.Type) {
			continue
		}
		if sel.Customizations[g.Type].IsEmpty() {
			labels = append(labels, g.Label)
		}
	}

	shortfall := 0
	if p.HasFillingGroups() && res.TotalSelectedFillings < res.FillingLayers {
		shortfall = res.FillingLayers - res.TotalSelectedFillings
	}
	return labels, shortfall
}
