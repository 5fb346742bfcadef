package catalog

import (
	"fmt"

	"github.com/maosdefada/cakeshop-backend/internal/domain"
)

// Validate checks the structural invariants of a product list
func Validate(products []domain.Product) error {
	seen := make(map[string]struct{}, len(products))
	for i := range products {
		p := &products[i]
		if p.ID == "" {
			return fmt.Errorf("%w: product at index %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate product id %q", ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = struct{}{}

		if err := validateProduct(p); err != nil {
			return fmt.Errorf("%w: product %q: %v", ErrInvalidCatalog, p.ID, err)
		}
	}
	return nil
}

func validateProduct(p *domain.Product) error {
	if p.BasePrice.IsNegative() {
		return fmt.Errorf("negative price %s", p.BasePrice)
	}

	groups := make(map[string]*domain.OptionGroup, len(p.CustomizationOptions))
	for i := range p.CustomizationOptions {
		g := &p.CustomizationOptions[i]
		if g.Type == "" {
			return fmt.Errorf("group at index %d has no type", i)
		}
		if _, dup := groups[g.Type]; dup {
			return fmt.Errorf("duplicate group type %q", g.Type)
		}
		groups[g.Type] = g

		if len(g.Options) == 0 {
			return fmt.Errorf("group %q has no options", g.Type)
		}
		ids := make(map[string]struct{}, len(g.Options))
		for _, o := range g.Options {
			if o.ID == "" {
				return fmt.Errorf("group %q has an option without id", g.Type)
			}
			if _, dup := ids[o.ID]; dup {
				return fmt.Errorf("group %q: duplicate option id %q", g.Type, o.ID)
			}
			ids[o.ID] = struct{}{}
		}
	}

	for _, g := range groups {
		if g.DependsOn == nil {
			continue
		}
		target, ok := groups[g.DependsOn.Type]
		if !ok {
			return fmt.Errorf("group %q depends on unknown group %q", g.Type, g.DependsOn.Type)
		}
		if target.Multiple {
			return fmt.Errorf("group %q depends on multiple-choice group %q", g.Type, target.Type)
		}
		if _, ok := target.Option(g.DependsOn.Value); !ok {
			return fmt.Errorf("group %q depends on unknown option %q of %q", g.Type, g.DependsOn.Value, target.Type)
		}
	}
	if err := checkCycles(groups); err != nil {
		return err
	}

	if err := validateQuantity(p.QuantityConfig); err != nil {
		return err
	}

	switch p.Mode() {
	case domain.PricingAdditive:
		if p.BaseGroup != "" {
			if _, ok := groups[p.BaseGroup]; !ok {
				return fmt.Errorf("unknown base group %q", p.BaseGroup)
			}
			if _, sized := groups[domain.GroupCakeSize]; sized && p.BaseGroup != domain.GroupCakeSize {
				return fmt.Errorf("base group %q conflicts with %s", p.BaseGroup, domain.GroupCakeSize)
			}
		}
	case domain.PricingSelectionReplaces:
		g, ok := groups[p.BaseGroup]
		if !ok {
			return fmt.Errorf("pricing mode %s needs a base group, got %q", p.PricingMode, p.BaseGroup)
		}
		if g.Multiple || !g.Required || g.DependsOn != nil {
			return fmt.Errorf("base group %q must be a required unconditional single choice", g.Type)
		}
	default:
		return fmt.Errorf("unknown pricing mode %q", p.PricingMode)
	}

	return nil
}

func validateQuantity(q *domain.QuantityConfig) error {
	if q == nil {
		return nil
	}
	if q.MinQuantity < 1 {
		return fmt.Errorf("minQuantity must be at least 1, got %d", q.MinQuantity)
	}
	maxQ := q.MaxQuantity
	if maxQ == 0 {
		maxQ = domain.DefaultMaxQuantity
	}
	def := q.DefaultQuantity
	if def == 0 {
		def = q.MinQuantity
	}
	if q.MinQuantity > def || def > maxQ {
		return fmt.Errorf("quantity bounds violate min <= default <= max (%d, %d, %d)", q.MinQuantity, def, maxQ)
	}
	return nil
}

// checkCycles walks the dependsOn edges depth-first
func checkCycles(groups map[string]*domain.OptionGroup) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(groups))

	var visit func(t string) error
	visit = func(t string) error {
		switch state[t] {
		case visiting:
			return fmt.Errorf("dependency cycle through group %q", t)
		case done:
			return nil
		}
		state[t] = visiting
		if g := groups[t]; g != nil && g.DependsOn != nil {
			if err := visit(g.DependsOn.Type); err != nil {
				return err
			}
		}
		state[t] = done
		return nil
	}

	for t := range groups {
		if err := visit(t); err != nil {
			return err
		}
	}
	return nil
}
