package pricing

import (
	"errors"
	"fmt"

	"github.com/maosdefada/cakeshop-backend/internal/domain"
)

// ErrUnknownRuleTarget a rule names a product or size the catalog does not have
var ErrUnknownRuleTarget = errors.New("pricing rule references unknown catalog entry")

// Perk free-of-charge benefits unlocked by a product, optionally only at one size
type Perk struct {
	// SizeID when set, the perk holds only while cakeSize is this option
	SizeID       string
	FreeDelivery bool
	FreeTopper   bool
}

// Rules per-product business rules that the catalog schema cannot express
type Rules struct {
	// Perks keyed by product id
	Perks map[string]Perk
	// GourmetMultipliers product id -> cakeSize id -> multiplier applied to gourmet fillings
	GourmetMultipliers map[string]map[string]int
}

// DefaultRules the bakery's rule tables
func DefaultRules() Rules {
	large := map[string]int{"28": 2, "33": 2, "40": 2}
	return Rules{
		Perks: map[string]Perk{
			// Bolo de Andar, three tiers
			"4": {SizeID: "tresandares", FreeDelivery: true, FreeTopper: true},
			// Bolo Aquário
			"9": {FreeDelivery: true},
		},
		GourmetMultipliers: map[string]map[string]int{
			"1": large,
			"5": large,
		},
	}
}

// perk resolves the perk flags for a product under the current size
func (r Rules) perk(productID, sizeID string) (freeDelivery, freeTopper bool) {
	p, ok := r.Perks[productID]
	if !ok {
		return false, false
	}
	if p.SizeID != "" && p.SizeID != sizeID {
		return false, false
	}
	return p.FreeDelivery, p.FreeTopper
}

// multiplier gourmet filling multiplier for a product at a size, 1 when unlisted
func (r Rules) multiplier(productID, sizeID string) int {
	if m, ok := r.GourmetMultipliers[productID][sizeID]; ok && m > 0 {
		return m
	}
	return 1
}

// ProductLookup catalog capability needed to validate rules
type ProductLookup interface {
	Product(id string) (*domain.Product, error)
}

// Validate fails when a rule names a product or cakeSize option missing from the catalog
func (r Rules) Validate(catalog ProductLookup) error {
	checkSize := func(productID, sizeID string) error {
		p, err := catalog.Product(productID)
		if err != nil {
			return fmt.Errorf("%w: product %q", ErrUnknownRuleTarget, productID)
		}
		if sizeID == "" {
			return nil
		}
		g, ok := p.Group(domain.GroupCakeSize)
		if !ok {
			return fmt.Errorf("%w: product %q has no %s group", ErrUnknownRuleTarget, productID, domain.GroupCakeSize)
		}
		if _, ok := g.Option(sizeID); !ok {
			return fmt.Errorf("%w: product %q has no size %q", ErrUnknownRuleTarget, productID, sizeID)
		}
		return nil
	}

	for id, perk := range r.Perks {
		if err := checkSize(id, perk.SizeID); err != nil {
			return err
		}
	}
	for id, sizes := range r.GourmetMultipliers {
		if err := checkSize(id, ""); err != nil {
			return err
		}
		for size := range sizes {
			if err := checkSize(id, size); err != nil {
				return err
			}
		}
	}
	return nil
}
