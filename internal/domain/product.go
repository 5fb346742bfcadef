package domain

import (
	"github.com/shopspring/decimal"
)

// Well-known option group types
const (
	GroupCakeSize       = "cakeSize"
	GroupFillingLayers  = "fillingLayers"
	GroupSimpleFilling  = "simpleFilling"
	GroupGourmetFilling = "gourmetFilling"
	GroupTopper         = "topper"
)

// FillingLayersOne option id that maps to a single filling layer
const FillingLayersOne = "one"

// DefaultMaxQuantity upper bound used when a product does not declare one
const DefaultMaxQuantity = 100

// PricingMode how a product's unit price is composed
type PricingMode string

const (
	// PricingAdditive base price plus every active option delta
	PricingAdditive PricingMode = "additive"
	// PricingSelectionReplaces the selected option of the base group is the whole price
	PricingSelectionReplaces PricingMode = "selection_replaces"
)

// ProductOption a single choice inside an option group
type ProductOption struct {
	ID    string          `yaml:"id" json:"id"`
	Name  string          `yaml:"name" json:"name"`
	Price decimal.Decimal `yaml:"price" json:"price"`
}

// Dependency makes a group active only while another group holds a given option
type Dependency struct {
	Type  string `yaml:"type" json:"type"`
	Value string `yaml:"value" json:"value"`
}

// OptionGroup customization option group of a product
type OptionGroup struct {
	Type      string          `yaml:"type" json:"type"`
	Label     string          `yaml:"label" json:"label"`
	Required  bool            `yaml:"required" json:"required"`
	Multiple  bool            `yaml:"multiple" json:"multiple"`
	Options   []ProductOption `yaml:"options" json:"options"`
	DependsOn *Dependency     `yaml:"dependsOn,omitempty" json:"depends_on,omitempty"`
}

// QuantityConfig per-product quantity bounds
type QuantityConfig struct {
	MinQuantity     int `yaml:"minQuantity" json:"min_quantity"`
	MaxQuantity     int `yaml:"maxQuantity" json:"max_quantity"`
	DefaultQuantity int `yaml:"defaultQuantity" json:"default_quantity"`
}

// Product catalog entry
type Product struct {
	ID                   string          `yaml:"id" json:"id"`
	Name                 string          `yaml:"name" json:"name"`
	BasePrice            decimal.Decimal `yaml:"price" json:"price"`
	Category             string          `yaml:"category" json:"category"`
	Description          string          `yaml:"description" json:"description"`
	ImageURL             string          `yaml:"imageUrl" json:"image_url"`
	Featured             bool            `yaml:"featured" json:"featured"`
	CustomizationOptions []OptionGroup   `yaml:"customizationOptions" json:"customization_options"`
	QuantityConfig       *QuantityConfig `yaml:"quantityConfig,omitempty" json:"quantity_config,omitempty"`
	PricingMode          PricingMode     `yaml:"pricingMode,omitempty" json:"pricing_mode"`
	BaseGroup            string          `yaml:"baseGroup,omitempty" json:"base_group,omitempty"`
}

// IsFillingGroup reports whether the group type belongs to the filling budget
func IsFillingGroup(groupType string) bool {
	return groupType == GroupSimpleFilling || groupType == GroupGourmetFilling
}

// Group returns the option group with the given type
func (p *Product) Group(groupType string) (*OptionGroup, bool) {
	for i := range p.CustomizationOptions {
		if p.CustomizationOptions[i].Type == groupType {
			return &p.CustomizationOptions[i], true
		}
	}
	return nil, false
}

// Option returns the option with the given id
func (g *OptionGroup) Option(id string) (*ProductOption, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Options {
		if g.Options[i].ID == id {
			return &g.Options[i], true
		}
	}
	return nil, false
}

// IsUnconditional reports whether the group has no dependency
func (g *OptionGroup) IsUnconditional() bool {
	return g.DependsOn == nil
}

// IsGroupActive true iff the group has no dependency or the dependency holds.
// Unknown group types are never active.
func (p *Product) IsGroupActive(groupType string, customizations map[string]Choice) bool {
	g, ok := p.Group(groupType)
	if !ok {
		return false
	}
	return g.isActive(customizations)
}

func (g *OptionGroup) isActive(customizations map[string]Choice) bool {
	if g.DependsOn == nil {
		return true
	}
	id, ok := customizations[g.DependsOn.Type].Single()
	return ok && id == g.DependsOn.Value
}

// ActiveGroups groups whose dependency currently holds, in catalog order
func (p *Product) ActiveGroups(customizations map[string]Choice) []*OptionGroup {
	groups := make([]*OptionGroup, 0, len(p.CustomizationOptions))
	for i := range p.CustomizationOptions {
		g := &p.CustomizationOptions[i]
		if g.isActive(customizations) {
			groups = append(groups, g)
		}
	}
	return groups
}

// HasFillingGroups reports whether any filling group is declared
func (p *Product) HasFillingGroups() bool {
	_, simple := p.Group(GroupSimpleFilling)
	_, gourmet := p.Group(GroupGourmetFilling)
	return simple || gourmet
}

// Mode returns the pricing mode, defaulting to additive
func (p *Product) Mode() PricingMode {
	if p.PricingMode == "" {
		return PricingAdditive
	}
	return p.PricingMode
}

// BaseGroupType the group whose selected price defines the base price.
// cakeSize wins when present; otherwise the declared base group (may be empty).
func (p *Product) BaseGroupType() string {
	if p.Mode() == PricingSelectionReplaces {
		return p.BaseGroup
	}
	if _, ok := p.Group(GroupCakeSize); ok {
		return GroupCakeSize
	}
	return p.BaseGroup
}

// EffectiveBasePrice first cakeSize option price, else the catalog price
func (p *Product) EffectiveBasePrice() decimal.Decimal {
	if g, ok := p.Group(GroupCakeSize); ok && len(g.Options) > 0 {
		return g.Options[0].Price
	}
	return p.BasePrice
}

// Quantity returns the effective quantity bounds with defaults applied
func (p *Product) Quantity() QuantityConfig {
	q := QuantityConfig{MinQuantity: 1, MaxQuantity: DefaultMaxQuantity}
	if p.QuantityConfig != nil {
		if p.QuantityConfig.MinQuantity > 0 {
			q.MinQuantity = p.QuantityConfig.MinQuantity
		}
		if p.QuantityConfig.MaxQuantity > 0 {
			q.MaxQuantity = p.QuantityConfig.MaxQuantity
		}
		q.DefaultQuantity = p.QuantityConfig.DefaultQuantity
	}
	if q.DefaultQuantity == 0 {
		q.DefaultQuantity = q.MinQuantity
	}
	return q
}

// Snapshot immutable product copy stored on a cart line
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		BasePrice:   p.BasePrice,
		Category:    p.Category,
		Description: p.Description,
		ImageURL:    p.ImageURL,
	}
}
