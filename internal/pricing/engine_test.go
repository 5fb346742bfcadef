package pricing

import (
	"testing"

	"github.com/maosdefada/cakeshop-backend/internal/catalog"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(t *testing.T, id string) *domain.Product {
	t.Helper()
	p, err := catalog.MustDefault().Product(id)
	require.NoError(t, err)
	return p
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func assertMoney(t *testing.T, want float64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %v, got %s", want, got)
}

func TestEngine_FirstSizeIsBasePrice(t *testing.T) {
	engine := NewEngine(DefaultRules())
	for _, p := range catalog.MustDefault().Products(catalog.AllCategories) {
		p := p
		size, ok := p.Group(domain.GroupCakeSize)
		if !ok {
			continue
		}
		t.Run(p.Name, func(t *testing.T) {
			sel := domain.NewSelection(&p)
			sel.Quantity = 1
			sel.Customizations[domain.GroupCakeSize] = domain.Single(size.Options[0].ID)

			res := engine.Quote(&p, sel)
			assert.True(t, size.Options[0].Price.Equal(res.UnitPrice), "unit price %s", res.UnitPrice)
		})
	}
}

func TestEngine_FillingLayers(t *testing.T) {
	engine := NewEngine(DefaultRules())
	p := product(t, "1")

	t.Run("unset maps to one", func(t *testing.T) {
		sel := domain.NewSelection(p)
		delete(sel.Customizations, domain.GroupFillingLayers)
		assert.Equal(t, 1, engine.Quote(p, sel).FillingLayers)
	})

	t.Run("one", func(t *testing.T) {
		sel := domain.NewSelection(p)
		sel.Customizations[domain.GroupFillingLayers] = domain.Single("one")
		res := engine.Quote(p, sel)
		assert.Equal(t, 1, res.FillingLayers)
		assert.Equal(t, 1, res.RemainingFillings)
	})

	t.Run("two", func(t *testing.T) {
		sel := domain.NewSelection(p)
		sel.Customizations[domain.GroupFillingLayers] = domain.Single("two")
		sel.SimpleFillings = []string{"brigadeiro"}
		res := engine.Quote(p, sel)
		assert.Equal(t, 2, res.FillingLayers)
		assert.Equal(t, 1, res.TotalSelectedFillings)
		assert.Equal(t, 1, res.RemainingFillings)
	})

	t.Run("product without layer group has a budget of one", func(t *testing.T) {
		piscina := product(t, "6")
		res := engine.Quote(piscina, domain.NewSelection(piscina))
		assert.Equal(t, 1, res.FillingLayers)
	})
}

func TestEngine_RoundCakeEndToEnd(t *testing.T) {
	engine := NewEngine(DefaultRules())
	p := product(t, "1")

	t.Run("one simple filling, quantity two", func(t *testing.T) {
		sel := domain.NewSelection(p)
		sel.SimpleFillings = []string{"brigadeiro"}
		sel.Quantity = 2

		res := engine.Quote(p, sel)
		assertMoney(t, 110, res.UnitPrice)
		assertMoney(t, 220, res.TotalPrice)
		assert.True(t, res.IsFormValid)
	})

	t.Run("two layers with a doubled gourmet filling at 28cm", func(t *testing.T) {
		sel := domain.NewSelection(p)
		sel.Customizations[domain.GroupCakeSize] = domain.Single("28")
		sel.Customizations[domain.GroupFillingLayers] = domain.Single("two")
		sel.SimpleFillings = []string{"4leites"}
		sel.GourmetFillings = []string{"prestigio"}
		sel.Quantity = 3

		res := engine.Quote(p, sel)
		assert.Equal(t, 2, res.GourmetFillingMultiplier)
		// 270 size + 10 second layer + 20 x 2 gourmet
		assertMoney(t, 320, res.UnitPrice)
		assertMoney(t, 960, res.TotalPrice)
		assert.True(t, res.IsFormValid)
	})
}

func TestEngine_GourmetMultiplier(t *testing.T) {
	engine := NewEngine(DefaultRules())

	tests := []struct {
		product string
		size    string
		want    int
	}{
		{"1", "17", 1},
		{"1", "23", 1},
		{"1", "28", 2},
		{"1", "33", 2},
		{"1", "40", 2},
		{"5", "17", 1},
		{"5", "40", 2},
		{"2", "large", 1},
		{"3", "ummetro", 1},
	}
	for _, tt := range tests {
		t.Run(tt.product+"/"+tt.size, func(t *testing.T) {
			p := product(t, tt.product)
			sel := domain.NewSelection(p)
			sel.Customizations[domain.GroupCakeSize] = domain.Single(tt.size)
			sel.GourmetFillings = []string{"ganache"}
			sel.Quantity = 1

			res := engine.Quote(p, sel)
			assert.Equal(t, tt.want, res.GourmetFillingMultiplier)

			size, _ := p.Group(domain.GroupCakeSize)
			opt, _ := size.Option(tt.size)
			assert.True(t, opt.Price.Add(dec(30*float64(tt.want))).Equal(res.UnitPrice))
		})
	}

	t.Run("simple fillings are never multiplied", func(t *testing.T) {
		p := product(t, "1")
		sel := domain.NewSelection(p)
		sel.Customizations[domain.GroupCakeSize] = domain.Single("40")
		sel.SimpleFillings = []string{"brigadeiro"}
		assertMoney(t, 320, engine.Quote(p, sel).UnitPrice)
	})
}

func TestEngine_Perks(t *testing.T) {
	engine := NewEngine(DefaultRules())

	t.Run("tiered cake at three tiers gets free topper and delivery", func(t *testing.T) {
		p := product(t, "4")
		sel := domain.NewSelection(p)
		sel.Customizations[domain.GroupCakeSize] = domain.Single("tresandares")
		sel.Quantity = 1

		for _, topper := range []string{"none", "simple", "3d"} {
			sel.Customizations[domain.GroupTopper] = domain.Single(topper)
			res := engine.Quote(p, sel)
			assert.True(t, res.HasFreeDelivery)
			assert.True(t, res.HasFreeTopper)
			assertMoney(t, 750, res.UnitPrice)
		}
	})

	t.Run("tiered cake at two tiers pays for the topper", func(t *testing.T) {
		p := product(t, "4")
		sel := domain.NewSelection(p)
		sel.Customizations[domain.GroupTopper] = domain.Single("3d")
		sel.Quantity = 1

		res := engine.Quote(p, sel)
		assert.False(t, res.HasFreeDelivery)
		assert.False(t, res.HasFreeTopper)
		assertMoney(t, 485, res.UnitPrice)
	})

	t.Run("aquarium always ships free but has no free topper", func(t *testing.T) {
		p := product(t, "9")
		res := engine.Quote(p, domain.NewSelection(p))
		assert.True(t, res.HasFreeDelivery)
		assert.False(t, res.HasFreeTopper)
		assertMoney(t, 750, res.UnitPrice)
	})

	t.Run("others get nothing", func(t *testing.T) {
		p := product(t, "2")
		res := engine.Quote(p, domain.NewSelection(p))
		assert.False(t, res.HasFreeDelivery)
		assert.False(t, res.HasFreeTopper)
	})
}

func TestEngine_SelectionReplaces(t *testing.T) {
	engine := NewEngine(DefaultRules())
	p := product(t, "8")

	t.Run("simple cupcakes", func(t *testing.T) {
		res := engine.Quote(p, domain.NewSelection(p))
		assertMoney(t, 3.5, res.UnitPrice)
		assertMoney(t, 35, res.TotalPrice)
		assert.True(t, res.IsFormValid)
	})

	t.Run("filled cupcakes require a filling", func(t *testing.T) {
		sel := domain.NewSelection(p)
		sel.Customizations["cakeType"] = domain.Single("recheado")

		res := engine.Quote(p, sel)
		assertMoney(t, 4, res.UnitPrice)
		assertMoney(t, 40, res.TotalPrice)
		assert.False(t, res.IsFormValid)
		assert.Equal(t, []string{"Escolha o Recheio"}, res.MissingGroups)

		sel.Customizations["filling"] = domain.Single("brigadeiro")
		res = engine.Quote(p, sel)
		assert.True(t, res.IsFormValid)
		assertMoney(t, 4, res.UnitPrice)
	})
}

func TestEngine_TieredQuantityBase(t *testing.T) {
	engine := NewEngine(DefaultRules())
	p := product(t, "11")

	sel := domain.NewSelection(p)
	assertMoney(t, 70, engine.Quote(p, sel).UnitPrice)

	sel.Customizations["quantidade"] = domain.Single("100")
	sel.Customizations["flavors"] = domain.Single("ninhonutella")
	assertMoney(t, 160, engine.Quote(p, sel).UnitPrice)

	t.Run("missing tier falls back to the product price", func(t *testing.T) {
		sel := domain.NewSelection(p)
		delete(sel.Customizations, "quantidade")
		res := engine.Quote(p, sel)
		assertMoney(t, 70, res.UnitPrice)
		assert.Equal(t, []string{"Quantidade"}, res.MissingGroups)
	})
}

func TestEngine_Validity(t *testing.T) {
	engine := NewEngine(DefaultRules())
	p := product(t, "1")

	sel := domain.NewSelection(p)
	res := engine.Quote(p, sel)
	assert.False(t, res.IsFormValid)
	assert.Equal(t, 1, res.FillingShortfall)
	assert.Empty(t, res.MissingGroups)

	delete(sel.Customizations, domain.GroupTopper)
	res = engine.Quote(p, sel)
	assert.Equal(t, []string{"Topper"}, res.MissingGroups)

	sel.Customizations[domain.GroupTopper] = domain.Single("none")
	sel.SimpleFillings = []string{"chocolate"}
	res = engine.Quote(p, sel)
	assert.True(t, res.IsFormValid)
	assert.Equal(t, 0, res.FillingShortfall)

	t.Run("empty multiple selection on a required group is missing", func(t *testing.T) {
		prod := &domain.Product{
			ID:        "x",
			BasePrice: dec(5),
			CustomizationOptions: []domain.OptionGroup{{
				Type: "extras", Label: "Extras", Required: true, Multiple: true,
				Options: []domain.ProductOption{{ID: "a", Name: "A", Price: dec(1)}},
			}},
		}
		sel := domain.NewSelection(prod)
		assert.False(t, engine.Quote(prod, sel).IsFormValid)

		sel.Customizations["extras"] = domain.Multiple("a")
		res := engine.Quote(prod, sel)
		assert.True(t, res.IsFormValid)
		assertMoney(t, 6, res.UnitPrice)
	})
}

func TestEngine_AdditionalsSum(t *testing.T) {
	engine := NewEngine(DefaultRules())
	p := product(t, "2")

	sel := domain.NewSelection(p)
	sel.Customizations["additional"] = domain.Multiple("perolas", "morangos")
	sel.Customizations[domain.GroupTopper] = domain.Single("simple")
	sel.Quantity = 1

	// 200 small + 10 + 20 + 20 topper
	assertMoney(t, 250, engine.Quote(p, sel).UnitPrice)
}

func TestRules_Validate(t *testing.T) {
	c := catalog.MustDefault()

	t.Run("default rules match the catalog", func(t *testing.T) {
		assert.NoError(t, DefaultRules().Validate(c))
	})

	t.Run("unknown product", func(t *testing.T) {
		r := DefaultRules()
		r.Perks["42"] = Perk{FreeDelivery: true}
		assert.ErrorIs(t, r.Validate(c), ErrUnknownRuleTarget)
	})

	t.Run("unknown size", func(t *testing.T) {
		r := DefaultRules()
		r.GourmetMultipliers["2"] = map[string]int{"gigante": 2}
		assert.ErrorIs(t, r.Validate(c), ErrUnknownRuleTarget)
	})

	t.Run("perk size on product without sizes", func(t *testing.T) {
		r := DefaultRules()
		r.Perks["9"] = Perk{SizeID: "tresandares", FreeDelivery: true}
		assert.ErrorIs(t, r.Validate(c), ErrUnknownRuleTarget)
	})
}

func TestEngine_BaseFollowsBaseGroupType(t *testing.T) {
	engine := NewEngine(DefaultRules())

	tests := []struct {
		product string
		group   string
	}{
		{"1", domain.GroupCakeSize},
		{"8", "cakeType"},
		{"11", "quantidade"},
	}
	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			p := product(t, tt.product)
			require.Equal(t, tt.group, p.BaseGroupType())
			g, ok := p.Group(tt.group)
			require.True(t, ok)

			// the base group never counts as an additional
			for _, opt := range g.Options {
				sel := domain.NewSelection(p)
				sel.Quantity = 1
				sel.Customizations[tt.group] = domain.Single(opt.ID)
				assert.True(t, opt.Price.Equal(engine.basePrice(p, sel)), "option %s", opt.ID)
			}
		})
	}

	t.Run("unknown size falls back to the first size", func(t *testing.T) {
		p := product(t, "1")
		sel := domain.NewSelection(p)
		sel.Customizations[domain.GroupCakeSize] = domain.Single("99")
		assert.True(t, p.EffectiveBasePrice().Equal(engine.basePrice(p, sel)))
	})
}
