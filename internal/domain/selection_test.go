package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProduct() *Product {
	return &Product{
		ID:        "x",
		Name:      "Bolo Teste",
		BasePrice: decimal.NewFromInt(50),
		CustomizationOptions: []OptionGroup{
			{Type: GroupCakeSize, Label: "Tamanho", Required: true, Options: []ProductOption{
				{ID: "17", Price: decimal.NewFromInt(110)},
				{ID: "23", Price: decimal.NewFromInt(145)},
			}},
			{Type: "extras", Label: "Extras", Multiple: true, Options: []ProductOption{
				{ID: "gold", Price: decimal.NewFromInt(15)},
			}},
			{Type: "cover", Label: "Cobertura", Required: false, Options: []ProductOption{
				{ID: "chantilly"},
			}},
			{Type: "flavor", Label: "Sabor", Required: true,
				DependsOn: &Dependency{Type: "cover", Value: "chantilly"},
				Options:   []ProductOption{{ID: "morango"}}},
			{Type: GroupSimpleFilling, Label: "Recheio", Multiple: true, Options: []ProductOption{
				{ID: "brigadeiro"},
			}},
		},
		QuantityConfig: &QuantityConfig{MinQuantity: 2, MaxQuantity: 8},
	}
}

func TestChoice_JSON(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		data, err := json.Marshal(Single("28"))
		require.NoError(t, err)
		assert.JSONEq(t, `"28"`, string(data))
	})

	t.Run("multiple keeps an empty list", func(t *testing.T) {
		data, err := json.Marshal(Multiple())
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("map round trip preserves the variant", func(t *testing.T) {
		in := map[string]Choice{"size": Single("17"), "extras": Multiple("a", "b")}
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out map[string]Choice
		require.NoError(t, json.Unmarshal(data, &out))
		assert.False(t, out["size"].IsMultiple())
		assert.True(t, out["extras"].IsMultiple())
		assert.Equal(t, []string{"a", "b"}, out["extras"].IDs())
	})

	t.Run("null and empty string are an empty single", func(t *testing.T) {
		var c Choice
		require.NoError(t, json.Unmarshal([]byte(`null`), &c))
		assert.True(t, c.IsEmpty())
		require.NoError(t, json.Unmarshal([]byte(`""`), &c))
		assert.True(t, c.IsEmpty())
		assert.False(t, c.IsMultiple())
	})

	t.Run("rejects other shapes", func(t *testing.T) {
		for _, raw := range []string{`12`, `{"a":1}`, `[1,2]`, `true`} {
			var c Choice
			assert.ErrorIs(t, json.Unmarshal([]byte(raw), &c), ErrInvalidChoice, raw)
		}
	})
}

func TestChoice_WithWithout(t *testing.T) {
	c := Multiple("a")
	c = c.With("b").With("a")
	assert.Equal(t, []string{"a", "b"}, c.IDs())

	c = c.Without("a")
	assert.Equal(t, []string{"b"}, c.IDs())
	assert.True(t, c.IsMultiple())

	id, ok := Single("z").Single()
	assert.True(t, ok)
	assert.Equal(t, "z", id)
	_, ok = c.Single()
	assert.False(t, ok)
}

func TestNewSelection(t *testing.T) {
	p := sampleProduct()
	sel := NewSelection(p)

	assert.Equal(t, 2, sel.Quantity, "defaults to the minimum")
	assert.Equal(t, Single("17"), sel.Customizations[GroupCakeSize])
	assert.True(t, sel.Customizations["extras"].IsMultiple())
	assert.True(t, sel.Customizations["extras"].IsEmpty())

	_, hasCover := sel.Customizations["cover"]
	assert.False(t, hasCover, "optional single groups start unset")
	_, hasFlavor := sel.Customizations["flavor"]
	assert.False(t, hasFlavor, "dependent groups start unset")
	_, hasFilling := sel.Customizations[GroupSimpleFilling]
	assert.False(t, hasFilling, "fillings live in their own lists")

	assert.Empty(t, sel.SimpleFillings)
	assert.NotNil(t, sel.GourmetFillings)
}

func TestSelection_Clone(t *testing.T) {
	sel := NewSelection(sampleProduct())
	sel.SimpleFillings = []string{"brigadeiro"}
	sel.Customizations["extras"] = Multiple("gold")

	cp := sel.Clone()
	cp.SimpleFillings[0] = "ninho"
	cp.Customizations["extras"] = cp.Customizations["extras"].Without("gold")

	assert.Equal(t, []string{"brigadeiro"}, sel.SimpleFillings)
	assert.Equal(t, []string{"gold"}, sel.Customizations["extras"].IDs())
}

func TestProduct_IsGroupActive(t *testing.T) {
	p := sampleProduct()
	assert.True(t, p.IsGroupActive(GroupCakeSize, nil))
	assert.False(t, p.IsGroupActive("flavor", map[string]Choice{}))
	assert.True(t, p.IsGroupActive("flavor", map[string]Choice{"cover": Single("chantilly")}))
	assert.False(t, p.IsGroupActive("unknown", nil))
}

func TestProduct_Quantity(t *testing.T) {
	p := sampleProduct()
	assert.Equal(t, QuantityConfig{MinQuantity: 2, MaxQuantity: 8, DefaultQuantity: 2}, p.Quantity())

	p.QuantityConfig = nil
	assert.Equal(t, QuantityConfig{MinQuantity: 1, MaxQuantity: DefaultMaxQuantity, DefaultQuantity: 1}, p.Quantity())
}

func TestSelection_FillingsOnValue(t *testing.T) {
	build := func() Selection {
		return Selection{SimpleFillings: []string{"brigadeiro"}, GourmetFillings: []string{"nozes", "pistache"}}
	}

	assert.Equal(t, 3, build().TotalFillings())
	assert.Equal(t, []string{"brigadeiro"}, build().Fillings(FillingSimple))
	assert.Equal(t, []string{"nozes", "pistache"}, build().Fillings(FillingGourmet))
	assert.Zero(t, NewSelection(sampleProduct()).TotalFillings())
}
