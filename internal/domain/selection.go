package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrInvalidChoice a choice payload is neither a string nor a list of strings
var ErrInvalidChoice = errors.New("choice must be an option id or a list of option ids")

// Choice tagged selection value of one option group: Single(id) or Multiple(ids).
// The zero value is an empty single choice.
type Choice struct {
	multiple bool
	ids      []string
}

// Single choice holding one option id
func Single(id string) Choice {
	if id == "" {
		return Choice{}
	}
	return Choice{ids: []string{id}}
}

// Multiple choice holding zero or more option ids
func Multiple(ids ...string) Choice {
	out := make([]string, len(ids))
	copy(out, ids)
	return Choice{multiple: true, ids: out}
}

// IsMultiple reports the variant
func (c Choice) IsMultiple() bool { return c.multiple }

// Single returns the id of a single choice
func (c Choice) Single() (string, bool) {
	if c.multiple || len(c.ids) == 0 {
		return "", false
	}
	return c.ids[0], true
}

// IDs returns a copy of every selected id
func (c Choice) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// IsEmpty true when nothing is selected
func (c Choice) IsEmpty() bool { return len(c.ids) == 0 }

// Contains reports whether id is selected
func (c Choice) Contains(id string) bool {
	for _, v := range c.ids {
		if v == id {
			return true
		}
	}
	return false
}

// With returns a multiple choice that also holds id
func (c Choice) With(id string) Choice {
	if c.Contains(id) {
		return Multiple(c.ids...)
	}
	return Multiple(append(c.IDs(), id)...)
}

// Without returns a multiple choice that no longer holds id
func (c Choice) Without(id string) Choice {
	kept := make([]string, 0, len(c.ids))
	for _, v := range c.ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return Multiple(kept...)
}

// MarshalJSON single → "id", multiple → ["a","b"]
func (c Choice) MarshalJSON() ([]byte, error) {
	if c.multiple {
		return json.Marshal(c.IDs())
	}
	id, _ := c.Single()
	return json.Marshal(id)
}

// UnmarshalJSON accepts a string or an array of strings
func (c *Choice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*c = Choice{}
		return nil
	case data[0] == '[':
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return ErrInvalidChoice
		}
		*c = Multiple(ids...)
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return ErrInvalidChoice
		}
		*c = Single(id)
		return nil
	default:
		return ErrInvalidChoice
	}
}

// FillingKind which filling list a filling belongs to
type FillingKind string

const (
	FillingSimple  FillingKind = "simple"
	FillingGourmet FillingKind = "gourmet"
)

// GroupType option group backing the filling kind
func (k FillingKind) GroupType() string {
	if k == FillingGourmet {
		return GroupGourmetFilling
	}
	return GroupSimpleFilling
}

// Valid reports whether the kind is known
func (k FillingKind) Valid() bool {
	return k == FillingSimple || k == FillingGourmet
}

// Selection in-progress customization of one product instance
type Selection struct {
	Customizations  map[string]Choice `json:"customizations"`
	SimpleFillings  []string          `json:"simple_fillings"`
	GourmetFillings []string          `json:"gourmet_fillings"`
	CustomMessage   string            `json:"custom_message"`
	Quantity        int               `json:"quantity"`
}

// NewSelection initial selection for a product
func NewSelection(p *Product) Selection {
	sel := Selection{
		Customizations:  make(map[string]Choice),
		SimpleFillings:  []string{},
		GourmetFillings: []string{},
		Quantity:        p.Quantity().DefaultQuantity,
	}

	for i := range p.CustomizationOptions {
		g := &p.CustomizationOptions[i]
		if !g.IsUnconditional() || IsFillingGroup(g.Type) {
			continue
		}
		switch {
		case g.Multiple:
			sel.Customizations[g.Type] = Multiple()
		case g.Required && len(g.Options) > 0:
			sel.Customizations[g.Type] = Single(g.Options[0].ID)
		}
	}

	return sel
}

// Fillings returns the list for the given kind
func (s Selection) Fillings(kind FillingKind) []string {
	if kind == FillingGourmet {
		return s.GourmetFillings
	}
	return s.SimpleFillings
}

// TotalFillings simple + gourmet selections
func (s Selection) TotalFillings() int {
	return len(s.SimpleFillings) + len(s.GourmetFillings)
}

// ResetFillings clears both filling lists
func (s *Selection) ResetFillings() {
	s.SimpleFillings = []string{}
	s.GourmetFillings = []string{}
}

// Clone deep copy
func (s Selection) Clone() Selection {
	out := Selection{
		Customizations:  make(map[string]Choice, len(s.Customizations)),
		SimpleFillings:  append([]string{}, s.SimpleFillings...),
		GourmetFillings: append([]string{}, s.GourmetFillings...),
		CustomMessage:   s.CustomMessage,
		Quantity:        s.Quantity,
	}
	for k, v := range s.Customizations {
		if v.IsMultiple() {
			out.Customizations[k] = Multiple(v.ids...)
		} else {
			out.Customizations[k] = v
		}
	}
	return out
}
