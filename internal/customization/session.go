// Package customization holds the per-product customization session and its mutations.
package customization

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/pricing"
)

// MaxMessageLength upper bound of the cake message, in characters
const MaxMessageLength = 200

var (
	ErrUnknownGroup       = errors.New("unknown option group")
	ErrUnknownOption      = errors.New("unknown option")
	ErrChoiceShape        = errors.New("choice shape does not match the option group")
	ErrFillingGroup       = errors.New("filling groups are selected through the filling protocol")
	ErrNotMultiple        = errors.New("option group does not accept multiple choices")
	ErrUnknownFillingKind = errors.New("unknown filling kind")
	ErrFillingLimit       = errors.New("filling limit reached")
	ErrMessageTooLong     = errors.New("message too long")
	ErrProductMismatch    = errors.New("session belongs to another product")
)

// FillingLimitError rejected filling addition; the selection is unchanged
type FillingLimitError struct {
	Layers int
}

func (e *FillingLimitError) Error() string {
	return fmt.Sprintf("filling limit reached: %d filling(s) already selected", e.Layers)
}

func (e *FillingLimitError) Unwrap() error { return ErrFillingLimit }

// State serializable session state
type State struct {
	ID        string           `json:"id"`
	ShopperID string           `json:"shopper_id"`
	ProductID string           `json:"product_id"`
	Selection domain.Selection `json:"selection"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Session customization of one product instance. Not safe for concurrent use.
type Session struct {
	state   State
	product *domain.Product
}

// Start opens a session with the initial selection for the product
func Start(id, shopperID string, p *domain.Product, now time.Time) *Session {
	return &Session{
		state: State{
			ID:        id,
			ShopperID: shopperID,
			ProductID: p.ID,
			Selection: domain.NewSelection(p),
			CreatedAt: now,
			UpdatedAt: now,
		},
		product: p,
	}
}

// Resume rebinds persisted state to its product
func Resume(state State, p *domain.Product) (*Session, error) {
	if state.ProductID != p.ID {
		return nil, ErrProductMismatch
	}
	if state.Selection.Customizations == nil {
		state.Selection.Customizations = make(map[string]domain.Choice)
	}
	return &Session{state: state, product: p}, nil
}

// ID session id
func (s *Session) ID() string { return s.state.ID }

// Product the product being customized
func (s *Session) Product() *domain.Product { return s.product }

// State copy of the session state
func (s *Session) State() State {
	st := s.state
	st.Selection = s.state.Selection.Clone()
	return st
}

// Selection copy of the current selection
func (s *Session) Selection() domain.Selection {
	return s.state.Selection.Clone()
}

// Touch records a mutation time
func (s *Session) Touch(now time.Time) {
	s.state.UpdatedAt = now
}

// SetChoice replaces the selection of a non-filling group.
// An empty single choice clears the group.
func (s *Session) SetChoice(groupType string, choice domain.Choice) error {
	g, ok := s.product.Group(groupType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGroup, groupType)
	}
	if domain.IsFillingGroup(groupType) {
		return ErrFillingGroup
	}
	if choice.IsMultiple() != g.Multiple && !(choice.IsEmpty() && !choice.IsMultiple()) {
		return fmt.Errorf("%w: %s", ErrChoiceShape, groupType)
	}

	ids := choice.IDs()
	for _, id := range ids {
		if _, ok := g.Option(id); !ok {
			return fmt.Errorf("%w: %s/%s", ErrUnknownOption, groupType, id)
		}
	}

	sel := &s.state.Selection
	if groupType == domain.GroupFillingLayers {
		prev, _ := sel.Customizations[groupType].Single()
		next, _ := choice.Single()
		if prev != next {
			sel.ResetFillings()
		}
	}

	switch {
	case g.Multiple:
		deduped := domain.Multiple()
		for _, id := range ids {
			deduped = deduped.With(id)
		}
		sel.Customizations[groupType] = deduped
	case choice.IsEmpty():
		delete(sel.Customizations, groupType)
	default:
		sel.Customizations[groupType] = choice
	}
	return nil
}

// ToggleOption adds or removes one option of a multiple-choice group
func (s *Session) ToggleOption(groupType, id string, selected bool) error {
	g, ok := s.product.Group(groupType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGroup, groupType)
	}
	if !g.Multiple {
		return fmt.Errorf("%w: %s", ErrNotMultiple, groupType)
	}
	if _, ok := g.Option(id); !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownOption, groupType, id)
	}

	current := s.state.Selection.Customizations[groupType]
	if selected {
		s.state.Selection.Customizations[groupType] = current.With(id)
	} else {
		s.state.Selection.Customizations[groupType] = current.Without(id)
	}
	return nil
}

// SelectFilling adds or removes a filling. Additions beyond the layer budget
// fail with *FillingLimitError and leave the selection untouched.
func (s *Session) SelectFilling(kind domain.FillingKind, id string, selected bool) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownFillingKind, kind)
	}
	g, ok := s.product.Group(kind.GroupType())
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGroup, kind.GroupType())
	}
	if _, ok := g.Option(id); !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownOption, g.Type, id)
	}

	sel := &s.state.Selection
	list := sel.Fillings(kind)

	if !selected {
		kept := make([]string, 0, len(list))
		for _, v := range list {
			if v != id {
				kept = append(kept, v)
			}
		}
		s.setFillings(kind, kept)
		return nil
	}

	for _, v := range list {
		if v == id {
			return nil
		}
	}
	layers := pricing.FillingLayers(s.product, *sel)
	if sel.TotalFillings() >= layers {
		return &FillingLimitError{Layers: layers}
	}
	s.setFillings(kind, append(append([]string{}, list...), id))
	return nil
}

func (s *Session) setFillings(kind domain.FillingKind, ids []string) {
	if kind == domain.FillingGourmet {
		s.state.Selection.GourmetFillings = ids
	} else {
		s.state.Selection.SimpleFillings = ids
	}
}

// SetMessage sets the message written on the cake
func (s *Session) SetMessage(text string) error {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return ErrMessageTooLong
	}
	s.state.Selection.CustomMessage = text
	return nil
}
