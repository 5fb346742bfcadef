package customization

// NoticeKind which bound a quantity change hit
type NoticeKind string

const (
	NoticeMin NoticeKind = "min"
	NoticeMax NoticeKind = "max"
)

// BoundaryNotice reported when a quantity change was clamped or refused
type BoundaryNotice struct {
	Kind  NoticeKind `json:"kind"`
	Limit int        `json:"limit"`
}

// MessageKey i18n key of the notice
func (n *BoundaryNotice) MessageKey() string {
	if n.Kind == NoticeMax {
		return "quantity.max"
	}
	return "quantity.min"
}

// QuantityAction quantity control verbs
type QuantityAction string

const (
	QuantityIncrement QuantityAction = "increment"
	QuantityDecrement QuantityAction = "decrement"
	QuantitySet       QuantityAction = "set"
)

// Valid reports whether the action is known
func (a QuantityAction) Valid() bool {
	return a == QuantityIncrement || a == QuantityDecrement || a == QuantitySet
}

// Increment adds one unless the maximum is reached
func (s *Session) Increment() *BoundaryNotice {
	return s.SetQuantity(s.state.Selection.Quantity + 1)
}

// Decrement removes one unless the minimum is reached
func (s *Session) Decrement() *BoundaryNotice {
	return s.SetQuantity(s.state.Selection.Quantity - 1)
}

// SetQuantity clamps n to the product bounds; a notice reports any clamp
func (s *Session) SetQuantity(n int) *BoundaryNotice {
	q := s.product.Quantity()
	switch {
	case n < q.MinQuantity:
		s.state.Selection.Quantity = q.MinQuantity
		return &BoundaryNotice{Kind: NoticeMin, Limit: q.MinQuantity}
	case n > q.MaxQuantity:
		s.state.Selection.Quantity = q.MaxQuantity
		return &BoundaryNotice{Kind: NoticeMax, Limit: q.MaxQuantity}
	}
	s.state.Selection.Quantity = n
	return nil
}

// Apply runs a quantity action; n is used only by QuantitySet
func (s *Session) Apply(action QuantityAction, n int) *BoundaryNotice {
	switch action {
	case QuantityIncrement:
		return s.Increment()
	case QuantityDecrement:
		return s.Decrement()
	default:
		return s.SetQuantity(n)
	}
}
