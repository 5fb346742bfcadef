package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/maosdefada/cakeshop-backend/internal/cart"
	"github.com/maosdefada/cakeshop-backend/internal/customization"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/pricing"
	"github.com/maosdefada/cakeshop-backend/internal/storage"
	pkglogger "github.com/maosdefada/cakeshop-backend/pkg/logger"
	"github.com/moby/locker"
)

// Customization errors
var (
	ErrSessionNotFound = errors.New("customization session not found")
	ErrInvalidAction   = errors.New("unknown quantity action")
)

// SessionView session state with its fresh quote
type SessionView struct {
	SessionID string                        `json:"session_id"`
	Product   *domain.Product               `json:"product"`
	Selection domain.Selection              `json:"selection"`
	Quote     pricing.Result                `json:"quote"`
	Notice    *customization.BoundaryNotice `json:"notice,omitempty"`
	UpdatedAt time.Time                     `json:"updated_at"`
}

// ConfirmResult line added to the cart by a confirmed session
type ConfirmResult struct {
	Line domain.CartLine `json:"line"`
	Cart *cart.Summary   `json:"cart"`
}

// CustomizationService product customization sessions
type CustomizationService interface {
	Start(ctx context.Context, shopperID, productID string) (*SessionView, error)
	Get(ctx context.Context, shopperID, sessionID string) (*SessionView, error)
	SetChoice(ctx context.Context, shopperID, sessionID, groupType string, choice domain.Choice) (*SessionView, error)
	ToggleOption(ctx context.Context, shopperID, sessionID, groupType, optionID string, selected bool) (*SessionView, error)
	SelectFilling(ctx context.Context, shopperID, sessionID string, kind domain.FillingKind, optionID string, selected bool) (*SessionView, error)
	SetMessage(ctx context.Context, shopperID, sessionID, text string) (*SessionView, error)
	ChangeQuantity(ctx context.Context, shopperID, sessionID string, action customization.QuantityAction, n int) (*SessionView, error)
	Confirm(ctx context.Context, shopperID, sessionID string) (*ConfirmResult, error)
	Discard(ctx context.Context, shopperID, sessionID string) error
}

type customizationService struct {
	store   storage.Store
	catalog ProductCatalog
	engine  *pricing.Engine
	carts   CartService
	locks   *locker.Locker
	now     func() time.Time
	newID   func() string
}

// NewCustomizationService creates the service
func NewCustomizationService(store storage.Store, cat ProductCatalog, engine *pricing.Engine, carts CartService) CustomizationService {
	return &customizationService{
		store:   store,
		catalog: cat,
		engine:  engine,
		carts:   carts,
		locks:   locker.New(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *customizationService) view(sess *customization.Session, notice *customization.BoundaryNotice) *SessionView {
	st := sess.State()
	return &SessionView{
		SessionID: st.ID,
		Product:   sess.Product(),
		Selection: st.Selection,
		Quote:     s.engine.Quote(sess.Product(), st.Selection),
		Notice:    notice,
		UpdatedAt: st.UpdatedAt,
	}
}

func (s *customizationService) save(ctx context.Context, sess *customization.Session) error {
	return storage.SaveJSON(ctx, s.store, storage.CustomizationKey(sess.ID()), sess.State())
}

// load resumes a session owned by shopperID
func (s *customizationService) load(ctx context.Context, shopperID, sessionID string) (*customization.Session, error) {
	st, found, err := storage.LoadJSON(ctx, s.store, storage.CustomizationKey(sessionID), customization.State{})
	if err != nil {
		return nil, err
	}
	if !found || st.ShopperID != shopperID {
		return nil, ErrSessionNotFound
	}
	p, err := s.catalog.Product(st.ProductID)
	if err != nil {
		return nil, err
	}
	return customization.Resume(st, p)
}

// mutate applies fn under the session lock; on error nothing is saved
func (s *customizationService) mutate(
	ctx context.Context,
	shopperID, sessionID string,
	fn func(sess *customization.Session) (*customization.BoundaryNotice, error),
) (*SessionView, error) {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	sess, err := s.load(ctx, shopperID, sessionID)
	if err != nil {
		return nil, err
	}
	notice, err := fn(sess)
	if err != nil {
		return nil, err
	}
	sess.Touch(s.now())
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(sess, notice), nil
}

// Start opens a customization session
func (s *customizationService) Start(ctx context.Context, shopperID, productID string) (*SessionView, error) {
	p, err := s.catalog.Product(productID)
	if err != nil {
		return nil, err
	}
	sess := customization.Start(s.newID(), shopperID, p, s.now())
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(sess, nil), nil
}

func (s *customizationService) Get(ctx context.Context, shopperID, sessionID string) (*SessionView, error) {
	sess, err := s.load(ctx, shopperID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, nil), nil
}

func (s *customizationService) SetChoice(ctx context.Context, shopperID, sessionID, groupType string, choice domain.Choice) (*SessionView, error) {
	return s.mutate(ctx, shopperID, sessionID, func(sess *customization.Session) (*customization.BoundaryNotice, error) {
		return nil, sess.SetChoice(groupType, choice)
	})
}

func (s *customizationService) ToggleOption(ctx context.Context, shopperID, sessionID, groupType, optionID string, selected bool) (*SessionView, error) {
	return s.mutate(ctx, shopperID, sessionID, func(sess *customization.Session) (*customization.BoundaryNotice, error) {
		return nil, sess.ToggleOption(groupType, optionID, selected)
	})
}

func (s *customizationService) SelectFilling(ctx context.Context, shopperID, sessionID string, kind domain.FillingKind, optionID string, selected bool) (*SessionView, error) {
	return s.mutate(ctx, shopperID, sessionID, func(sess *customization.Session) (*customization.BoundaryNotice, error) {
		return nil, sess.SelectFilling(kind, optionID, selected)
	})
}

func (s *customizationService) SetMessage(ctx context.Context, shopperID, sessionID, text string) (*SessionView, error) {
	return s.mutate(ctx, shopperID, sessionID, func(sess *customization.Session) (*customization.BoundaryNotice, error) {
		return nil, sess.SetMessage(text)
	})
}

func (s *customizationService) ChangeQuantity(ctx context.Context, shopperID, sessionID string, action customization.QuantityAction, n int) (*SessionView, error) {
	if !action.Valid() {
		return nil, ErrInvalidAction
	}
	return s.mutate(ctx, shopperID, sessionID, func(sess *customization.Session) (*customization.BoundaryNotice, error) {
		return sess.Apply(action, n), nil
	})
}

// Confirm builds the cart line, closes the session and adds the line.
// A failed add restores the session.
func (s *customizationService) Confirm(ctx context.Context, shopperID, sessionID string) (*ConfirmResult, error) {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	sess, err := s.load(ctx, shopperID, sessionID)
	if err != nil {
		return nil, err
	}

	sel := sess.Selection()
	line, err := cart.BuildLine(sess.Product(), sel, s.engine.Quote(sess.Product(), sel))
	if err != nil {
		return nil, err
	}

	// the session goes first so a retried confirm can never add the line twice
	if err := s.store.Delete(ctx, storage.CustomizationKey(sessionID)); err != nil {
		return nil, err
	}

	added, summary, err := s.carts.AddLine(ctx, shopperID, line)
	if err != nil {
		if saveErr := s.save(ctx, sess); saveErr != nil {
			pkglogger.GetLogger().Warn().Err(saveErr).Str("session_id", sessionID).Msg("session not restored after failed confirm")
		}
		return nil, err
	}
	return &ConfirmResult{Line: added, Cart: summary}, nil
}

func (s *customizationService) Discard(ctx context.Context, shopperID, sessionID string) error {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	if _, err := s.load(ctx, shopperID, sessionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, storage.CustomizationKey(sessionID))
}
