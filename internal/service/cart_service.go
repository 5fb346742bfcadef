package service

import (
	"context"
	"errors"

	"github.com/maosdefada/cakeshop-backend/internal/cart"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/events"
	"github.com/maosdefada/cakeshop-backend/internal/storage"
	"github.com/moby/locker"
)

// Cart errors
var (
	ErrCartEmpty = errors.New("cart is empty")
)

// CartService shopper cart, written through to the store
type CartService interface {
	Get(ctx context.Context, shopperID string) (*cart.Summary, error)
	AddLine(ctx context.Context, shopperID string, line domain.CartLine) (domain.CartLine, *cart.Summary, error)
	UpdateLine(ctx context.Context, shopperID, lineID string, quantity int) (*cart.Summary, error)
	RemoveLine(ctx context.Context, shopperID, lineID string) (*cart.Summary, error)
	UpdateProduct(ctx context.Context, shopperID, productID string, quantity int) (*cart.Summary, error)
	RemoveProduct(ctx context.Context, shopperID, productID string) (*cart.Summary, error)
	Clear(ctx context.Context, shopperID string) error

	// Take returns the cart and empties it in one step; ErrCartEmpty leaves it untouched
	Take(ctx context.Context, shopperID string) (*cart.Cart, error)
}

type cartService struct {
	store storage.Store
	bus   events.Publisher
	locks *locker.Locker
}

// NewCartService creates the service
func NewCartService(store storage.Store, bus events.Publisher) CartService {
	if bus == nil {
		bus = events.NopPublisher{}
	}
	return &cartService{
		store: store,
		bus:   bus,
		locks: locker.New(),
	}
}

func (s *cartService) load(ctx context.Context, shopperID string) (*cart.Cart, error) {
	c, _, err := storage.LoadJSON(ctx, s.store, storage.CartKey(shopperID), *cart.New())
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []domain.CartLine{}
	}
	return &c, nil
}

func (s *cartService) save(ctx context.Context, shopperID string, c *cart.Cart) error {
	return storage.SaveJSON(ctx, s.store, storage.CartKey(shopperID), c)
}

// mutate runs fn on the shopper's cart under the shopper lock and saves the result
func (s *cartService) mutate(ctx context.Context, shopperID string, fn func(c *cart.Cart) error) (*cart.Summary, error) {
	s.locks.Lock(shopperID)
	defer s.locks.Unlock(shopperID)

	c, err := s.load(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.save(ctx, shopperID, c); err != nil {
		return nil, err
	}
	summary := c.Summary()
	return &summary, nil
}

// Get bag of a shopper
func (s *cartService) Get(ctx context.Context, shopperID string) (*cart.Summary, error) {
	c, err := s.load(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	summary := c.Summary()
	return &summary, nil
}

func (s *cartService) AddLine(ctx context.Context, shopperID string, line domain.CartLine) (domain.CartLine, *cart.Summary, error) {
	var added domain.CartLine
	summary, err := s.mutate(ctx, shopperID, func(c *cart.Cart) error {
		added = c.AddLine(line)
		return nil
	})
	if err != nil {
		return domain.CartLine{}, nil, err
	}

	s.bus.Publish("cart", events.TopicLineAdded, map[string]interface{}{
		"shopper_id": shopperID,
		"product_id": line.Product.ID,
		"line_id":    added.LineID,
		"quantity":   line.Quantity,
	})
	return added, summary, nil
}

func (s *cartService) UpdateLine(ctx context.Context, shopperID, lineID string, quantity int) (*cart.Summary, error) {
	return s.mutate(ctx, shopperID, func(c *cart.Cart) error {
		return c.UpdateLine(lineID, quantity)
	})
}

func (s *cartService) RemoveLine(ctx context.Context, shopperID, lineID string) (*cart.Summary, error) {
	return s.mutate(ctx, shopperID, func(c *cart.Cart) error {
		return c.RemoveLine(lineID)
	})
}

func (s *cartService) UpdateProduct(ctx context.Context, shopperID, productID string, quantity int) (*cart.Summary, error) {
	return s.mutate(ctx, shopperID, func(c *cart.Cart) error {
		return c.UpdateQuantity(productID, quantity)
	})
}

func (s *cartService) RemoveProduct(ctx context.Context, shopperID, productID string) (*cart.Summary, error) {
	return s.mutate(ctx, shopperID, func(c *cart.Cart) error {
		return c.RemoveItem(productID)
	})
}

// Clear empties the bag
func (s *cartService) Clear(ctx context.Context, shopperID string) error {
	_, err := s.mutate(ctx, shopperID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	if err != nil {
		return err
	}
	s.bus.Publish("cart", events.TopicCartCleared, map[string]interface{}{"shopper_id": shopperID})
	return nil
}

func (s *cartService) Take(ctx context.Context, shopperID string) (*cart.Cart, error) {
	s.locks.Lock(shopperID)
	defer s.locks.Unlock(shopperID)

	c, err := s.load(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}
	if err := s.save(ctx, shopperID, cart.New()); err != nil {
		return nil, err
	}
	return c, nil
}
