package service

import (
	"context"
	"errors"

	"github.com/maosdefada/cakeshop-backend/internal/catalog"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/events"
	"github.com/maosdefada/cakeshop-backend/internal/storage"
	"github.com/moby/locker"
)

// favoriteList stored favorites of one shopper
type favoriteList struct {
	ProductIDs []string `json:"product_ids"`
}

// FavoriteToggle result of a toggle
type FavoriteToggle struct {
	ProductID  string `json:"product_id"`
	IsFavorite bool   `json:"is_favorite"`
}

// FavoriteService favorites
type FavoriteService interface {
	List(ctx context.Context, shopperID string) ([]domain.Product, error)
	Toggle(ctx context.Context, shopperID, productID string) (*FavoriteToggle, error)
	IsFavorite(ctx context.Context, shopperID, productID string) (bool, error)
}

type favoriteService struct {
	store   storage.Store
	catalog ProductCatalog
	bus     events.Publisher
	locks   *locker.Locker
}

// NewFavoriteService creates the service
func NewFavoriteService(store storage.Store, cat ProductCatalog, bus events.Publisher) FavoriteService {
	if bus == nil {
		bus = events.NopPublisher{}
	}
	return &favoriteService{store: store, catalog: cat, bus: bus, locks: locker.New()}
}

func (s *favoriteService) load(ctx context.Context, shopperID string) (favoriteList, error) {
	list, _, err := storage.LoadJSON(ctx, s.store, storage.FavoritesKey(shopperID), favoriteList{ProductIDs: []string{}})
	return list, err
}

// List favorites in the order they were added; ids no longer in the catalog are skipped
func (s *favoriteService) List(ctx context.Context, shopperID string) ([]domain.Product, error) {
	list, err := s.load(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(list.ProductIDs))
	for _, id := range list.ProductIDs {
		p, err := s.catalog.Product(id)
		if errors.Is(err, catalog.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

func (s *favoriteService) Toggle(ctx context.Context, shopperID, productID string) (*FavoriteToggle, error) {
	if !s.catalog.Has(productID) {
		return nil, catalog.ErrProductNotFound
	}

	s.locks.Lock(shopperID)
	defer s.locks.Unlock(shopperID)

	list, err := s.load(ctx, shopperID)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(list.ProductIDs)+1)
	removed := false
	for _, id := range list.ProductIDs {
		if id == productID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		kept = append(kept, productID)
	}

	if err := storage.SaveJSON(ctx, s.store, storage.FavoritesKey(shopperID), favoriteList{ProductIDs: kept}); err != nil {
		return nil, err
	}

	s.bus.Publish("favorite", events.TopicFavoriteToggle, map[string]interface{}{
		"shopper_id":  shopperID,
		"product_id":  productID,
		"is_favorite": !removed,
	})
	return &FavoriteToggle{ProductID: productID, IsFavorite: !removed}, nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, shopperID, productID string) (bool, error) {
	list, err := s.load(ctx, shopperID)
	if err != nil {
		return false, err
	}
	for _, id := range list.ProductIDs {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}
