package service

import (
	"context"
	"errors"
	"strings"

	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/storage"
)

var (
	ErrAddressNotFound   = errors.New("no saved delivery address")
	ErrAddressIncomplete = errors.New("street, number and neighborhood are required")
)

// AddressService saved delivery address of a shopper
type AddressService interface {
	Get(ctx context.Context, shopperID string) (*domain.Address, error)
	Save(ctx context.Context, shopperID string, addr domain.Address) (*domain.Address, error)
}

type addressService struct {
	store storage.Store
}

// NewAddressService creates the service
func NewAddressService(store storage.Store) AddressService {
	return &addressService{store: store}
}

func (s *addressService) Get(ctx context.Context, shopperID string) (*domain.Address, error) {
	addr, found, err := storage.LoadJSON(ctx, s.store, storage.AddressKey(shopperID), domain.Address{})
	if err != nil {
		return nil, err
	}
	if !found || !addr.Complete() {
		return nil, ErrAddressNotFound
	}
	return &addr, nil
}

func (s *addressService) Save(ctx context.Context, shopperID string, addr domain.Address) (*domain.Address, error) {
	addr = domain.Address{
		Street:       strings.TrimSpace(addr.Street),
		Number:       strings.TrimSpace(addr.Number),
		Neighborhood: strings.TrimSpace(addr.Neighborhood),
		Complement:   strings.TrimSpace(addr.Complement),
	}
	if !addr.Complete() {
		return nil, ErrAddressIncomplete
	}
	if err := storage.SaveJSON(ctx, s.store, storage.AddressKey(shopperID), addr); err != nil {
		return nil, err
	}
	return &addr, nil
}
