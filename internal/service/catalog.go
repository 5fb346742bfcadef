package service

import "github.com/maosdefada/cakeshop-backend/internal/domain"

// ProductCatalog read side of the catalog used by the services
type ProductCatalog interface {
	Product(id string) (*domain.Product, error)
	Has(id string) bool
}
