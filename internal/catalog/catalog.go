// Package catalog loads and serves the read-only product catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// AllCategories pseudo category listing every product
const AllCategories = "Todos"

//go:embed default_catalog.yaml
var defaultCatalog []byte

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

// file on-disk layout
type file struct {
	Categories []string         `yaml:"categories"`
	Products   []domain.Product `yaml:"products"`
}

// Catalog immutable product catalog
type Catalog struct {
	categories []string
	products   []domain.Product
	byID       map[string]*domain.Product
}

// New builds a catalog and validates it
func New(categories []string, products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		categories: categories,
		products:   products,
		byID:       make(map[string]*domain.Product, len(products)),
	}
	if err := Validate(products); err != nil {
		return nil, err
	}
	for i := range c.products {
		c.byID[c.products[i].ID] = &c.products[i]
	}
	return c, nil
}

// Parse decodes a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(f.Categories, f.Products)
}

// LoadFile reads the catalog from path, falling back to the embedded one when path is empty
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Default the embedded bakery catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// MustDefault panics when the embedded catalog is broken; used by tests and fixtures
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Categories category names in display order
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Products products of a category; AllCategories or empty returns everything
func (c *Catalog) Products(category string) []domain.Product {
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if category == "" || category == AllCategories || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Featured products flagged for the home page
func (c *Catalog) Featured() []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range c.products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// Product lookup by id
func (c *Catalog) Product(id string) (*domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Has reports whether the product id exists
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}
