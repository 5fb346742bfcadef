package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/catalog"
	"github.com/maosdefada/cakeshop-backend/internal/common"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
)

// CatalogHandler read-only product catalog
type CatalogHandler struct {
	catalog *catalog.Catalog
	bundle  *i18n.Bundle
}

// NewCatalogHandler creates the handler
func NewCatalogHandler(cat *catalog.Catalog, bundle *i18n.Bundle) *CatalogHandler {
	return &CatalogHandler{catalog: cat, bundle: bundle}
}

// ListCategories godoc
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]string}
// @Router       /catalog/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories := h.catalog.Categories()
	common.SuccessResponse(c, categories, &common.Meta{Total: len(categories)})
}

// ListProducts godoc
// @Summary      List products
// @Description  category=Todos (or empty) returns every product; featured=true keeps only highlighted ones
// @Tags         catalog
// @Produce      json
// @Param        category  query     string  false  "category name"
// @Param        featured  query     bool    false  "featured only"
// @Success      200  {object}  common.APIResponse{data=[]domain.Product}
// @Router       /catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products := h.catalog.Products(c.Query("category"))
	if c.Query("featured") == "true" {
		featured := products[:0:0]
		for _, p := range products {
			if p.Featured {
				featured = append(featured, p)
			}
		}
		products = featured
	}
	common.SuccessResponse(c, products, &common.Meta{Total: len(products)})
}

// GetProduct godoc
// @Summary      Product detail
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "product id"
// @Success      200  {object}  common.APIResponse{data=domain.Product}
// @Failure      404  {object}  common.APIResponse
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.catalog.Product(c.Param("id"))
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	common.SuccessResponse(c, p, nil)
}
