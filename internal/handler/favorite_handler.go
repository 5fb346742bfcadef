package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/common"
	"github.com/maosdefada/cakeshop-backend/internal/middleware"
	"github.com/maosdefada/cakeshop-backend/internal/service"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
)

// FavoriteHandler favorites endpoints
type FavoriteHandler struct {
	service service.FavoriteService
	bundle  *i18n.Bundle
}

// NewFavoriteHandler creates the handler
func NewFavoriteHandler(svc service.FavoriteService, bundle *i18n.Bundle) *FavoriteHandler {
	return &FavoriteHandler{service: svc, bundle: bundle}
}

// ListFavorites godoc
// @Summary      List favorites
// @Tags         favorites
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.Product}
// @Router       /favorites [get]
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	products, err := h.service.List(c.Request.Context(), middleware.GetShopperID(c))
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	common.SuccessResponse(c, products, &common.Meta{Total: len(products)})
}

// ToggleFavorite godoc
// @Summary      Toggle favorite
// @Tags         favorites
// @Produce      json
// @Param        product_id  path      string  true  "product id"
// @Success      200  {object}  common.APIResponse{data=service.FavoriteToggle}
// @Failure      404  {object}  common.APIResponse
// @Router       /favorites/{product_id}/toggle [post]
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	res, err := h.service.Toggle(c.Request.Context(), middleware.GetShopperID(c), c.Param("product_id"))
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	common.SuccessResponse(c, res, nil)
}

// GetFavoriteStatus godoc
// @Summary      Is favorite
// @Tags         favorites
// @Produce      json
// @Param        product_id  path      string  true  "product id"
// @Success      200  {object}  common.APIResponse{data=service.FavoriteToggle}
// @Router       /favorites/{product_id} [get]
func (h *FavoriteHandler) GetFavoriteStatus(c *gin.Context) {
	productID := c.Param("product_id")
	ok, err := h.service.IsFavorite(c.Request.Context(), middleware.GetShopperID(c), productID)
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	common.SuccessResponse(c, service.FavoriteToggle{ProductID: productID, IsFavorite: ok}, nil)
}
