package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/cart"
	"github.com/maosdefada/cakeshop-backend/internal/common"
	"github.com/maosdefada/cakeshop-backend/internal/middleware"
	"github.com/maosdefada/cakeshop-backend/internal/service"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
)

// CartHandler bag endpoints
type CartHandler struct {
	service service.CartService
	bundle  *i18n.Bundle
}

// NewCartHandler creates the handler
func NewCartHandler(svc service.CartService, bundle *i18n.Bundle) *CartHandler {
	return &CartHandler{service: svc, bundle: bundle}
}

// UpdateQuantityRequest body of the quantity endpoints
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *CartHandler) respond(c *gin.Context, summary *cart.Summary, err error, noticeKey string) {
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	var meta *common.Meta
	if noticeKey != "" {
		meta = &common.Meta{Notice: h.bundle.T(middleware.GetLocale(c), noticeKey)}
	}
	common.SuccessResponse(c, summary, meta)
}

// GetCart godoc
// @Summary      Get bag
// @Tags         cart
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=cart.Summary}
// @Router       /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	summary, err := h.service.Get(c.Request.Context(), middleware.GetShopperID(c))
	h.respond(c, summary, err, "")
}

// ClearCart godoc
// @Summary      Clear bag
// @Tags         cart
// @Success      204
// @Router       /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), middleware.GetShopperID(c)); err != nil {
		respondError(c, h.bundle, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateLine godoc
// @Summary      Update line quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        line_id  path      string                 true  "line id"
// @Param        request  body      UpdateQuantityRequest  true  "quantity"
// @Success      200  {object}  common.APIResponse{data=cart.Summary}
// @Failure      400  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /cart/lines/{line_id} [put]
func (h *CartHandler) UpdateLine(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}
	summary, err := h.service.UpdateLine(c.Request.Context(), middleware.GetShopperID(c), c.Param("line_id"), req.Quantity)
	h.respond(c, summary, err, "")
}

// RemoveLine godoc
// @Summary      Remove line
// @Tags         cart
// @Produce      json
// @Param        line_id  path      string  true  "line id"
// @Success      200  {object}  common.APIResponse{data=cart.Summary}
// @Failure      404  {object}  common.APIResponse
// @Router       /cart/lines/{line_id} [delete]
func (h *CartHandler) RemoveLine(c *gin.Context) {
	summary, err := h.service.RemoveLine(c.Request.Context(), middleware.GetShopperID(c), c.Param("line_id"))
	h.respond(c, summary, err, "cart.item_removed")
}

// UpdateProduct godoc
// @Summary      Update product quantity
// @Description  Applies to the first line of the product.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        product_id  path      string                 true  "product id"
// @Param        request     body      UpdateQuantityRequest  true  "quantity"
// @Success      200  {object}  common.APIResponse{data=cart.Summary}
// @Router       /cart/products/{product_id} [put]
func (h *CartHandler) UpdateProduct(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}
	summary, err := h.service.UpdateProduct(c.Request.Context(), middleware.GetShopperID(c), c.Param("product_id"), req.Quantity)
	h.respond(c, summary, err, "")
}

// RemoveProduct godoc
// @Summary      Remove product
// @Description  Removes the first line of the product.
// @Tags         cart
// @Produce      json
// @Param        product_id  path      string  true  "product id"
// @Success      200  {object}  common.APIResponse{data=cart.Summary}
// @Router       /cart/products/{product_id} [delete]
func (h *CartHandler) RemoveProduct(c *gin.Context) {
	summary, err := h.service.RemoveProduct(c.Request.Context(), middleware.GetShopperID(c), c.Param("product_id"))
	h.respond(c, summary, err, "cart.item_removed")
}
