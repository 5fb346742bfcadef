package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/common"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/middleware"
	"github.com/maosdefada/cakeshop-backend/internal/service"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
)

// AddressHandler saved delivery address
type AddressHandler struct {
	service service.AddressService
	bundle  *i18n.Bundle
}

// NewAddressHandler creates the handler
func NewAddressHandler(svc service.AddressService, bundle *i18n.Bundle) *AddressHandler {
	return &AddressHandler{service: svc, bundle: bundle}
}

// GetAddress godoc
// @Summary      Saved delivery address
// @Tags         address
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=domain.Address}
// @Failure      404  {object}  common.APIResponse
// @Router       /address [get]
func (h *AddressHandler) GetAddress(c *gin.Context) {
	addr, err := h.service.Get(c.Request.Context(), middleware.GetShopperID(c))
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	common.SuccessResponse(c, addr, nil)
}

// SaveAddress godoc
// @Summary      Save delivery address
// @Tags         address
// @Accept       json
// @Produce      json
// @Param        request  body      domain.Address  true  "address"
// @Success      200  {object}  common.APIResponse{data=domain.Address}
// @Failure      422  {object}  common.APIResponse
// @Router       /address [put]
func (h *AddressHandler) SaveAddress(c *gin.Context) {
	var req domain.Address
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}

	addr, err := h.service.Save(c.Request.Context(), middleware.GetShopperID(c), req)
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	common.SuccessResponse(c, addr, &common.Meta{Notice: h.bundle.T(middleware.GetLocale(c), "address.saved")})
}
