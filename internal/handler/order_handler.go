package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/common"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/middleware"
	"github.com/maosdefada/cakeshop-backend/internal/service"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
)

// OrderHandler checkout endpoints
type OrderHandler struct {
	service service.OrderService
	bundle  *i18n.Bundle
}

// NewOrderHandler creates the handler
func NewOrderHandler(svc service.OrderService, bundle *i18n.Bundle) *OrderHandler {
	return &OrderHandler{service: svc, bundle: bundle}
}

// GetOptions godoc
// @Summary      Checkout options
// @Description  Delivery fee, free-delivery flag, time slots per mode, earliest date and the saved address.
// @Tags         orders
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=service.CheckoutOptions}
// @Router       /checkout/options [get]
func (h *OrderHandler) GetOptions(c *gin.Context) {
	opts, err := h.service.Options(c.Request.Context(), middleware.GetShopperID(c))
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	common.SuccessResponse(c, opts, nil)
}

// SubmitOrder godoc
// @Summary      Submit order
// @Description  Validates the checkout form, relays the order message and appends the audit rows.
// @Description  A relay fallback or audit failure is reported in meta.warning; the order still succeeds.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request  body      domain.OrderRequest  true  "checkout"
// @Success      201  {object}  common.APIResponse{data=service.SubmitResult}
// @Failure      422  {object}  common.APIResponse
// @Failure      429  {object}  common.APIResponse
// @Router       /orders [post]
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	var req domain.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}

	res, err := h.service.Submit(c.Request.Context(), middleware.GetShopperID(c), req)
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}

	locale := middleware.GetLocale(c)
	common.CreatedResponse(c, res, &common.Meta{
		Notice:  h.successNotice(locale, res.Order),
		Warning: h.warnings(locale, res),
	})
}

func (h *OrderHandler) successNotice(locale i18n.Locale, o *domain.Order) string {
	if o.DeliveryType == domain.DeliveryTypeDelivery && o.Address != nil {
		return h.bundle.T(locale, "checkout.success_delivery", o.Address.Street, o.Address.Number, o.Date, o.Time)
	}
	return h.bundle.T(locale, "checkout.success_pickup", o.Date, o.Time)
}

func (h *OrderHandler) warnings(locale i18n.Locale, res *service.SubmitResult) string {
	var parts []string
	if res.FallbackURL != "" {
		parts = append(parts, h.bundle.T(locale, "checkout.relay_fallback"))
	}
	if res.AuditFailed {
		parts = append(parts, h.bundle.T(locale, "checkout.audit_failed"))
	}
	return strings.Join(parts, " ")
}
