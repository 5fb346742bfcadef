package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/common"
	"github.com/maosdefada/cakeshop-backend/internal/customization"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/middleware"
	"github.com/maosdefada/cakeshop-backend/internal/service"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
)

// CustomizationHandler customization session endpoints
type CustomizationHandler struct {
	service service.CustomizationService
	bundle  *i18n.Bundle
}

// NewCustomizationHandler creates the handler
func NewCustomizationHandler(svc service.CustomizationService, bundle *i18n.Bundle) *CustomizationHandler {
	return &CustomizationHandler{service: svc, bundle: bundle}
}

// StartSessionRequest body of POST /customizations
type StartSessionRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// SetChoiceRequest value is an option id, or a list of ids for multiple-choice groups
type SetChoiceRequest struct {
	Value domain.Choice `json:"value"`
}

// ToggleOptionRequest body of the toggle endpoint
type ToggleOptionRequest struct {
	OptionID string `json:"option_id" binding:"required"`
	Selected bool   `json:"selected"`
}

// SelectFillingRequest body of the filling endpoint
type SelectFillingRequest struct {
	Kind     domain.FillingKind `json:"kind" binding:"required"`
	OptionID string             `json:"option_id" binding:"required"`
	Selected bool               `json:"selected"`
}

// SetMessageRequest body of the message endpoint
type SetMessageRequest struct {
	Message string `json:"message"`
}

// QuantityRequest quantity is read only for action=set
type QuantityRequest struct {
	Action   customization.QuantityAction `json:"action" binding:"required"`
	Quantity int                          `json:"quantity"`
}

func (h *CustomizationHandler) respond(c *gin.Context, view *service.SessionView, err error) {
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	var meta *common.Meta
	if view.Notice != nil {
		meta = &common.Meta{Notice: h.bundle.T(middleware.GetLocale(c), view.Notice.MessageKey(), view.Notice.Limit)}
	}
	common.SuccessResponse(c, view, meta)
}

// Start godoc
// @Summary      Start customization session
// @Tags         customization
// @Accept       json
// @Produce      json
// @Param        request  body      StartSessionRequest  true  "product"
// @Success      201  {object}  common.APIResponse{data=service.SessionView}
// @Failure      404  {object}  common.APIResponse
// @Router       /customizations [post]
func (h *CustomizationHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}

	view, err := h.service.Start(c.Request.Context(), middleware.GetShopperID(c), req.ProductID)
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	common.CreatedResponse(c, view, nil)
}

// Get godoc
// @Summary      Get session
// @Tags         customization
// @Produce      json
// @Param        id   path      string  true  "session id"
// @Success      200  {object}  common.APIResponse{data=service.SessionView}
// @Failure      404  {object}  common.APIResponse
// @Router       /customizations/{id} [get]
func (h *CustomizationHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), middleware.GetShopperID(c), c.Param("id"))
	h.respond(c, view, err)
}

// Discard godoc
// @Summary      Discard session
// @Tags         customization
// @Param        id   path      string  true  "session id"
// @Success      204
// @Failure      404  {object}  common.APIResponse
// @Router       /customizations/{id} [delete]
func (h *CustomizationHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), middleware.GetShopperID(c), c.Param("id")); err != nil {
		respondError(c, h.bundle, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetChoice godoc
// @Summary      Select option
// @Description  Replaces the selection of a non-filling option group. An empty value clears a single-choice group.
// @Tags         customization
// @Accept       json
// @Produce      json
// @Param        id       path      string            true  "session id"
// @Param        type     path      string            true  "option group type"
// @Param        request  body      SetChoiceRequest  true  "choice"
// @Success      200  {object}  common.APIResponse{data=service.SessionView}
// @Failure      400  {object}  common.APIResponse
// @Router       /customizations/{id}/options/{type} [put]
func (h *CustomizationHandler) SetChoice(c *gin.Context) {
	var req SetChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}
	view, err := h.service.SetChoice(c.Request.Context(), middleware.GetShopperID(c), c.Param("id"), c.Param("type"), req.Value)
	h.respond(c, view, err)
}

// ToggleOption godoc
// @Summary      Toggle multi-select option
// @Tags         customization
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "session id"
// @Param        type     path      string               true  "option group type"
// @Param        request  body      ToggleOptionRequest  true  "option"
// @Success      200  {object}  common.APIResponse{data=service.SessionView}
// @Router       /customizations/{id}/options/{type}/toggle [post]
func (h *CustomizationHandler) ToggleOption(c *gin.Context) {
	var req ToggleOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}
	view, err := h.service.ToggleOption(c.Request.Context(), middleware.GetShopperID(c), c.Param("id"), c.Param("type"), req.OptionID, req.Selected)
	h.respond(c, view, err)
}

// SelectFilling godoc
// @Summary      Toggle filling
// @Description  Adding beyond the filling budget fails with 422 and leaves the selection unchanged.
// @Tags         customization
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "session id"
// @Param        request  body      SelectFillingRequest  true  "filling"
// @Success      200  {object}  common.APIResponse{data=service.SessionView}
// @Failure      422  {object}  common.APIResponse
// @Router       /customizations/{id}/fillings [post]
func (h *CustomizationHandler) SelectFilling(c *gin.Context) {
	var req SelectFillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}
	view, err := h.service.SelectFilling(c.Request.Context(), middleware.GetShopperID(c), c.Param("id"), req.Kind, req.OptionID, req.Selected)
	h.respond(c, view, err)
}

// SetMessage godoc
// @Summary      Set cake message
// @Tags         customization
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "session id"
// @Param        request  body      SetMessageRequest  true  "message"
// @Success      200  {object}  common.APIResponse{data=service.SessionView}
// @Failure      422  {object}  common.APIResponse
// @Router       /customizations/{id}/message [put]
func (h *CustomizationHandler) SetMessage(c *gin.Context) {
	var req SetMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}
	view, err := h.service.SetMessage(c.Request.Context(), middleware.GetShopperID(c), c.Param("id"), req.Message)
	h.respond(c, view, err)
}

// ChangeQuantity godoc
// @Summary      Set quantity
// @Description  Out-of-range quantities are clamped; meta.notice carries the boundary message.
// @Tags         customization
// @Accept       json
// @Produce      json
// @Param        id       path      string           true  "session id"
// @Param        request  body      QuantityRequest  true  "action"
// @Success      200  {object}  common.APIResponse{data=service.SessionView}
// @Router       /customizations/{id}/quantity [post]
func (h *CustomizationHandler) ChangeQuantity(c *gin.Context) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.bundle, err)
		return
	}
	view, err := h.service.ChangeQuantity(c.Request.Context(), middleware.GetShopperID(c), c.Param("id"), req.Action, req.Quantity)
	h.respond(c, view, err)
}

// Confirm godoc
// @Summary      Add to bag
// @Tags         customization
// @Produce      json
// @Param        id   path      string  true  "session id"
// @Success      201  {object}  common.APIResponse{data=service.ConfirmResult}
// @Failure      422  {object}  common.APIResponse
// @Router       /customizations/{id}/confirm [post]
func (h *CustomizationHandler) Confirm(c *gin.Context) {
	res, err := h.service.Confirm(c.Request.Context(), middleware.GetShopperID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.bundle, err)
		return
	}
	common.CreatedResponse(c, res, &common.Meta{Notice: h.bundle.T(middleware.GetLocale(c), "cart.item_added")})
}
