package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/cart"
	"github.com/maosdefada/cakeshop-backend/internal/catalog"
	"github.com/maosdefada/cakeshop-backend/internal/common"
	"github.com/maosdefada/cakeshop-backend/internal/customization"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/middleware"
	"github.com/maosdefada/cakeshop-backend/internal/service"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
	"github.com/maosdefada/cakeshop-backend/pkg/logger"
)

// checkout sentinel -> message key
var checkoutKeys = []struct {
	err error
	key string
}{
	{service.ErrInvalidDeliveryType, "checkout.type_invalid"},
	{service.ErrDateRequired, "checkout.date_required"},
	{service.ErrInvalidDate, "checkout.date_invalid"},
	{service.ErrTimeRequired, "checkout.time_required"},
	{service.ErrInvalidTime, "checkout.time_invalid"},
	{service.ErrAddressRequired, "checkout.address_required"},
	{service.ErrCartEmpty, "checkout.cart_empty"},
}

var badRequestErrors = []error{
	common.ErrInvalidInput,
	domain.ErrInvalidChoice,
	customization.ErrUnknownGroup,
	customization.ErrUnknownOption,
	customization.ErrChoiceShape,
	customization.ErrFillingGroup,
	customization.ErrNotMultiple,
	customization.ErrUnknownFillingKind,
	service.ErrInvalidAction,
	cart.ErrInvalidQuantity,
}

var notFoundErrors = []error{
	catalog.ErrProductNotFound,
	service.ErrSessionNotFound,
	service.ErrAddressNotFound,
	cart.ErrLineNotFound,
}

// respondError maps a service error to status, localized message and details
func respondError(c *gin.Context, bundle *i18n.Bundle, err error) {
	locale := middleware.GetLocale(c)

	var vErr *cart.ValidationError
	if errors.As(err, &vErr) {
		var msg string
		if len(vErr.MissingGroups) > 0 {
			msg = bundle.T(locale, "customization.missing_groups", strings.Join(vErr.MissingGroups, ", "))
		} else {
			msg = bundle.T(locale, "customization.missing_fillings", vErr.FillingLayers, vErr.SelectedFillings, vErr.FillingLayers)
		}
		common.ErrorResponseWithDetails(c, http.StatusUnprocessableEntity, msg, vErr)
		return
	}

	var limitErr *customization.FillingLimitError
	if errors.As(err, &limitErr) {
		common.ErrorResponseWithDetails(c, http.StatusUnprocessableEntity,
			bundle.T(locale, "customization.filling_limit", limitErr.Layers), limitErr)
		return
	}

	if errors.Is(err, customization.ErrMessageTooLong) {
		common.ErrorResponse(c, http.StatusUnprocessableEntity,
			bundle.T(locale, "customization.message_too_long", customization.MaxMessageLength), err)
		return
	}

	if errors.Is(err, service.ErrAddressIncomplete) {
		common.ErrorResponse(c, http.StatusUnprocessableEntity, bundle.T(locale, "error.validation"), err)
		return
	}

	for _, ck := range checkoutKeys {
		if errors.Is(err, ck.err) {
			common.ErrorResponse(c, http.StatusUnprocessableEntity, bundle.T(locale, ck.key), err)
			return
		}
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			common.ErrorResponse(c, http.StatusNotFound, bundle.T(locale, "error.not_found"), err)
			return
		}
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			common.ErrorResponseWithDetails(c, http.StatusBadRequest, bundle.T(locale, "error.bad_request"), err.Error())
			return
		}
	}

	logger.GetLogger().Error().Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Str("path", c.FullPath()).
		Msg("unhandled error")
	common.ErrorResponse(c, http.StatusInternalServerError, bundle.T(locale, "error.internal"), err)
}

// badRequest invalid body or parameters
func badRequest(c *gin.Context, bundle *i18n.Bundle, err error) {
	respondError(c, bundle, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
}
