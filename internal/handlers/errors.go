package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ANJAN672/Ecom/internal/service/address"
	"github.com/ANJAN672/Ecom/internal/service/cart"
	"github.com/ANJAN672/Ecom/internal/service/catalog"
	"github.com/ANJAN672/Ecom/internal/service/order"
)

// HTTPError translates service errors into transport responses. Anything not
// in the taxonomy is a 500.
func HTTPError(err error) error {
	if err == nil {
		return nil
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	var cartInvalid *order.CartInvalidError
	if errors.As(err, &cartInvalid) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"message": "some items in your cart are unavailable",
			"issues":  cartInvalid.Issues,
		})
	}
	var invalidTransition *order.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		return echo.NewHTTPError(http.StatusBadRequest, invalidTransition.Error())
	}

	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, address.ErrAddressNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, order.ErrForbidden),
		errors.Is(err, address.ErrNotAddressOwner),
		errors.Is(err, catalog.ErrNotProductOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())

	case errors.Is(err, catalog.ErrOutOfStock),
		errors.Is(err, catalog.ErrInsufficientStock),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrCannotCancel),
		errors.Is(err, order.ErrPaymentMethodUnavailable):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
