package order

import (
	"errors"
	"fmt"

	"github.com/ANJAN672/Ecom/internal/models"
	"github.com/ANJAN672/Ecom/internal/service/cart"
)

var (
	ErrOrderNotFound            = errors.New("order not found")
	ErrForbidden                = errors.New("you can only view your own orders")
	ErrEmptyCart                = errors.New("your cart is empty")
	ErrCannotCancel             = errors.New("cannot cancel order")
	ErrPaymentMethodUnavailable = errors.New("payment method unavailable")
)

// CartInvalidError carries the per-line issue list so callers can show the
// customer exactly what changed.
type CartInvalidError struct {
	Issues []cart.StockIssue
}

func (e *CartInvalidError) Error() string {
	return fmt.Sprintf("some items in your cart are unavailable (%d issue(s))", len(e.Issues))
}

// InvalidTransitionError names both statuses involved.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}
