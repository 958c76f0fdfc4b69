package order

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ANJAN672/Ecom/internal/handlers"
	"github.com/ANJAN672/Ecom/internal/models"
	ordersvc "github.com/ANJAN672/Ecom/internal/service/order"
	"github.com/ANJAN672/Ecom/internal/service/token"
)

type OrderHandler struct {
	Orders *ordersvc.Service
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		AddressID     uint   `json:"address_id"`
		PaymentMethod string `json:"payment_method"`
		Notes         string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.AddressID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "address_id is required")
	}
	if req.PaymentMethod == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_method is required")
	}

	ord, err := h.Orders.CreateOrder(c.Request().Context(), userID, ordersvc.CreateOrderInput{
		AddressID:     req.AddressID,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
	})
	if err != nil {
		return handlers.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, ord)
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return handlers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ord, err := h.Orders.FindOne(c.Request().Context(), uint(id), userID)
	if err != nil {
		return handlers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) GetOrderByNumber(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	number := c.Param("orderNumber")
	if number == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order number is required")
	}

	ord, err := h.Orders.FindByOrderNumber(c.Request().Context(), number, userID)
	if err != nil {
		return handlers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ord, err := h.Orders.CancelOrder(c.Request().Context(), userID, uint(id))
	if err != nil {
		return handlers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	ord, err := h.Orders.UpdateStatus(c.Request().Context(), uint(id), models.OrderStatus(req.Status))
	if err != nil {
		return handlers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, ord)
}
