package cart

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ANJAN672/Ecom/internal/handlers"
	"github.com/ANJAN672/Ecom/internal/mykafka"
	cartsvc "github.com/ANJAN672/Ecom/internal/service/cart"
	"github.com/ANJAN672/Ecom/internal/service/token"
)

type CartHandler struct {
	Cart     *cartsvc.Service
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	cart, err := h.Cart.GetCart(c.Request().Context(), userID)
	if err != nil {
		return handlers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	item, err := h.Cart.AddItem(c.Request().Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return handlers.HTTPError(err)
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.Cart.UpdateQuantity(c.Request().Context(), userID, uint(id), req.Quantity)
	if err != nil {
		return handlers.HTTPError(err)
	}

	h.publish(c, map[string]any{
		"type":         "cart_item_updated",
		"userID":       userID,
		"id":           item.ID,
		"new_quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Cart.RemoveItem(c.Request().Context(), userID, uint(id)); err != nil {
		return handlers.HTTPError(err)
	}

	h.publish(c, map[string]any{
		"type":         "cart_item_deleted",
		"userID":       userID,
		"deleted_item": id,
	})
	return c.JSON(http.StatusOK, map[string]any{"deleted_item": id})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	if err := h.Cart.ClearCart(c.Request().Context(), userID); err != nil {
		return handlers.HTTPError(err)
	}

	h.publish(c, map[string]any{
		"type":   "cart_cleared",
		"userID": userID,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) ValidateForCheckout(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	v, err := h.Cart.ValidateForCheckout(c.Request().Context(), userID)
	if err != nil {
		return handlers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
