package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ANJAN672/Ecom/internal/service/address"
	"github.com/ANJAN672/Ecom/internal/service/token"
)

type AddressHandler struct {
	Addresses *address.Service
}

func (h *AddressHandler) Create(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req address.Input
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.FullName == "" || req.Phone == "" || req.Line1 == "" || req.City == "" || req.State == "" || req.PostCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "all address fields except line2 are required")
	}

	addr, err := h.Addresses.Create(c.Request().Context(), userID, req)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusCreated, addr)
}

func (h *AddressHandler) List(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	addrs, err := h.Addresses.List(c.Request().Context(), userID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, addrs)
}

func (h *AddressHandler) Default(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	addr, err := h.Addresses.Default(c.Request().Context(), userID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *AddressHandler) Get(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	addr, err := h.Addresses.Get(c.Request().Context(), id, userID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *AddressHandler) Update(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req address.Input
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	addr, err := h.Addresses.Update(c.Request().Context(), id, userID, req)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	addr, err := h.Addresses.SetDefault(c.Request().Context(), id, userID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *AddressHandler) Delete(c echo.Context) error {
	userID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Addresses.Delete(c.Request().Context(), id, userID); err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": id})
}
