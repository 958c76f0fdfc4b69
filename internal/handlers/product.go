package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ANJAN672/Ecom/internal/service/catalog"
	"github.com/ANJAN672/Ecom/internal/service/token"
	"github.com/ANJAN672/Ecom/internal/util"
)

type ProductHandler struct {
	Catalog *catalog.Service
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	f := catalog.ListFilter{
		Search: c.QueryParam("search"),
		Offset: offset,
		Limit:  limit,
	}
	if v := c.QueryParam("category_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			cid := uint(id)
			f.CategoryID = &cid
		}
	}
	if v := c.QueryParam("in_stock"); v != "" {
		inStock := v == "true" || v == "1"
		f.InStock = &inStock
	}
	if v := c.QueryParam("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &p
		}
	}
	if v := c.QueryParam("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &p
		}
	}

	items, total, err := h.Catalog.List(c.Request().Context(), f)
	if err != nil {
		return HTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) MyProducts(c echo.Context) error {
	sellerID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.Catalog.BySeller(c.Request().Context(), sellerID)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	sellerID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Price <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name and a positive price are required")
	}

	p, err := h.Catalog.Create(c.Request().Context(), sellerID, req)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	sellerID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req catalog.ProductPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.Catalog.Update(c.Request().Context(), sellerID, id, req)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) UpdateStock(c echo.Context) error {
	sellerID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		StockQuantity int `json:"stock_quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.StockQuantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "stock quantity must not be negative")
	}

	p, err := h.Catalog.SetStock(c.Request().Context(), sellerID, id, req.StockQuantity)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	sellerID, err := token.CurrentUserID(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Catalog.Delete(c.Request().Context(), sellerID, id); err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": id})
}
