package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/logger"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
	"github.com/iliyamo/apparel-studio/internal/service"
)

// ProductHandler serves both product families.  Reads are public and
// cached; writes are admin-only and drop the family's cache group.
type ProductHandler struct {
	Products   *service.ProductService
	Invalidate Invalidator
}

func NewProductHandler(products *service.ProductService, inv Invalidator) *ProductHandler {
	return &ProductHandler{Products: products, Invalidate: inv}
}

func productFilter(c echo.Context) (repository.ProductFilter, bool) {
	active, ok := boolQuery(c, "active")
	return repository.ProductFilter{Category: strings.TrimSpace(c.QueryParam("category")), Active: active}, ok
}

func (h *ProductHandler) invalidate(c echo.Context, group string) {
	if h.Invalidate == nil {
		return
	}
	if err := h.Invalidate(context.WithoutCancel(c.Request().Context()), group); err != nil {
		logger.FromEcho(c).Warn("cache invalidation failed", zap.String("group", group), zap.Error(err))
	}
}

// ----- catalog -----

func (h *ProductHandler) ListCatalog(c echo.Context) error {
	f, ok := productFilter(c)
	if !ok {
		return badRequest(c, "active must be a boolean")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Products.Catalog.List(ctx, f)
	if err != nil {
		return fail(c, err, "product")
	}
	if items == nil {
		items = []model.CatalogProduct{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetCatalog(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Products.Catalog.GetByID(ctx, id)
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) GetCatalogBySlug(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Products.Catalog.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) CreateCatalog(c echo.Context) error {
	var p model.CatalogProduct
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "invalid body")
	}
	p.ID = 0
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Products.CreateCatalog(ctx, &p); err != nil {
		return fail(c, err, "product")
	}
	h.invalidate(c, GroupCatalog)
	return c.JSON(http.StatusCreated, p)
}

// UpdateCatalog replaces the product.  Omitting "images" keeps the
// current image set.
func (h *ProductHandler) UpdateCatalog(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var p model.CatalogProduct
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "invalid body")
	}
	p.ID = id
	images := p.Images
	p.Images = nil

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Products.UpdateCatalog(ctx, &p, images); err != nil {
		return fail(c, err, "product")
	}
	h.invalidate(c, GroupCatalog)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteCatalog(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Products.DeleteCatalog(ctx, id); err != nil {
		return fail(c, err, "product")
	}
	h.invalidate(c, GroupCatalog)
	return c.NoContent(http.StatusNoContent)
}

// ----- customizable -----

func (h *ProductHandler) ListCustomizable(c echo.Context) error {
	f, ok := productFilter(c)
	if !ok {
		return badRequest(c, "active must be a boolean")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Products.Customizable.List(ctx, f)
	if err != nil {
		return fail(c, err, "product")
	}
	if items == nil {
		items = []model.CustomizableProduct{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetCustomizable(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Products.Customizable.GetByID(ctx, id)
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) GetCustomizableBySlug(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Products.Customizable.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusOK, p)
}

// PriceCustomizable quotes one unit for ?size= and ?sides=.
func (h *ProductHandler) PriceCustomizable(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	sides := 1
	if raw := c.QueryParam("sides"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "sides must be a number")
		}
		sides = n
	}
	size := strings.TrimSpace(c.QueryParam("size"))

	ctx, cancel := dbCtx(c)
	defer cancel()
	price, err := h.Products.Price(ctx, id, size, sides)
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"product_id": id,
		"size":       size,
		"sides":      sides,
		"unit_price": price,
	})
}

func (h *ProductHandler) CreateCustomizable(c echo.Context) error {
	var p model.CustomizableProduct
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "invalid body")
	}
	p.ID = 0
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Products.CreateCustomizable(ctx, &p); err != nil {
		return fail(c, err, "product")
	}
	h.invalidate(c, GroupCustomizable)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateCustomizable(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var p model.CustomizableProduct
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "invalid body")
	}
	p.ID = id
	images := p.Images
	p.Images = nil

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Products.UpdateCustomizable(ctx, &p, images); err != nil {
		return fail(c, err, "product")
	}
	h.invalidate(c, GroupCustomizable)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteCustomizable(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Products.DeleteCustomizable(ctx, id); err != nil {
		return fail(c, err, "product")
	}
	h.invalidate(c, GroupCustomizable)
	return c.NoContent(http.StatusNoContent)
}
