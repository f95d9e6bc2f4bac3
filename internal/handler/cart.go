package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/service"
)

// CartHandler serves /api/cart and /api/favorites.
type CartHandler struct {
	Cart      *service.CartService
	Favorites *service.FavoriteService
}

func NewCartHandler(cart *service.CartService, favs *service.FavoriteService) *CartHandler {
	return &CartHandler{Cart: cart, Favorites: favs}
}

func (h *CartHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	cart, err := h.Cart.Get(ctx, uid)
	if err != nil {
		return fail(c, err, "cart")
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var ref service.LineRef
	if err := c.Bind(&ref); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	item, err := h.Cart.Add(ctx, uid, ref)
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusCreated, item)
}

type quantityReq struct {
	Quantity *int `json:"quantity"`
}

// SetQuantity overwrites a line's quantity; zero or less removes it.
func (h *CartHandler) SetQuantity(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req quantityReq
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return badRequest(c, "quantity required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	item, err := h.Cart.Cart.SetQuantity(ctx, id, uid, *req.Quantity)
	if err != nil {
		return fail(c, err, "cart item")
	}
	if item == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Cart.Cart.Delete(ctx, id, uid); err != nil {
		return fail(c, err, "cart item")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) Clear(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Cart.Cart.Clear(ctx, uid); err != nil {
		return fail(c, err, "cart")
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- favorites -----

type toggleReq struct {
	ProductType string `json:"product_type"`
	ProductID   uint64 `json:"product_id"`
}

func (h *CartHandler) ToggleFavorite(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req toggleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if !model.ValidProductType(req.ProductType) || req.ProductID == 0 {
		return badRequest(c, "product_type must be catalog or customizable and product_id is required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	on, err := h.Favorites.Toggle(ctx, uid, req.ProductType, req.ProductID)
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusOK, echo.Map{"favorited": on})
}

func (h *CartHandler) ListFavorites(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Favorites.Favorites.List(ctx, uid)
	if err != nil {
		return fail(c, err, "favorite")
	}
	if list == nil {
		list = []model.Favorite{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CartHandler) RemoveFavorite(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	pt := c.Param("productType")
	pid, ok := paramID(c, "productId")
	if !model.ValidProductType(pt) || !ok {
		return badRequest(c, "invalid product reference")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Favorites.Favorites.Remove(ctx, uid, pt, pid); err != nil {
		return fail(c, err, "favorite")
	}
	return c.NoContent(http.StatusNoContent)
}
