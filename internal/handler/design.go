package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
	"github.com/iliyamo/apparel-studio/internal/service"
)

// DesignHandler serves the working draft and the saved-design library of
// the authenticated user.
type DesignHandler struct {
	Designs *service.DesignService
}

func NewDesignHandler(designs *service.DesignService) *DesignHandler {
	return &DesignHandler{Designs: designs}
}

// SaveCurrent upserts the draft for (user, product).
func (h *DesignHandler) SaveCurrent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in service.DesignInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	d, err := h.Designs.SaveCurrent(ctx, uid, in)
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DesignHandler) GetCurrent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	pid, ok := paramID(c, "productId")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	d, err := h.Designs.Designs.GetCurrent(ctx, uid, pid)
	if err != nil {
		return fail(c, err, "design")
	}
	return c.JSON(http.StatusOK, d)
}

// LastUsed returns the most recently saved draft across products.
func (h *DesignHandler) LastUsed(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	d, err := h.Designs.Designs.LastUsed(ctx, uid)
	if err != nil {
		return fail(c, err, "design")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DesignHandler) DeleteCurrent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	pid, ok := paramID(c, "productId")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Designs.Designs.DeleteCurrent(ctx, uid, pid); err != nil {
		return fail(c, err, "design")
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- library -----

func (h *DesignHandler) CreateSaved(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in service.DesignInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	d, err := h.Designs.SaveToLibrary(ctx, uid, in)
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DesignHandler) ListSaved(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	f := repository.SavedFilter{}
	if raw := c.QueryParam("product_id"); raw != "" {
		pid, ok := parseUint(raw)
		if !ok {
			return badRequest(c, "invalid product_id")
		}
		f.ProductID = pid
	}
	fav, ok := boolQuery(c, "favorite")
	if !ok {
		return badRequest(c, "favorite must be a boolean")
	}
	f.Favorite = fav

	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Designs.Designs.ListSaved(ctx, uid, f)
	if err != nil {
		return fail(c, err, "design")
	}
	if list == nil {
		list = []model.SavedDesign{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *DesignHandler) GetSaved(c echo.Context) error {
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
	d, err := h.Designs.Designs.GetSaved(ctx, id, uid)
	if err != nil {
		return fail(c, err, "design")
	}
	return c.JSON(http.StatusOK, d)
}

type renameReq struct {
	Name string `json:"name"`
}

func (h *DesignHandler) RenameSaved(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req renameReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	d, err := h.Designs.Rename(ctx, id, uid, req.Name)
	if err != nil {
		return fail(c, err, "design")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DesignHandler) ToggleFavorite(c echo.Context) error {
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
	d, err := h.Designs.Designs.ToggleSavedFavorite(ctx, id, uid)
	if err != nil {
		return fail(c, err, "design")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DesignHandler) DeleteSaved(c echo.Context) error {
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
	if err := h.Designs.Designs.DeleteSaved(ctx, id, uid); err != nil {
		return fail(c, err, "design")
	}
	return c.NoContent(http.StatusNoContent)
}
