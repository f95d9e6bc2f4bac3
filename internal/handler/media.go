package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/imagehost"
	"github.com/iliyamo/apparel-studio/internal/logger"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
	"github.com/iliyamo/apparel-studio/internal/service"
)

// MediaHandler serves uploads to the image host and the canvas resource
// catalogue built on top of it.
type MediaHandler struct {
	Images     *service.ImageService
	Resources  *repository.CanvasResourceRepo
	MaxBytes   int64
	Invalidate Invalidator
}

func NewMediaHandler(images *service.ImageService, resources *repository.CanvasResourceRepo, maxBytes int64, inv Invalidator) *MediaHandler {
	return &MediaHandler{Images: images, Resources: resources, MaxBytes: maxBytes, Invalidate: inv}
}

// upload streams the multipart "file" field to folder.
func (h *MediaHandler) upload(c echo.Context, folder string) (imagehost.Asset, int, string) {
	fh, err := c.FormFile("file")
	if err != nil {
		return imagehost.Asset{}, http.StatusBadRequest, "file required"
	}
	if h.MaxBytes > 0 && fh.Size > h.MaxBytes {
		return imagehost.Asset{}, http.StatusRequestEntityTooLarge, "file too large"
	}
	src, err := fh.Open()
	if err != nil {
		return imagehost.Asset{}, http.StatusBadRequest, "unreadable file"
	}
	defer func() { _ = src.Close() }()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 4*dbTimeout)
	defer cancel()
	asset, err := h.Images.Upload(ctx, folder, fh.Filename, contentType(fh), src, fh.Size)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return imagehost.Asset{}, http.StatusBadRequest, msg
		}
		logger.FromEcho(c).Error("image upload failed", zap.String("folder", folder), zap.Error(err))
		return imagehost.Asset{}, http.StatusBadGateway, "image host unavailable"
	}
	return asset, 0, ""
}

func contentType(fh *multipart.FileHeader) string {
	return fh.Header.Get(echo.HeaderContentType)
}

// customerFolders are the upload targets open to non-admin accounts.
var customerFolders = map[string]bool{"previews": true, "designs": true}

// Upload handles POST /api/cloudinary/upload.
func (h *MediaHandler) Upload(c echo.Context) error {
	folder := strings.TrimSpace(c.FormValue("folder"))
	if imagehost.ValidFolder(folder) && !customerFolders[folder] && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	asset, status, msg := h.upload(c, folder)
	if status != 0 {
		return c.JSON(status, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusCreated, asset)
}

// DestroyImage deletes one object.  A failed delete is queued and answered
// with 202.
func (h *MediaHandler) DestroyImage(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	queued, err := h.Images.Destroy(ctx, strings.TrimSpace(c.QueryParam("public_id")))
	if err != nil {
		return fail(c, err, "image")
	}
	if queued {
		return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MediaHandler) DeleteFolder(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 6*dbTimeout)
	defer cancel()
	n, err := h.Images.DeleteFolder(ctx, strings.TrimSpace(c.QueryParam("folder")))
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return badRequest(c, msg)
		}
		logger.FromEcho(c).Error("folder delete failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "image host unavailable", "deleted": n})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// ----- canvas resources -----

func (h *MediaHandler) ListResources(c echo.Context) error {
	kind := strings.TrimSpace(c.QueryParam("kind"))
	if kind != "" && kind != model.ResourceGraphic && kind != model.ResourcePattern {
		return badRequest(c, "kind must be graphic or pattern")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Resources.List(ctx, kind)
	if err != nil {
		return fail(c, err, "canvas resource")
	}
	if list == nil {
		list = []model.CanvasResource{}
	}
	return c.JSON(http.StatusOK, list)
}

var resourceFolders = map[string]string{
	model.ResourceGraphic: "graphics",
	model.ResourcePattern: "patterns",
}

// CreateResource uploads the file and records it.  The upload is undone
// when the record cannot be stored.
func (h *MediaHandler) CreateResource(c echo.Context) error {
	kind := strings.TrimSpace(c.FormValue("kind"))
	folder, ok := resourceFolders[kind]
	if !ok {
		return badRequest(c, "kind must be graphic or pattern")
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return badRequest(c, "name required")
	}
	asset, status, msg := h.upload(c, folder)
	if status != 0 {
		return c.JSON(status, echo.Map{"error": msg})
	}

	res := &model.CanvasResource{
		Kind:     kind,
		Name:     name,
		Category: strings.TrimSpace(c.FormValue("category")),
		URL:      asset.URL,
		PublicID: asset.PublicID,
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Resources.Create(ctx, res); err != nil {
		if _, dErr := h.Images.Destroy(context.WithoutCancel(ctx), asset.PublicID); dErr != nil {
			logger.FromEcho(c).Warn("orphan upload not cleaned", zap.String("public_id", asset.PublicID), zap.Error(dErr))
		}
		return fail(c, err, "canvas resource")
	}
	h.invalidate(c)
	return c.JSON(http.StatusCreated, res)
}

func (h *MediaHandler) DeleteResource(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	queued, err := h.Resources.Delete(ctx, id)
	if err != nil {
		return fail(c, err, "canvas resource")
	}
	h.Images.Cleanup(ctx, queued)
	h.invalidate(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *MediaHandler) invalidate(c echo.Context) {
	if h.Invalidate == nil {
		return
	}
	if err := h.Invalidate(context.WithoutCancel(c.Request().Context()), GroupResources); err != nil {
		logger.FromEcho(c).Warn("cache invalidation failed", zap.String("group", GroupResources), zap.Error(err))
	}
}
