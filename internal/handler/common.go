package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/logger"
	"github.com/iliyamo/apparel-studio/internal/middleware"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
	"github.com/iliyamo/apparel-studio/internal/service"
)

// dbTimeout bounds the database work of a single request.
const dbTimeout = 5 * time.Second

// Cache groups invalidated by writes.
const (
	GroupCatalog      = "catalog-products"
	GroupCustomizable = "customizable-products"
	GroupResources    = "canvas-resources"
)

// Invalidator drops a cached response group.
type Invalidator func(ctx context.Context, group string) error

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID extracts the user_id set by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		if t != 0 {
			return t, nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports the role claim.  It gates read access only; payment
// decisions re-check the stored role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get(middleware.CtxRole).(string)
	return role == model.RoleAdmin
}

func paramID(c echo.Context, name string) (uint64, bool) {
	return parseUint(c.Param(name))
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// fail maps service and repository errors to a status and logs the ones
// the client cannot fix.
func fail(c echo.Context, err error, what string) error {
	if msg, ok := validationMessage(err); ok {
		return badRequest(c, msg)
	}
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return badRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionRevoked),
		errors.Is(err, repository.ErrTokenInvalid),
		errors.Is(err, repository.ErrTokenReused):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": what + " already exists"})
	case errors.Is(err, repository.ErrPaymentPending),
		errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	logger.FromEcho(c).Error(what+" request failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func boolQuery(c echo.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func parseUint(raw string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	return n, err == nil && n > 0
}

// validationMessage unwraps a service validation error for the client.
func validationMessage(err error) (string, bool) {
	if !errors.Is(err, service.ErrValidation) {
		return "", false
	}
	return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "), true
}
