package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/apparel-studio/internal/metrics"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
	"github.com/iliyamo/apparel-studio/internal/service"
)

// AdminHandler serves the back-office: ledger, inventory and legacy admin
// provisioning.  Every route is behind RequireRole(admin).
type AdminHandler struct {
	Ledger      *repository.LedgerRepo
	Inventory   *repository.InventoryRepo
	Users       *repository.UserRepo
	LegacyUsers *repository.LegacyUserRepo
	Legacy      *service.LegacyService
}

func NewAdminHandler(ledger *repository.LedgerRepo, inv *repository.InventoryRepo, users *repository.UserRepo, legacyRepo *repository.LegacyUserRepo, legacy *service.LegacyService) *AdminHandler {
	return &AdminHandler{Ledger: ledger, Inventory: inv, Users: users, LegacyUsers: legacyRepo, Legacy: legacy}
}

// ----- ledger -----

func (h *AdminHandler) ListLedger(c echo.Context) error {
	kind := strings.TrimSpace(c.QueryParam("kind"))
	if kind != "" && kind != model.LedgerIncome && kind != model.LedgerExpense {
		return badRequest(c, "kind must be income or expense")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Ledger.List(ctx, kind)
	if err != nil {
		return fail(c, err, "ledger entry")
	}
	if list == nil {
		list = []model.LedgerEntry{}
	}
	return c.JSON(http.StatusOK, list)
}

type expenseReq struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OccurredAt  *time.Time      `json:"occurred_at"`
}

// CreateExpense books an expense.  Incomes only come from approved
// payments.
func (h *AdminHandler) CreateExpense(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req expenseReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if !req.Amount.IsPositive() {
		return badRequest(c, "amount must be positive")
	}
	if strings.TrimSpace(req.Description) == "" {
		return badRequest(c, "description required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return fail(c, err, "user")
	}
	recorder, err := h.LegacyUsers.ResolveRecorder(ctx, u.Email)
	if err != nil {
		return fail(c, err, "ledger entry")
	}
	e := &model.LedgerEntry{
		Kind:        model.LedgerExpense,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		RecordedBy:  recorder,
		OccurredAt:  time.Now().UTC(),
	}
	if req.OccurredAt != nil {
		e.OccurredAt = req.OccurredAt.UTC()
	}
	if err := h.Ledger.Create(ctx, e); err != nil {
		return fail(c, err, "ledger entry")
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *AdminHandler) LedgerSummary(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	s, err := h.Ledger.Summary(ctx)
	if err != nil {
		return fail(c, err, "ledger")
	}
	return c.JSON(http.StatusOK, s)
}

// ----- inventory -----

func (h *AdminHandler) ListInventory(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Inventory.List(ctx, strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		return fail(c, err, "inventory item")
	}
	if list == nil {
		list = []model.InventoryItem{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) LowStock(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Inventory.LowStock(ctx)
	if err != nil {
		return fail(c, err, "inventory item")
	}
	if list == nil {
		list = []model.InventoryItem{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) GetInventory(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	it, err := h.Inventory.Get(ctx, id)
	if err != nil {
		return fail(c, err, "inventory item")
	}
	return c.JSON(http.StatusOK, it)
}

func validInventory(it *model.InventoryItem) string {
	it.Name = strings.TrimSpace(it.Name)
	switch {
	case it.Name == "":
		return "name required"
	case it.Stock < 0 || it.MinLevel < 0:
		return "stock and min_level must not be negative"
	case it.UnitCost.IsNegative():
		return "unit_cost must not be negative"
	}
	return ""
}

func (h *AdminHandler) CreateInventory(c echo.Context) error {
	var it model.InventoryItem
	if err := c.Bind(&it); err != nil {
		return badRequest(c, "invalid body")
	}
	if msg := validInventory(&it); msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Inventory.Create(ctx, &it); err != nil {
		return fail(c, err, "inventory item")
	}
	metrics.SetInventoryLevel(it.Name, it.Stock)
	return c.JSON(http.StatusCreated, it)
}

func (h *AdminHandler) UpdateInventory(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var it model.InventoryItem
	if err := c.Bind(&it); err != nil {
		return badRequest(c, "invalid body")
	}
	it.ID = id
	if msg := validInventory(&it); msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Inventory.Update(ctx, &it); err != nil {
		return fail(c, err, "inventory item")
	}
	metrics.SetInventoryLevel(it.Name, it.Stock)
	return c.JSON(http.StatusOK, it)
}

type adjustReq struct {
	Delta int `json:"delta"`
}

func (h *AdminHandler) AdjustInventory(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req adjustReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Delta == 0 {
		return badRequest(c, "delta must not be zero")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	it, err := h.Inventory.Adjust(ctx, id, req.Delta)
	if err != nil {
		return fail(c, err, "inventory item")
	}
	metrics.SetInventoryLevel(it.Name, it.Stock)
	return c.JSON(http.StatusOK, it)
}

func (h *AdminHandler) DeleteInventory(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	it, err := h.Inventory.Get(ctx, id)
	if err != nil {
		return fail(c, err, "inventory item")
	}
	if err := h.Inventory.Delete(ctx, id); err != nil {
		return fail(c, err, "inventory item")
	}
	metrics.ForgetInventoryItem(it.Name)
	return c.NoContent(http.StatusNoContent)
}

// ----- legacy provisioning -----

type provisionReq struct {
	Email string `json:"email"`
}

// ProvisionLegacy ensures a legacy_users admin row for an admin account;
// the caller's own email is used when the body names none.
func (h *AdminHandler) ProvisionLegacy(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req provisionReq
	_ = c.Bind(&req)
	ctx, cancel := dbCtx(c)
	defer cancel()

	email := strings.TrimSpace(req.Email)
	if email == "" {
		u, err := h.Users.GetByID(ctx, uid)
		if err != nil {
			return fail(c, err, "user")
		}
		email = u.Email
	}
	row, err := h.Legacy.ProvisionAdmin(ctx, email, false)
	if err != nil {
		return fail(c, err, "user")
	}
	return c.JSON(http.StatusOK, row)
}
