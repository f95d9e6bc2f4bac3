package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/service"
)

// OrderHandler serves checkout, order history and payment claims.
type OrderHandler struct {
	Orders   *service.OrderService
	Payments *service.PaymentService
}

func NewOrderHandler(orders *service.OrderService, payments *service.PaymentService) *OrderHandler {
	return &OrderHandler{Orders: orders, Payments: payments}
}

// Place checks out the caller's cart, or the explicit items in the body.
func (h *OrderHandler) Place(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in service.OrderInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	o, err := h.Orders.Place(ctx, uid, in)
	if err != nil {
		return fail(c, err, "product")
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Orders.Orders.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, err, "order")
	}
	if list == nil {
		list = []model.Order{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) Get(c echo.Context) error {
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
	o, err := h.Orders.Get(ctx, id, uid, isAdmin(c))
	if err != nil {
		return fail(c, err, "order")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
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
	o, err := h.Orders.Cancel(ctx, id, uid)
	if err != nil {
		return fail(c, err, "order")
	}
	return c.JSON(http.StatusOK, o)
}

// ListAll is the admin order list, filtered by ?status=.
func (h *OrderHandler) ListAll(c echo.Context) error {
	status := strings.TrimSpace(c.QueryParam("status"))
	if status != "" && !model.ValidOrderStatus(status) {
		return badRequest(c, "unknown status")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Orders.Orders.ListAll(ctx, status)
	if err != nil {
		return fail(c, err, "order")
	}
	if list == nil {
		list = []model.Order{}
	}
	return c.JSON(http.StatusOK, list)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrderHandler) SetStatus(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	o, err := h.Orders.Transition(ctx, id, strings.TrimSpace(req.Status))
	if err != nil {
		return fail(c, err, "order")
	}
	return c.JSON(http.StatusOK, o)
}

// ----- payments -----

func (h *OrderHandler) SubmitPayment(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in service.PaymentInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, o, err := h.Payments.Submit(ctx, uid, in)
	if err != nil {
		return fail(c, err, "order")
	}
	return c.JSON(http.StatusCreated, echo.Map{"payment": p, "order_status": o.Status})
}

func (h *OrderHandler) ListPayments(c echo.Context) error {
	status := strings.TrimSpace(c.QueryParam("status"))
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Payments.List(ctx, status)
	if err != nil {
		return fail(c, err, "payment")
	}
	if list == nil {
		list = []model.Payment{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) ListOrderPayments(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	oid, ok := paramID(c, "orderId")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Payments.ListForOrder(ctx, oid, uid, isAdmin(c))
	if err != nil {
		return fail(c, err, "order")
	}
	if list == nil {
		list = []model.Payment{}
	}
	return c.JSON(http.StatusOK, list)
}

// ApprovePayment is open to any signed-in caller at the routing level; the
// service loads the caller's stored role and refuses non-admins.
func (h *OrderHandler) ApprovePayment(c echo.Context) error {
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
	p, o, err := h.Payments.Approve(ctx, uid, id)
	if err != nil {
		return fail(c, err, "payment")
	}
	return c.JSON(http.StatusOK, echo.Map{"payment": p, "order": o})
}

type rejectReq struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) RejectPayment(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req rejectReq
	_ = c.Bind(&req)
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, o, err := h.Payments.Reject(ctx, uid, id, req.Reason)
	if err != nil {
		return fail(c, err, "payment")
	}
	return c.JSON(http.StatusOK, echo.Map{"payment": p, "order": o})
}
