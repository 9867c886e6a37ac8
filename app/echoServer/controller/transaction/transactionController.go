package transaction

import (
	"log/slog"
	"net/http"
	"strconv"

	"bookrental/model"
	ts "bookrental/service/transaction"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ts.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /transactions
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		h.Log.Error("transaction list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no transactions"})
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /transactions/issue
func (h *Controller) Issue(c echo.Context) error {
	var req IssueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "issue_date must be a valid date"})
	}

	book := model.ByName(req.BookName)
	if req.BookID > 0 {
		book = model.ByID(req.BookID)
	}
	user := model.ByName(req.UserName)
	if req.UserID > 0 {
		user = model.ByID(req.UserID)
	}

	id, err := h.Svc.Issue(c.Request().Context(), book, user, issueDate)
	if err != nil {
		return h.fail(c, "transaction issue", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"transaction_id": id})
}

// POST /transactions/return
func (h *Controller) Return(c echo.Context) error {
	var req ReturnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	returnDate, err := parseDate(req.ReturnDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "return_date must be a valid date"})
	}

	out, err := h.Svc.Return(c.Request().Context(), req.TransactionID, returnDate)
	if err != nil {
		return h.fail(c, "transaction return", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /transactions/book/:bookName
func (h *Controller) BookHistory(c echo.Context) error {
	name := c.Param("bookName")
	out, err := h.Svc.BookHistory(c.Request().Context(), name)
	if err != nil {
		return h.fail(c, "book history", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /transactions/rent/:bookName
func (h *Controller) TotalRent(c echo.Context) error {
	name := c.Param("bookName")
	total, err := h.Svc.TotalRentForBook(c.Request().Context(), name)
	if err != nil {
		return h.fail(c, "total rent", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"book_name": name, "total_rent": total})
}

// GET /transactions/user/:userIdOrName
func (h *Controller) ForUser(c echo.Context) error {
	raw := c.Param("userIdOrName")
	ident := model.ByName(raw)
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		ident = model.ByID(id)
	}
	rows, err := h.Svc.ForUser(c.Request().Context(), ident)
	if err != nil {
		return h.fail(c, "user transactions", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /transactions/issued?startDate=&endDate=
func (h *Controller) IssuedInRange(c echo.Context) error {
	startStr, endStr := c.QueryParam("startDate"), c.QueryParam("endDate")
	if startStr == "" || endStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "startDate and endDate are required"})
	}
	start, err := parseDate(startStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "startDate must be a valid date"})
	}
	end, err := parseDate(endStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "endDate must be a valid date"})
	}
	rows, err := h.Svc.IssuedInRange(c.Request().Context(), start, end)
	if err != nil {
		return h.fail(c, "issued in range", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// fail maps service error codes onto the HTTP contract.
func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch ts.Code(err) {
	case ts.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	case ts.ErrInvalidRange:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date range"})
	case ts.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case ts.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case ts.ErrTxnNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "transaction not found"})
	case ts.ErrNoTransactions:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no transactions"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
