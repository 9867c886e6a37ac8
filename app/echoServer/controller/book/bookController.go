package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	booksvc "bookrental/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []booksvc.Book{}
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /books
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  echo.Map{"name": "required", "category": "required", "rent_per_day": "gte 0"},
		})
	}
	b, err := h.Svc.Create(c.Request().Context(), req.Name, req.Category, *req.RentPerDay)
	if err != nil {
		if errors.Is(err, booksvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
		}
		h.Log.Error("book create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /books/search?name=
func (h *Controller) SearchByName(c echo.Context) error {
	term := c.QueryParam("name")
	if term == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name is required"})
	}
	rows, err := h.Svc.SearchByName(c.Request().Context(), term)
	return h.searchResult(c, rows, err)
}

// GET /books/rent-range?minRent=&maxRent=
func (h *Controller) SearchByRentRange(c echo.Context) error {
	minRent, maxRent, ok := rentBounds(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "minRent and maxRent are required numbers"})
	}
	rows, err := h.Svc.SearchByRentRange(c.Request().Context(), minRent, maxRent)
	return h.searchResult(c, rows, err)
}

// GET /books/filter?category=&name=&minRent=&maxRent=
func (h *Controller) SearchByCategoryNameRange(c echo.Context) error {
	category := c.QueryParam("category")
	term := c.QueryParam("name")
	minRent, maxRent, ok := rentBounds(c)
	if category == "" || term == "" || !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "category, name, minRent and maxRent are required"})
	}
	rows, err := h.Svc.SearchByCategoryNameRange(c.Request().Context(), category, term, minRent, maxRent)
	return h.searchResult(c, rows, err)
}

func rentBounds(c echo.Context) (minRent, maxRent float64, ok bool) {
	minStr, maxStr := c.QueryParam("minRent"), c.QueryParam("maxRent")
	if minStr == "" || maxStr == "" {
		return 0, 0, false
	}
	minRent, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return 0, 0, false
	}
	maxRent, err = strconv.ParseFloat(maxStr, 64)
	if err != nil {
		return 0, 0, false
	}
	return minRent, maxRent, true
}

// searchResult maps an empty result to 404, the contract for all searches.
func (h *Controller) searchResult(c echo.Context, rows []booksvc.Book, err error) error {
	if err != nil {
		if errors.Is(err, booksvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid search parameters"})
		}
		h.Log.Error("book search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no books matched"})
	}
	return c.JSON(http.StatusOK, rows)
}
