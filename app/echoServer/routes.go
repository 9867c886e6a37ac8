package echoServer

import (
	"bookrental/app/echoServer/controller/book"
	"bookrental/app/echoServer/controller/transaction"
	"bookrental/app/echoServer/controller/user"

	"github.com/labstack/echo/v4"
)

type C struct {
	Book        *book.Controller
	User        *user.Controller
	Transaction *transaction.Controller
}

func Register(e *echo.Echo, c C) {
	// Catalog
	e.GET("/books", c.Book.List)
	e.POST("/books", c.Book.Create)
	e.GET("/books/search", c.Book.SearchByName)
	e.GET("/books/rent-range", c.Book.SearchByRentRange)
	e.GET("/books/filter", c.Book.SearchByCategoryNameRange)

	// Registry
	e.GET("/users", c.User.List)
	e.POST("/users", c.User.Create)

	// Ledger
	e.GET("/transactions", c.Transaction.List)
	e.POST("/transactions/issue", c.Transaction.Issue)
	e.POST("/transactions/return", c.Transaction.Return)
	e.GET("/transactions/book/:bookName", c.Transaction.BookHistory)
	e.GET("/transactions/rent/:bookName", c.Transaction.TotalRent)
	e.GET("/transactions/user/:userIdOrName", c.Transaction.ForUser)
	e.GET("/transactions/issued", c.Transaction.IssuedInRange)
}
