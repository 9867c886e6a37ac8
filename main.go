// Package main book-rental API.
//
// Catalog of books, registry of users and a rental ledger of
// issue/return transactions with per-day rent computation.
package main

import (
	"context"
	"log/slog"
	"os"

	"bookrental/app/echoServer"
	bookctrl "bookrental/app/echoServer/controller/book"
	txnctrl "bookrental/app/echoServer/controller/transaction"
	userctrl "bookrental/app/echoServer/controller/user"
	"bookrental/app/echoServer/validation"
	"bookrental/config"
	bookrepo "bookrental/repository/book"
	txnrepo "bookrental/repository/transaction"
	userrepo "bookrental/repository/user"
	booksvc "bookrental/service/book"
	txnsvc "bookrental/service/transaction"
	usersvc "bookrental/service/user"
	"bookrental/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

func main() {

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}
	ctx := context.Background()

	// schema
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	// DB: shared pgx pool
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	br := bookrepo.New(db)
	ur := userrepo.New(db)
	tr := txnrepo.New(db)

	// services; the ledger sees the catalog and registry as lookups only
	bs := booksvc.New(br)
	us := usersvc.New(ur)
	tsvc := txnsvc.New(tr, br, ur)

	// controllers
	v := validator.New()
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	txnC := &txnctrl.Controller{Svc: tsvc, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = echoServer.JSONSerializer{}
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	echoServer.Register(e, echoServer.C{
		Book:        bookC,
		User:        userC,
		Transaction: txnC,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
