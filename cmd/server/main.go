package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ANJAN672/Ecom/internal/config"
	"github.com/ANJAN672/Ecom/internal/es"
	"github.com/ANJAN672/Ecom/internal/handlers"
	carthandler "github.com/ANJAN672/Ecom/internal/handlers/cart"
	orderhandler "github.com/ANJAN672/Ecom/internal/handlers/order"
	"github.com/ANJAN672/Ecom/internal/logging"
	"github.com/ANJAN672/Ecom/internal/mykafka"
	"github.com/ANJAN672/Ecom/internal/service/address"
	"github.com/ANJAN672/Ecom/internal/service/cart"
	"github.com/ANJAN672/Ecom/internal/service/catalog"
	"github.com/ANJAN672/Ecom/internal/service/order"
	"github.com/ANJAN672/Ecom/internal/service/token"
	httpserver "github.com/ANJAN672/Ecom/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LOG_LEVEL)
	slog.SetDefault(log)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	producer := mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
	defer producer.Close()

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Warn("elasticsearch unavailable, search disabled", "error", err)
	}

	tokens := &token.Service{
		DB:            db,
		JWTSecret:     []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
	}
	catalogSvc := catalog.New(db, esClient, producer)
	cartSvc := cart.New(db)
	addressSvc := address.New(db)
	orderSvc := order.New(db, cartSvc, addressSvc, producer)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))

	httpserver.Register(e, httpserver.Deps{
		Tokens:     tokens,
		Auth:       &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: producer},
		Products:   &handlers.ProductHandler{Catalog: catalogSvc},
		Categories: &handlers.CategoryHandler{DB: db},
		Addresses:  &handlers.AddressHandler{Addresses: addressSvc},
		Search:     &handlers.SearchHandler{ES: esClient, Index: es.ProductIndex},
		Cart:       &carthandler.CartHandler{Cart: cartSvc, Producer: producer},
		Orders:     &orderhandler.OrderHandler{Orders: orderSvc},
	})

	srv := &http.Server{
		Addr:              cfg.HTTP_ADDR,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("starting server", "addr", cfg.HTTP_ADDR)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
