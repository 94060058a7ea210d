package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jmsantos/tindahan/internal/config"
	"github.com/jmsantos/tindahan/internal/es"
	"github.com/jmsantos/tindahan/internal/events"
	"github.com/jmsantos/tindahan/internal/handlers"
	"github.com/jmsantos/tindahan/internal/hash"
	"github.com/jmsantos/tindahan/internal/logging"
	authmw "github.com/jmsantos/tindahan/internal/middleware/auth"
	"github.com/jmsantos/tindahan/internal/repo"
	"github.com/jmsantos/tindahan/internal/service"
	"github.com/jmsantos/tindahan/internal/tokens"
	httpserver "github.com/jmsantos/tindahan/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var producer *events.Producer
	if cfg.KafkaAddress != "" {
		producer = events.NewProducer([]string{cfg.KafkaAddress})
	} else {
		logger.Warn("KAFKA_ADDRESS not set, domain events disabled")
	}

	var searchHandler *handlers.SearchHandler
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(es.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
		})
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchHandler = handlers.NewSearchHandler(esClient, "products")
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	store := repo.New(db)
	guard := service.NewGuard(store, hash.NewBcrypt(), tokens.NewSigner([]byte(cfg.JWTSecret)))
	usersSvc := service.NewUserService(store)
	catalog := service.NewCatalogService(store)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:     handlers.NewAuthHandler(guard, producer),
		Users:    handlers.NewUserHandler(usersSvc, guard),
		Products: handlers.NewProductHandler(catalog, producer),
		Cart:     handlers.NewCartHandler(store, catalog, producer),
		Search:   searchHandler,
		MW:       authmw.New(guard),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
