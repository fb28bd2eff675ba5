package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-reservation/internal/config"
	"github.com/iliyamo/travel-reservation/internal/database"
	"github.com/iliyamo/travel-reservation/internal/handler"
	"github.com/iliyamo/travel-reservation/internal/middleware"
	"github.com/iliyamo/travel-reservation/internal/queue"
	"github.com/iliyamo/travel-reservation/internal/repository"
	"github.com/iliyamo/travel-reservation/internal/router"
	"github.com/iliyamo/travel-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	if cfg.SeedOnStart {
		if err := database.Seed(ctx, db); err != nil {
			log.Printf("seed: %v", err)
		}
	}
	cancel()

	// Redis is optional. A nil client disables rate limiting, response
	// caching and the country cache but never blocks startup.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	destinations := repository.NewDestinationRepo(db)
	packages := repository.NewPackageRepo(db)
	reservations := repository.NewReservationRepo(db)

	booking := service.NewBookingService(db, packages, destinations, reservations)
	countries := service.NewCountryService(rdb)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	browseH := handler.NewBrowseHandler(destinations, packages, countries)
	reserveH := handler.NewReservationHandler(booking, users, destinations, packages)
	adminH := handler.NewAdminHandler(booking)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, browseH, config.LoadCacheConfig(), rdb)
	router.RegisterCustomer(e, reserveH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Drains confirmation events into logs/reservations.log and keeps
	// retrying when the broker is down.
	go queue.StartReservationConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
