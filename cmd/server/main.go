package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/campusnav/campus-navigator/internal/config"
	"github.com/campusnav/campus-navigator/internal/database"
	"github.com/campusnav/campus-navigator/internal/handler"
	"github.com/campusnav/campus-navigator/internal/queue"
	"github.com/campusnav/campus-navigator/internal/repository"
	"github.com/campusnav/campus-navigator/internal/router"
)

func main() {
	// Load a local .env when present; real deployments set the environment
	// directly, so a missing file is not an error.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; with no client the cache and rate limiter degrade
	// to pass-through middleware.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	places := repository.NewPlaceRepo(db)
	parking := repository.NewParkingRepo(db)
	locations := repository.NewLocationRepo(db)
	refs := repository.NewReferenceRepo(db)

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users),
		Place:     handler.NewPlaceHandler(places),
		Approval:  handler.NewApprovalHandler(places),
		Parking:   handler.NewParkingHandler(parking),
		Location:  handler.NewLocationHandler(locations),
		Reference: handler.NewReferenceHandler(refs),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, h, cfg, rdb, users)

	// Moderation consumer runs for the lifetime of the process and handles
	// broker reconnects itself.
	go func() {
		if err := queue.StartModerationConsumer(); err != nil {
			log.Printf("moderation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
