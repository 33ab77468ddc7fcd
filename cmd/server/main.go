package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/bootstrap"
	"github.com/tracknest/ticket-tracker/internal/config"
	"github.com/tracknest/ticket-tracker/internal/database"
	"github.com/tracknest/ticket-tracker/internal/handler"
	"github.com/tracknest/ticket-tracker/internal/queue"
	"github.com/tracknest/ticket-tracker/internal/repository"
	"github.com/tracknest/ticket-tracker/internal/router"
)

func main() {
	_ = godotenv.Load() // optional .env for local runs
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil disables rate limiting and caching
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	codec := auth.NewCodec(cfg.JWTSecret, time.Duration(cfg.TokenTTLMin)*time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrap.EnsureAdmin(ctx, repository.NewUserRepo(db), cfg); err != nil {
		cancel()
		log.Fatalf("bootstrap: %v", err)
	}
	cancel()

	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	router.RegisterRoutes(e, db, rdb, codec, cfg)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
