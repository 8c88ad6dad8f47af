package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/config"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/database"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/handler"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/middleware"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/queue"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/repository"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/router"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	students := repository.NewStudentRepo(db)
	devices := repository.NewDeviceRepo(db)
	sessions := repository.NewSessionRepo(db)

	// One-shot cleanup of leftover expired sessions; Get handles the
	// rest lazily.
	if n, err := sessions.DeleteExpired(context.Background()); err != nil {
		log.Printf("session cleanup: %v", err)
	} else if n > 0 {
		log.Printf("session cleanup: removed %d expired sessions", n)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	audit := service.NewAuditPublisher(cfg.AMQPURL)
	go queue.StartAuditConsumer(cfg.AMQPURL)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))

	auth := handler.NewAuthHandler(cfg, users, sessions, audit)
	studentHandler := handler.NewStudentHandler(students)
	deviceHandler := handler.NewDeviceHandler(devices, audit)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, limiter)
	router.RegisterStudents(e, studentHandler, sessions, users)
	router.RegisterDevices(e, deviceHandler, sessions, users)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
