package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/rafaeldutra/agenda-api/internal/booking"    // Slot planner and booking rules
	"github.com/rafaeldutra/agenda-api/internal/config"     // Internal config loader
	"github.com/rafaeldutra/agenda-api/internal/database"   // MySQL connection helper
	"github.com/rafaeldutra/agenda-api/internal/handler"    // HTTP handlers
	"github.com/rafaeldutra/agenda-api/internal/middleware" // Rate limiting and caching middleware
	"github.com/rafaeldutra/agenda-api/internal/queue"      // Booking events consumer
	"github.com/rafaeldutra/agenda-api/internal/repository" // DB repositories
	"github.com/rafaeldutra/agenda-api/internal/router"     // Route registration
)

func main() {
	// Load .env if present; in production the environment is set directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment directly")
	}

	cfg := config.Load()           // Load environment config
	template := cfg.SlotTemplate() // Parse the daily slot template (fatal on bad SLOT_TIMES)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Repositories over the shared connection pool.
	services := repository.NewServiceRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// The planner owns availability and booking validation; repositories
	// satisfy its store and catalog interfaces.
	planner := booking.New(bookings, services, template)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiting and response caching.  A nil client (Redis
	// unreachable) disables both and the API still serves requests.
	var rateLimit, cache echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		rateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	} else {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(services, bookings, planner, cfg.WhatsAppNumber), rateLimit, cache)
	router.RegisterStaff(e, handler.NewStaffHandler(bookings, services, planner, cfg.WhatsAppNumber, cfg.RetentionDays), cfg.JWTSecret)

	// Consume booking.created events in the background.  The consumer
	// reconnects on broker failures and never blocks request handling.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
