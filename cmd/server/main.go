package main // Entry point package

import (
	"log" // Logging library
	"os"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/avelines/gift-registry/internal/config"     // Internal config loader
	"github.com/avelines/gift-registry/internal/database"   // MySQL connection
	"github.com/avelines/gift-registry/internal/handler"    // HTTP handlers
	"github.com/avelines/gift-registry/internal/queue"      // abuse alert consumer
	"github.com/avelines/gift-registry/internal/repository" // data access
	"github.com/avelines/gift-registry/internal/router"     // Internal router setup
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	// Redis backs rate limiting and the listing cache.  nil degrades both
	// to pass-through; the registry stays correct without them.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	gifts := repository.NewGiftRepo(db)
	toggles := repository.NewToggleRepo(db)
	visitorLogs := repository.NewVisitorLogRepo(db)
	settings := repository.NewSettingsRepo(db)
	otpTokens := repository.NewOTPTokenRepo(db)

	h := router.Handlers{
		Public: handler.NewPublicHandler(gifts, toggles),
		Toggle: handler.NewToggleHandler(cfg, gifts, toggles, visitorLogs, settings),
		Admin:  handler.NewAdminGiftHandler(gifts, settings),
		Auth:   handler.NewAuthHandler(cfg, otpTokens),
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	router.RegisterRoutes(e, cfg, h, rdb)

	// The abuse alert consumer is optional and runs in-process when
	// enabled; a dedicated worker deployment can run it alone instead.
	if os.Getenv("ABUSE_CONSUMER") == "true" {
		go func() {
			if err := queue.StartAbuseConsumer(); err != nil {
				log.Printf("abuse consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
