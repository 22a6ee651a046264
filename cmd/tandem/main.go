package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/quiethollow/tandem/internal/api"
	"github.com/quiethollow/tandem/internal/db"
	"github.com/quiethollow/tandem/internal/llm"
	"github.com/quiethollow/tandem/internal/services"
)

const limiterSweepInterval = 5 * time.Minute

func main() {
	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	dbPath := getEnv("DB_PATH", filepath.Join("data", "tandem.db"))
	port := getEnv("PORT", "8080")
	modelName := getEnv("TANDEM_MODEL", "")
	cookieSecure := getBoolEnv("COOKIE_SECURE", false)

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	model, err := llm.NewGeminiClient(lifecycleCtx, apiKey, modelName)
	if err != nil {
		log.Fatalf("model client init failed: %v", err)
	}

	tasks := services.NewTaskRunner(lifecycleCtx)
	handler := api.NewHandler(database, secretKey, model, tasks, cookieSecure)
	handler.ChatLimiter().StartSweep(lifecycleCtx, limiterSweepInterval)

	app := fiber.New(fiber.Config{
		AppName:               "Tandem",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Tandem listening on http://0.0.0.0:%s (db: %s)", port, dbPath)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}

	// Let in-flight document generation finish before the process exits.
	tasks.Wait()
	cancelLifecycle()
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
