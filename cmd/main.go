package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mayankshukla2904/nagrik-backend/internal/api/handler"
	"github.com/mayankshukla2904/nagrik-backend/internal/classifier"
	"github.com/mayankshukla2904/nagrik-backend/internal/conversation"
	"github.com/mayankshukla2904/nagrik-backend/internal/dashhub"
	"github.com/mayankshukla2904/nagrik-backend/internal/dedup"
	"github.com/mayankshukla2904/nagrik-backend/internal/localization"
	"github.com/mayankshukla2904/nagrik-backend/internal/models"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
	"github.com/mayankshukla2904/nagrik-backend/internal/telegram"
	"github.com/mayankshukla2904/nagrik-backend/internal/upvote"
)

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func setupDependencies() (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	dsn := envOr("DATABASE_DSN",
		"host=localhost user=nagrik password=nagrik dbname=nagrikdb port=5432 sslmode=disable")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.StatusEvent{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting NAGRIK Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	// 1. Core dependencies
	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	// 2. Live dashboard hub, fed by the storage layer's Redis events
	hub := dashhub.NewHub()
	go hub.Run()
	hub.StartEventListener(s.SubscribeEvents())

	// 3. Classification cascade. Both remote tiers are optional; with
	// neither configured the keyword tier still answers every request.
	var retrieval *classifier.RetrievalClient
	if url := os.Getenv("CLASSIFIER_URL"); url != "" {
		retrieval = classifier.NewRetrievalClient(url)
	}
	var llm *classifier.LLMClient
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		llm = classifier.NewLLMClient(key, envOr("ANTHROPIC_MODEL", classifier.DefaultLLMModel))
	}
	cascade := classifier.NewCascade(retrieval, llm)

	detector := dedup.NewDetector(s)
	upvotes := upvote.NewService(s)

	localizer, err := localization.NewLocalizer("internal/localization/locales")
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}

	// 4. Conversation machine and the Telegram intake
	sessions := conversation.NewSessionStore()
	sessions.StartSweeper(context.Background())
	machine := conversation.NewMachine(sessions, s, cascade, detector, upvotes, localizer, models.ChannelTelegram)

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set!")
	}
	botService, err := telegram.NewBotService(botToken, machine, s, localizer)
	if err != nil {
		log.Fatalf("Failed to start the Telegram bot: %v", err)
	}
	go botService.Run()

	// 5. Gin routing and the HTTP server
	r := gin.Default()
	h := handler.NewHandler(s, hub, cascade, detector, upvotes)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           ":" + envOr("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
