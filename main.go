package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kinetic-engine/handlers"
	"kinetic-engine/middleware"
	"kinetic-engine/models"
	"kinetic-engine/services"
	"kinetic-engine/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB, JSON only
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(allowedOriginsList[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(allowedOriginsList, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-User-Roles",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("❌ DATABASE_URL environment variable is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Character{},
		&models.KineticsTransaction{},
		&models.Trick{},
		&models.CharacterTrick{},
		&models.Achievement{},
		&models.CharacterAchievement{},
		&models.Accessory{},
		&models.CharacterAccessory{},
		&models.PurchasedItem{},
		&models.Tournament{},
		&models.TournamentEntry{},
		&models.LeaderboardEntry{},
		&models.TrainingVisit{},
		&models.GameResult{},
		&models.CharacterNotification{},
	); err != nil {
		log.Fatalf("❌ Failed to migrate database: %v", err)
	}
	if err := services.SeedCatalog(db); err != nil {
		log.Fatalf("❌ Failed to seed catalog: %v", err)
	}

	handler := &handlers.KineticHandler{
		Characters:    services.NewCharacterService(db),
		Ledger:        services.NewLedgerService(db),
		Ownership:     services.NewOwnershipService(db),
		Progression:   services.NewProgressionService(db),
		Achievements:  services.NewAchievementService(db),
		Tournaments:   services.NewTournamentService(db),
		Leaderboards:  services.NewLeaderboardService(db),
		Notifications: services.NewNotificationService(db),
		Profiles:      services.NewProfileService(db),
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	handlers.SetupKineticRoutes(app, handler)

	// Background jobs: weekly cycle + ledger audit
	handler.Tournaments.StartCycleScheduler(handler.Leaderboards)
	ctx, cancel := context.WithCancel(context.Background())
	go workers.PollLedger(ctx, handler.Ledger, 15*time.Minute)

	// Make sure the current window exists before serving traffic
	if err := handler.Tournaments.Rollover(time.Now().UTC()); err != nil {
		log.Printf("⚠️  Initial tournament rollover failed: %v", err)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Kinetic engine listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}
