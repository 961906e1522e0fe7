package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"complyq/internal/advisory"
	"complyq/internal/cache"
	"complyq/internal/config"
	"complyq/internal/engine"
	"complyq/internal/repository"
	"complyq/internal/service"
	"complyq/internal/transport/rest"
	"complyq/internal/transport/ws"
)

// @title ComplyQ Assessment API
// @version 1.0
// @description Compliance assessment execution engine with AI follow-ups
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Load advisory config and log model settings
	advCfg := config.DefaultAdvisoryConfig()
	log.Printf("Advisory Config:")
	log.Printf("  FollowUp:  %s", advCfg.Models.FollowUp)
	log.Printf("  Recommend: %s", advCfg.Models.Recommend)
	log.Printf("  Help:      %s", advCfg.Models.Help)
	log.Printf("  Timeout:   %dms", advCfg.TimeoutMS)
	if advCfg.IsEnabled() {
		log.Println("  API Key:   configured ✓")
	} else {
		log.Println("  API Key:   NOT SET (using local follow-up generation)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	// Redis connection
	redisAddr := cfg.RedisAddr
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories and progress store
	frameworkRepo := repository.NewFrameworkRepository(mongoClient, cfg.MongoDB)
	resultRepo := repository.NewResultRepository(mongoClient, cfg.MongoDB)
	progressStore := cache.NewRedisProgressStore(rdb)

	// Advisory service behind the timeout guard
	var advisorySvc advisory.Service
	if advCfg.IsEnabled() {
		advisorySvc = advisory.WithTimeout(
			advisory.NewClient(advCfg),
			time.Duration(advCfg.TimeoutMS)*time.Millisecond,
		)
	}

	// Initialize services
	authSvc := service.NewAuthService()
	engineCfg := engine.DefaultConfig()
	engineCfg.EnableAI = advCfg.IsEnabled()
	assessmentSvc := service.NewAssessmentService(frameworkRepo, resultRepo, progressStore, advisorySvc, engineCfg)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	assessmentSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:       authSvc,
		AssessmentService: assessmentSvc,
		Frameworks:        frameworkRepo,
		WSHub:             wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/frameworks")
		log.Println("  POST /v1/assessments/start")
		log.Println("  POST /v1/assessments/resume")
		log.Println("  POST /v1/assessments/current/answers")
		log.Println("  POST /v1/assessments/current/complete")
		log.Println("  WS  /v1/ws/dashboard")
		log.Println("  WS  /v1/ws/assessments/{assessmentId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Flush a final snapshot for every live assessment before closing
	assessmentSvc.Shutdown(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
