package main

import (
	"flag"
	"log"
	"net/http"
	"strconv"
	"time"

	"insightengine/config"
	"insightengine/controllers"
	"insightengine/db"
	"insightengine/internal/evaluation"
	"insightengine/middlewares"
	"insightengine/routes"
	"insightengine/services"
	"insightengine/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "./config/config.yml", "path to config file")
	flag.Parse()

	// Secrets may live in a local .env file during development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := services.InitEvaluationService(cfg); err != nil {
		log.Fatalf("Failed to initialize evaluation service: %v", err)
	}

	// Report history is optional; the evaluator works without it
	if cfg.Database.URI != "" {
		if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		log.Println("Connected to MongoDB")
	} else {
		log.Println("No database configured, report history disabled")
	}

	// Caching and rate limiting are optional as well
	if cfg.Redis.Addr != "" {
		if err := evaluation.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Println("Connected to Redis")
	} else {
		log.Println("No Redis configured, caching and rate limiting disabled")
	}
	controllers.InitEvaluationController(time.Duration(cfg.Redis.CacheTTLMinutes) * time.Minute)

	router := setupRouter(cfg)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/")
	if cfg.API.Key != "" {
		api.Use(middlewares.APIKeyAuth(cfg.API.Key))
	}
	{
		routes.SetupEvaluationRoutes(api)

		// Streams per-dimension progress while an evaluation runs
		api.GET("/ws/evaluate", websocket.EvaluateHandler)
	}

	return router
}
