package main

import (
	"context"
	"log"
	"os"

	_ "labqc/api/swagger" // swagger docs
	"labqc/internal/blobstore"
	"labqc/internal/database"
	"labqc/internal/handler"
	"labqc/internal/middleware"
	"labqc/internal/repository"
	"labqc/internal/service"
	"labqc/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// @title           Lab QC Tracking API
// @version         1.0
// @description     Quality-control sample tracking for a sugar mill laboratory.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dsn := "postgres://" + envOr("DB_USER", "postgres") + ":" + envOr("DB_PASSWORD", "postgres") +
		"@" + envOr("DB_HOST", "localhost") + ":" + envOr("DB_PORT", "5432") +
		"/" + envOr("DB_NAME", "labqc") + "?sslmode=" + envOr("DB_SSLMODE", "disable")

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Attachment blob storage (S3 or MinIO)
	var blobs blobstore.Store
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" || os.Getenv("S3_BUCKET") != "" {
		s3Store, err := blobstore.NewS3Store(context.Background(), blobstore.S3Config{
			Endpoint:     endpoint,
			Region:       envOr("S3_REGION", "us-east-1"),
			Bucket:       envOr("S3_BUCKET", "labqc-attachments"),
			AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			SecretKey:    os.Getenv("S3_SECRET_KEY"),
			UsePathStyle: envOr("S3_PATH_STYLE", "true") == "true",
		})
		if err != nil {
			log.Fatalf("Blob store setup failed: %v", err)
		}
		blobs = s3Store
	} else {
		log.Println("S3 not configured, attachments held in memory")
		blobs = blobstore.NewMemoryStore()
	}

	// Set up WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	sampleRepo := repository.NewSampleRepository(db)
	testRepo := repository.NewTestResultRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	accessRequestRepo := repository.NewAccessRequestRepository(db)
	txManager := repository.NewTransactionManager(db)

	allocator := service.NewBatchAllocator(sampleRepo)
	userService := service.NewUserService(userRepo)
	sampleService := service.NewSampleService(sampleRepo, testRepo, attachmentRepo, userRepo, allocator, txManager, blobs, wsHub)
	testService := service.NewTestResultService(testRepo, sampleRepo, wsHub)
	requestService := service.NewRequestService(requestRepo, sampleRepo, wsHub)
	attachmentService := service.NewAttachmentService(attachmentRepo, sampleRepo, blobs)
	accessRequestService := service.NewAccessRequestService(accessRequestRepo)
	dashboardService := service.NewDashboardService(sampleRepo, testRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	sampleHandler := handler.NewSampleHandler(sampleService)
	testHandler := handler.NewTestResultHandler(testService)
	requestHandler := handler.NewRequestHandler(requestService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, sampleService)
	accessRequestHandler := handler.NewAccessRequestHandler(accessRequestService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Set up Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API routes
	api := router.Group("")
	userHandler.RegisterRoutes(api)
	sampleHandler.RegisterRoutes(api)
	testHandler.RegisterRoutes(api)
	requestHandler.RegisterRoutes(api)
	attachmentHandler.RegisterRoutes(api)
	accessRequestHandler.RegisterRoutes(api)
	dashboardHandler.RegisterRoutes(api)

	port := envOr("PORT", "8080")
	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
