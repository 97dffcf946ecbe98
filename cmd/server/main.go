package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/apexcreative/clientflow/configs"
	"github.com/apexcreative/clientflow/internal/api/handlers"
	"github.com/apexcreative/clientflow/internal/api/middleware"
	job "github.com/apexcreative/clientflow/internal/jobs"
	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/queue"
	"github.com/apexcreative/clientflow/internal/repository"
	"github.com/apexcreative/clientflow/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Api-Key",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	postRepo := repository.NewPostRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	dumpRepo := repository.NewDumpRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	r2Service := service.NewR2Service(*cfg)
	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	statsService := service.NewStatsService(statsRepo)
	clientService := service.NewClientService(clientRepo, userRepo, statsService)
	analyticsService := service.NewAnalyticsService(analyticsRepo, clientService)
	postService := service.NewPostService(postRepo, commentRepo, clientService, statsService, r2Service)
	importService := service.NewImportService(uploadRepo, postRepo, analyticsRepo, clientRepo, statsService, r2Service)
	uploadService := service.NewUploadService(db, uploadRepo, postRepo, clientRepo, statsService, r2Service)
	dumpService := service.NewDumpService(dumpRepo, postRepo, clientRepo, statsService)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService, userService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Post("/login", auth.Login)
	app.Get("/login/google", auth.GoogleLogin)
	app.Get("/login/google/callback", auth.GoogleLoginCallback)
	app.Post("/logout", auth.Logout)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	clients := handlers.NewClientHandler(clientService, analyticsService)
	api.Get("/clients", clients.ListClients)
	api.Post("/clients", authMiddleware.RequireCapability(models.CapManageClients), clients.CreateClient)
	api.Put("/clients/:id", authMiddleware.RequireCapability(models.CapManageClients), clients.UpdateClient)
	api.Delete("/clients/:id", authMiddleware.RequireCapability(models.CapManageClients), clients.RemoveClient)
	api.Get("/clients/:id/stats", clients.GetClientStats)
	api.Get("/clients/:id/analytics", clients.GetClientAnalytics)

	post := handlers.NewPostHandler(postService, client)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts", authMiddleware.RequireCapability(models.CapManagePosts), post.CreatePost)
	api.Put("/posts/:id", authMiddleware.RequireCapability(models.CapManagePosts), post.UpdatePost)
	api.Put("/posts/:id/status", post.UpdatePostStatus)
	api.Post("/posts/:id/media", authMiddleware.RequireCapability(models.CapManagePosts), post.AddMedia)
	api.Get("/posts/:id/comments", post.ListComments)
	api.Post("/posts/:id/comments", post.AddComment)

	upload := handlers.NewUploadHandler(importService, uploadService)
	api.Post("/upload", authMiddleware.RequireCapability(models.CapImportContent), upload.Upload)
	api.Get("/uploads", authMiddleware.RequireCapability(models.CapManageUploads), upload.ListUploads)
	api.Delete("/uploads/:id", authMiddleware.RequireCapability(models.CapManageUploads), upload.UndoUpload)

	dumps := handlers.NewDumpHandler(dumpService)
	api.Post("/dumps", authMiddleware.RequireCapability(models.CapImportContent), dumps.CreateDump)
	api.Get("/dumps", authMiddleware.RequireCapability(models.CapImportContent), dumps.ListDumps)
	api.Post("/dumps/:id/process", authMiddleware.RequireCapability(models.CapImportContent), dumps.ProcessDump)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", authMiddleware.RequireCapability(models.CapManageKeys), apiKeys.CreateApiKey)
	api.Get("/api_key/list", authMiddleware.RequireCapability(models.CapManageKeys), apiKeys.ListKeys)
	api.Post("/api_key/remove", authMiddleware.RequireCapability(models.CapManageKeys), apiKeys.RemoveAPIKey)

	// cron jobs
	reconcileJob := job.NewStatsReconcileJob(clientRepo, postRepo, statsService, postService)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", reconcileJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		worker := queue.NewWorker(postService)
		mux.HandleFunc(queue.TaskTypePublishPost, worker.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ListenAddr)

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
