package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/schemabase/backend/internal/application/services"
	"github.com/schemabase/backend/internal/bootstrap"
	"github.com/schemabase/backend/internal/infrastructure/database"
	"github.com/schemabase/backend/internal/infrastructure/persistence"
	"github.com/schemabase/backend/internal/interfaces/middleware"
	"github.com/schemabase/backend/internal/interfaces/rest"
	"github.com/schemabase/backend/pkg/fieldtypes"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("📄 Loaded configuration from .env")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3002"
	}

	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	engine := services.MustNewValidationEngine()
	repo := persistence.NewDefinitionRepository(db.DB())
	registry := services.NewRegistryService(repo, engine)
	authSvc := services.NewAuthService()
	log.Println("🔧 Validation engine initialized")

	if err := registry.RefreshCache(context.Background()); err != nil {
		log.Printf("⚠️ Warning: failed to load definition cache: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.Cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	authHandler := rest.NewAuthHandler(authSvc)
	validationHandler := rest.NewValidationHandler(registry)
	definitionHandler := rest.NewDefinitionHandler(registry)
	fieldTypesHandler := rest.NewFieldTypesHandler(fieldtypes.GetRegistry())

	requireAuth := middleware.RequireAuth(authSvc)

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)

		validate := api.Group("/validate")
		validate.Use(requireAuth)
		{
			validate.POST("/collection", validationHandler.ValidateCollection)
			validate.POST("/function", validationHandler.ValidateFunction)
			validate.POST("/rbac", validationHandler.ValidateRBAC)
		}

		collections := api.Group("/collections")
		collections.Use(requireAuth)
		{
			collections.POST("", definitionHandler.CreateCollection)
			collections.GET("", definitionHandler.ListCollections)
			collections.GET("/:name", definitionHandler.GetCollection)
			collections.PUT("/:name", definitionHandler.UpdateCollection)
			collections.DELETE("/:name", definitionHandler.DeleteCollection)
			collections.GET("/:name/schema", definitionHandler.GetCollectionSchema)
			collections.POST("/:name/validate-data", definitionHandler.ValidateCollectionData)
		}

		functions := api.Group("/functions")
		functions.Use(requireAuth)
		{
			functions.POST("", definitionHandler.CreateFunction)
			functions.GET("", definitionHandler.ListFunctions)
			functions.GET("/:name", definitionHandler.GetFunction)
			functions.PUT("/:name", definitionHandler.UpdateFunction)
			functions.DELETE("/:name", definitionHandler.DeleteFunction)
		}

		rbac := api.Group("/rbac")
		rbac.Use(requireAuth)
		{
			rbac.POST("", definitionHandler.CreateRBACBundle)
			rbac.GET("", definitionHandler.ListRBACBundles)
			rbac.GET("/:name", definitionHandler.GetRBACBundle)
			rbac.PUT("/:name", definitionHandler.UpdateRBACBundle)
			rbac.DELETE("/:name", definitionHandler.DeleteRBACBundle)
		}

		api.GET("/fieldtypes", requireAuth, fieldTypesHandler.ListFieldTypes)
	}

	// The revalidation sweep only runs when explicitly scheduled
	var scheduler *services.SchedulerService
	if os.Getenv("REVALIDATE_CRON") != "" {
		scheduler = services.NewSchedulerService(registry)
		go scheduler.Start()
	}

	log.Println("\n═══════════════════════════════════════════════════════════════════════════")
	log.Println("🚀 SchemaBase Definition Registry Started Successfully")
	log.Println("═══════════════════════════════════════════════════════════════════════════")
	log.Printf("\n📍 Server:          http://localhost:%s", port)
	log.Printf("🔐 Auth API:        http://localhost:%s/api/auth", port)
	log.Printf("🧪 Validation API:  http://localhost:%s/api/validate", port)
	log.Printf("📦 Collections API: http://localhost:%s/api/collections", port)
	log.Printf("💚 Health check:    http://localhost:%s/health\n", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
		log.Println("🛑 Scheduler stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
