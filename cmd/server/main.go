package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lighthouse-iot-backend/internal/cache"
	"lighthouse-iot-backend/internal/config"
	"lighthouse-iot-backend/internal/database"
	"lighthouse-iot-backend/internal/handler"
	"lighthouse-iot-backend/internal/logger"
	"lighthouse-iot-backend/internal/middleware"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
	"lighthouse-iot-backend/internal/service"
	"lighthouse-iot-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()

	// 2. Initialize structured logging
	zapLogger, err := logger.New(cfg.Server.GinMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Configuration loaded")

	// 3. Initialize token manager
	tokens := utils.NewTokenManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 4. Initialize database and cache connections
	db := database.Connect(cfg)
	redisClient := cache.NewRedisClient(&cfg.Redis)
	telemetryCache := cache.NewTelemetryCache(redisClient, zapLogger)

	// 5. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	stationRepo := repository.NewStationRepo(db)
	deviceRepo := repository.NewDeviceRepo(db)
	telemetryRepo := repository.NewTelemetryRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	maintenanceRepo := repository.NewMaintenanceRepo(db)

	// 6. Initialize services
	userService := service.NewUserService(userRepo, tokens, zapLogger)
	stationService := service.NewStationService(stationRepo, zapLogger)
	telemetryService := service.NewTelemetryService(telemetryRepo, deviceRepo, stationRepo, telemetryCache, zapLogger)
	alertService := service.NewAlertService(alertRepo, stationRepo, zapLogger)
	maintenanceService := service.NewMaintenanceService(maintenanceRepo, stationRepo, zapLogger)
	geminiClient := service.NewGeminiClient(&cfg.AI, zapLogger)
	aiService := service.NewAIService(geminiClient, telemetryRepo, alertRepo, zapLogger)

	// 7. Setup Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// 8. Setup Gin router
	r := gin.Default()
	r.Use(middleware.CORS(cfg))

	// 9. Register handlers
	userHandler := handler.NewUserHandler(userService)
	stationHandler := handler.NewStationHandler(stationService)
	telemetryHandler := handler.NewTelemetryHandler(telemetryService)
	alertHandler := handler.NewAlertHandler(alertService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService)
	aiHandler := handler.NewAIHandler(aiService)
	healthHandler := handler.NewHealthHandler(db)

	// 10. Define routes
	r.GET("/ping", healthHandler.Ping)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	authn := middleware.Authenticate(tokens, userRepo)
	adminOnly := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	operatorUp := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleOperator)
	fieldStaff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleOperator, models.RoleTechnician)

	api := r.Group("/api/v1")
	{
		// User and auth routes
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/refresh", userHandler.Refresh)

			users.GET("/me", authn, userHandler.Me)
			users.PATCH("/me", authn, userHandler.UpdateMe)
			users.POST("/me/password", authn, userHandler.ChangePassword)

			users.GET("", authn, adminOnly, userHandler.List)
			users.GET("/:id", authn, adminOnly, userHandler.Get)
			users.DELETE("/:id", authn, adminOnly, userHandler.Deactivate)
		}

		// Station registry routes
		stations := api.Group("/stations")
		stations.Use(authn)
		{
			stations.POST("", adminOnly, stationHandler.Create)
			stations.GET("", stationHandler.List)
			stations.GET("/:id", stationHandler.Get)
			stations.GET("/code/:code", stationHandler.GetByCode)
			stations.GET("/region/:region_id", stationHandler.ByRegion)
			stations.PUT("/:id", operatorUp, stationHandler.Update)
			stations.DELETE("/:id", adminOnly, stationHandler.Delete)
		}

		// Telemetry routes; ingest is called by station gateways, not users
		telemetry := api.Group("/telemetry")
		{
			telemetry.POST("/ingest", telemetryHandler.Ingest)

			telemetry.GET("", authn, telemetryHandler.Query)
			telemetry.GET("/aggregates", authn, telemetryHandler.Aggregates)
			telemetry.GET("/latest/:station_id", authn, telemetryHandler.Latest)
			telemetry.GET("/devices/:station_id", authn, telemetryHandler.Devices)
		}

		// Alert routes
		alerts := api.Group("/alerts")
		alerts.Use(authn)
		{
			alerts.POST("", operatorUp, alertHandler.Create)
			alerts.GET("", alertHandler.List)
			alerts.GET("/stats", alertHandler.Stats)
			alerts.GET("/station/:station_id", alertHandler.StationAlerts)

			alerts.POST("/maintenance", operatorUp, maintenanceHandler.Create)
			alerts.GET("/maintenance", maintenanceHandler.List)
			alerts.GET("/maintenance/:id", maintenanceHandler.Get)
			alerts.PATCH("/maintenance/:id", operatorUp, maintenanceHandler.Update)
			alerts.POST("/maintenance/:id/complete", fieldStaff, maintenanceHandler.Complete)

			alerts.GET("/:id", alertHandler.Get)
			alerts.POST("/:id/acknowledge", operatorUp, alertHandler.Acknowledge)
			alerts.POST("/:id/resolve", operatorUp, alertHandler.Resolve)
		}

		// AI analytics routes
		ai := api.Group("/ai")
		ai.Use(authn)
		{
			ai.GET("/analyze/:station_id", aiHandler.Analyze)
			ai.GET("/predict-maintenance/:station_id", aiHandler.PredictMaintenance)
			ai.GET("/anomalies/:station_id", aiHandler.Anomalies)
		}
	}

	// 11. Setup graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Forced shutdown", zap.Error(err))
	}
	if redisClient != nil {
		redisClient.Close()
	}
	zapLogger.Info("Server exited")
}
