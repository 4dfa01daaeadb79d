// Package main runs the program catalog HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/program-catalog/backend/config"
	"github.com/program-catalog/backend/internal/auth"
	"github.com/program-catalog/backend/internal/catalog"
	"github.com/program-catalog/backend/internal/middleware"
	"github.com/program-catalog/backend/pkg/database"
	"github.com/program-catalog/backend/pkg/redis"
	"github.com/program-catalog/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	var listingCache *catalog.ListingCache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("listing cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			listingCache = catalog.NewListingCache(rdb.Client, logger)
		}
	}

	validator := auth.NewValidator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.LeewaySeconds)
	authRepo := auth.NewRepository(pool)
	resolver := auth.NewResolver(authRepo, logger)
	synchronizer := auth.NewSynchronizer(authRepo)

	catalogRepo := catalog.NewRepository(pool)
	catalogSvc := catalog.NewService(catalogRepo, listingCache, logger)
	catalogHandler := catalog.NewHandler(catalogSvc, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("")
	api.Use(middleware.Authenticate(validator, resolver, synchronizer, logger))
	{
		api.GET("/programs", catalogHandler.ListPrograms)
		api.GET("/programs/:id", catalogHandler.GetProgram)
		api.GET("/programs/:id/course-codes", catalogHandler.ListCurriculum)
		api.GET("/program-course-codes/:id/run-modes", catalogHandler.ListRunModes)
		api.GET("/program-defaults", catalogHandler.GetDefault)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/programs", catalogHandler.CreateProgram)
			admin.PATCH("/programs/:id", catalogHandler.UpdateProgram)
			admin.POST("/programs/:id/organizations", catalogHandler.AssociateOrganization)
			admin.POST("/programs/:id/course-codes", catalogHandler.AddCourseCode)
			admin.POST("/organizations", catalogHandler.CreateOrganization)
			admin.POST("/course-codes", catalogHandler.CreateCourseCode)
			admin.POST("/program-course-codes/:id/run-modes", catalogHandler.AddRunMode)
			admin.PUT("/program-defaults", catalogHandler.SetDefault)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
