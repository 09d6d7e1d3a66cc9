package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/Suryansh0910/ImageProcessor/handler"
	"github.com/Suryansh0910/ImageProcessor/middleware"
	"github.com/Suryansh0910/ImageProcessor/service"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 加载配置
	cfg := config.New()

	// 初始化日志
	if err := utils.InitLogger(cfg.Server.Mode, cfg.Server.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting ImageProcessor server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := service.NewFileStore(&cfg.Upload)
	if err := store.Init(); err != nil {
		utils.Logger.Fatal("failed to create storage directories", zap.Error(err))
	}

	cleanup := service.NewCleanupService(&cfg.Cleanup, store)
	if err := cleanup.Start(); err != nil {
		utils.Logger.Fatal("failed to start cleanup", zap.Error(err))
	}
	defer cleanup.Stop()

	// Redis 不可用时关闭缓存
	var cache service.ResultCache = service.NoopCache()
	redisService := service.NewRedisService(&cfg.Redis)
	if err := redisService.Ping(ctx); err != nil {
		utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
	} else {
		utils.Logger.Info("redis connected successfully")
		cache = redisService
	}
	defer redisService.Close()

	var (
		users  service.UserRepository
		images service.ImageRepository
	)
	if cfg.Mongo.URI == "" {
		utils.Logger.Warn("mongo.uri is empty, using in-memory storage")
		users = service.NewMemoryUserRepository()
		images = service.NewMemoryImageRepository()
	} else {
		mongoService, err := service.NewMongoService(ctx, &cfg.Mongo)
		if err != nil {
			utils.Logger.Fatal("mongodb connection failed", zap.Error(err))
		}
		defer func() {
			_ = mongoService.Close(context.Background())
		}()
		if err := mongoService.EnsureIndexes(ctx); err != nil {
			utils.Logger.Warn("failed to ensure indexes", zap.Error(err))
		}
		utils.Logger.Info("connected to mongodb", zap.String("database", cfg.Mongo.Database))
		users = mongoService.Users()
		images = mongoService.Images()
	}

	authService := service.NewAuthService(&cfg.Auth, users)
	imageService := service.NewImageService(&cfg.Processing, store, cache)
	galleryService := service.NewGalleryService(&cfg.Gallery, images, store)

	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxSize
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	r.Static("/uploads", store.Dir(service.AreaUploads))
	r.Static("/processed", store.Dir(service.AreaProcessed))
	r.Static("/gallery", store.Dir(service.AreaGallery))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": Version,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	handler.Register(r, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Upload:    handler.NewUploadHandler(&cfg.Upload, store, cfg.Processing.MaxPixels),
		Transform: handler.NewTransformHandler(imageService, cfg.Processing.DefaultTolerance),
		Gallery:   handler.NewGalleryHandler(galleryService),
		Tokens:    authService,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	utils.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Error("server shutdown failed", zap.Error(err))
	}
}
