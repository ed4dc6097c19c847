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

	"vidhub-go/internal/api/handler"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/router"
	"vidhub-go/internal/config"
	"vidhub-go/internal/infra/database"
	infraES "vidhub-go/internal/infra/elasticsearch"
	infraKafka "vidhub-go/internal/infra/kafka"
	infraMinio "vidhub-go/internal/infra/minio"
	infraRedis "vidhub-go/internal/infra/redis"
	"vidhub-go/internal/media"
	"vidhub-go/internal/repository"
	"vidhub-go/internal/service"
	"vidhub-go/internal/transcode"
	"vidhub-go/pkg/logger"
	"vidhub-go/pkg/utils"

	_ "vidhub-go/api/openapi"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title VidHub API
// @version 1.0
// @description 视频分享平台 API 服务

// @host 127.0.0.1:8000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	// 加载配置文件，VIDHUB_CONFIG 可覆盖路径
	configPath := os.Getenv("VIDHUB_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	db := database.Get()
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 媒体存储：本地目录或 MinIO
	var backend media.Backend
	switch cfg.Storage.Backend {
	case "minio":
		if err := infraMinio.Init(&cfg.MinIO); err != nil {
			logger.Fatal("Failed to init minio", zap.Error(err))
		}
		backend = media.NewMinIOBackend(infraMinio.Get(), cfg.MinIO.Bucket)
	default:
		local, err := media.NewLocalBackend(map[media.Category]string{
			media.CategoryVideo:          cfg.Storage.VideoDir,
			media.CategoryThumbnail:      cfg.Storage.ThumbnailDir,
			media.CategoryProfilePicture: cfg.Storage.ProfilePictureDir,
			media.CategoryBanner:         cfg.Storage.BannerDir,
		})
		if err != nil {
			logger.Fatal("Failed to init local media storage", zap.Error(err))
		}
		backend = local
	}

	ingestor := media.NewIngestor(
		backend,
		transcode.NewFFmpeg(cfg.Transcode.FFmpegPath, cfg.Transcode.Timeout()),
		media.Options{
			DefaultThumbnail: cfg.Storage.DefaultThumbnail,
			ThumbnailOffset:  cfg.Transcode.ThumbnailOffset(),
		},
	)
	layoutCtx, layoutCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ingestor.EnsureLayout(layoutCtx); err != nil {
		layoutCancel()
		logger.Fatal("Failed to prepare media storage", zap.Error(err))
	}
	layoutCancel()

	// 初始化依赖（Repository -> Service -> Handler）
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	historyRepo := repository.NewWatchHistoryRepository(db)

	// 可选的检索索引与榜单缓存，初始化失败则降级
	var (
		index service.VideoIndex
		cache service.ListCache
	)
	if cfg.Search.Engine == "elasticsearch" || cfg.Elasticsearch.Enabled {
		if err := infraES.Init(&cfg.Elasticsearch); err != nil {
			logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
		} else {
			defer infraES.Close()
			videoIndex := infraES.NewVideoIndex(infraES.Get(), cfg.Elasticsearch.VideosIndex())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := videoIndex.Ensure(ctx); err != nil {
				logger.Warn("Elasticsearch index init failed", zap.Error(err))
			}
			cancel()
			index = videoIndex
		}
	}
	if cfg.Redis.Enabled {
		if err := infraRedis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis init failed, list cache disabled", zap.Error(err))
		} else {
			defer infraRedis.Close()
			cache = infraRedis.NewJSONCache(infraRedis.Get(), infraRedis.VideoListPrefix(cfg.App.Name), cfg.Search.CacheTTL())
		}
	}

	searchService := service.NewSearchService(videoRepo, likeRepo, index, cache)

	// 视频变更通知：启用 Kafka 时交给 worker，否则进程内直接刷新
	var events service.EventPublisher = service.NewDirectPublisher(searchService)
	if cfg.Kafka.Enabled {
		producer := infraKafka.NewProducer(&cfg.Kafka)
		defer producer.Close()
		events = producer
	}

	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.ExpireDuration())
	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo, subRepo, ingestor)
	subService := service.NewSubscriptionService(userRepo, subRepo)
	videoService := service.NewVideoService(videoRepo, userRepo, likeRepo, ingestor, events)
	commentService := service.NewCommentService(commentRepo, videoRepo, likeRepo)
	historyService := service.NewWatchHistoryService(historyRepo, videoRepo, likeRepo)

	limits := handler.UploadLimits{
		MaxVideoBytes: cfg.Storage.MaxVideoBytes(),
		MaxImageBytes: cfg.Storage.MaxImageBytes(),
	}
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService, videoService, limits),
		Subscription: handler.NewSubscriptionHandler(subService),
		Video:        handler.NewVideoHandler(videoService, limits),
		Like:         handler.NewLikeHandler(videoService, commentService),
		Comment:      handler.NewCommentHandler(commentService),
		WatchHistory: handler.NewWatchHistoryHandler(historyService),
		Search:       handler.NewSearchHandler(searchService),
	}

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 创建Gin路由器（不使用默认中间件）
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	// 注册基础路由
	r.GET("/health", healthCheckHandler)
	r.GET("/healthz", healthCheckHandler)

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册业务路由
	router.Setup(r, handlers, authService)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("search_index", index != nil),
		zap.Bool("list_cache", cache != nil),
		zap.Bool("kafka", cfg.Kafka.Enabled),
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

// healthCheckHandler 健康检查接口
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   cfg.App.Name,
		"version":   cfg.App.Version,
	})
}
