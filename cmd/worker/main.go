package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidhub-go/internal/config"
	"vidhub-go/internal/infra/database"
	infraES "vidhub-go/internal/infra/elasticsearch"
	infraKafka "vidhub-go/internal/infra/kafka"
	infraRedis "vidhub-go/internal/infra/redis"
	"vidhub-go/internal/repository"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// worker 消费视频事件，保持检索索引与榜单缓存同步，并定期全量重建索引
func main() {
	configPath := os.Getenv("VIDHUB_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if !cfg.Kafka.Enabled {
		logger.Fatal("Kafka is disabled, worker has nothing to consume")
	}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Fatal("Failed to init elasticsearch", zap.Error(err))
	}
	defer infraES.Close()

	videoIndex := infraES.NewVideoIndex(infraES.Get(), cfg.Elasticsearch.VideosIndex())
	ensureCtx, ensureCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := videoIndex.Ensure(ensureCtx); err != nil {
		ensureCancel()
		logger.Fatal("Failed to ensure elasticsearch index", zap.Error(err))
	}
	ensureCancel()

	var cache service.ListCache
	if cfg.Redis.Enabled {
		if err := infraRedis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis init failed, list cache invalidation disabled", zap.Error(err))
		} else {
			defer infraRedis.Close()
			cache = infraRedis.NewJSONCache(infraRedis.Get(), infraRedis.VideoListPrefix(cfg.App.Name), cfg.Search.CacheTTL())
		}
	}

	db := database.Get()
	searchService := service.NewSearchService(
		repository.NewVideoRepository(db),
		repository.NewLikeRepository(db),
		videoIndex,
		cache,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	// 启动时先全量对齐一次
	if n, err := searchService.Reindex(ctx); err != nil {
		logger.Error("Initial reindex failed", zap.Error(err))
	} else {
		logger.Info("Initial reindex completed", zap.Int("videos", n))
	}

	if cfg.Search.ReindexMinutes > 0 {
		go runReindexLoop(ctx, searchService, time.Duration(cfg.Search.ReindexMinutes)*time.Minute)
	}

	topic := cfg.Kafka.VideoEventsTopic()
	logger.Info("Search index worker started",
		zap.String("topic", topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	infraKafka.StartVideoEventConsumer(ctx, cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID, searchService.HandleVideoEvent)
}

func runReindexLoop(ctx context.Context, searchService *service.SearchService, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := searchService.Reindex(ctx)
			if err != nil {
				logger.Error("Periodic reindex failed", zap.Error(err))
				continue
			}
			logger.Info("Periodic reindex completed", zap.Int("videos", n))
		}
	}
}
