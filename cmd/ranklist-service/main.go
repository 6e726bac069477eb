package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rankview/internal/common/cache"
	"rankview/internal/common/http/middleware"
	"rankview/internal/common/mq"
	"rankview/internal/common/storage"
	"rankview/internal/ranklist/controller"
	"rankview/internal/ranklist/repository"
	"rankview/internal/ranklist/service"
	"rankview/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/ranklist-service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() { _ = redisCache.Close() }()

	objectStorage, err := storage.NewMinIOStorage(appCfg.MinIO)
	if err != nil {
		logger.Error(context.Background(), "init object storage failed", zap.Error(err))
		return
	}

	snapshotRepo, err := repository.NewObjectSnapshotRepository(objectStorage, redisCache, repository.ObjectSnapshotConfig{
		Bucket:    appCfg.Snapshot.Bucket,
		KeyPrefix: appCfg.Snapshot.KeyPrefix,
		CacheTTL:  appCfg.Snapshot.CacheTTL,
		MaxBytes:  appCfg.Snapshot.MaxBytes,
	})
	if err != nil {
		logger.Error(context.Background(), "init snapshot repository failed", zap.Error(err))
		return
	}

	ranklistService, err := service.NewRanklistService(snapshotRepo, service.Config{
		LogCacheSize: appCfg.Service.LogCacheSize,
	})
	if err != nil {
		logger.Error(context.Background(), "init ranklist service failed", zap.Error(err))
		return
	}

	var liveUpdater *service.LiveUpdater
	if appCfg.Live.Enabled {
		mqClient, err := mq.NewKafkaQueue(appCfg.Kafka)
		if err != nil {
			logger.Error(context.Background(), "init kafka failed", zap.Error(err))
			return
		}
		defer func() { _ = mqClient.Close() }()

		liveUpdater, err = service.NewLiveUpdater(snapshotRepo, ranklistService, mqClient, service.LiveUpdaterConfig{
			Topic:         appCfg.Live.Topic,
			ConsumerGroup: appCfg.Live.ConsumerGroup,
		})
		if err != nil {
			logger.Error(context.Background(), "init live updater failed", zap.Error(err))
			return
		}
		if err := liveUpdater.Start(context.Background()); err != nil {
			logger.Error(context.Background(), "start live updater failed", zap.Error(err))
			return
		}
		defer func() { _ = liveUpdater.Stop() }()
	}

	httpServer := buildHTTPServer(appCfg, ranklistService, liveUpdater)

	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "ranklist http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(cfg *AppConfig, ranklistService *service.RanklistService, liveUpdater *service.LiveUpdater) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceContextMiddleware())
	router.Use(requestLogger())

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/readyz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := router.Group("/api/v1")
	controller.NewRanklistController(ranklistService, liveUpdater).RegisterRoutes(api)

	return &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
