package wire

import (
	"Mosaic/internal/api"
	"Mosaic/internal/api/config"
	"Mosaic/internal/api/handler"
	"Mosaic/internal/job"
	"Mosaic/internal/pkg/cron"
	"Mosaic/internal/pkg/es"
	"Mosaic/internal/pkg/graph"
	"Mosaic/internal/pkg/kafka"
	"Mosaic/internal/pkg/metrics"
	"Mosaic/internal/pkg/redis"
	"Mosaic/internal/pkg/retry"
	"Mosaic/internal/repository"
	"Mosaic/internal/service"
	"context"
	log "log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
	Cache        *redis.Cache
	Graph        *graph.Client
}

// Close 释放进程内共享的连接
func (a *ApplicationContainer) Close(ctx context.Context) {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			log.Error("Redis close failed", "err", err)
		}
	}
	if a.Graph != nil {
		if err := a.Graph.Close(ctx); err != nil {
			log.Error("Neo4j close failed", "err", err)
		}
	}
}

func BuildApplication(ctx context.Context, cfg *config.Config) (*ApplicationContainer, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)

	// Redis 不可用时降级为直接读存储
	cache := redis.NewCache(cfg.Redis, m)
	if err := cache.Ping(ctx); err != nil {
		log.Warn("Redis unavailable at startup, continuing without cache", "addr", cfg.Redis.Addr, "err", err)
	}

	esClient, err := es.NewClient(ctx, cfg.Elastic)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}
	index := es.NewIndex(esClient, cfg.Elastic.Indices, retry.NewExecutor(retry.FromConfig(cfg.Elastic.Retry), m), m)

	graphClient, err := graph.NewClient(ctx, cfg.Neo4j, m)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}

	userRepo := repository.NewUserRepo(graphClient)
	postRepo := repository.NewPostRepo(graphClient)
	tokenRepo := repository.NewTokenRepo(graphClient)

	postService := service.NewPostService(cache, index, postRepo, service.ParseFailurePolicyFor(cfg.Redis.EvictOnParseFailure))
	profileService := service.NewProfileService(cache, index, userRepo)
	suggestionService := service.NewSuggestionService(cache, index, cfg.Suggestion.DefaultSize)
	tokenService := service.NewTokenService(tokenRepo)

	handlers := &api.HandlersGroup{
		PostHandler:       handler.NewPostHandler(postService),
		ProfileHandler:    handler.NewProfileHandler(profileService),
		SuggestionHandler: handler.NewSuggestionHandler(suggestionService),
		TokenHandler:      handler.NewTokenHandler(tokenService),
		MetricsHandler:    metrics.Handler(reg),
	}

	router := api.SetupRouter(handlers, cfg.Server.CorsOrigins)

	app := &ApplicationContainer{
		Router:  router,
		CronMgr: cron.NewCronManager(cfg.Cron, job.NewCacheHealthJob(cache, m)),
		Cache:   cache,
		Graph:   graphClient,
	}

	kafkaMgr, err := kafka.NewConsumerManager(cfg, postService)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.KafkaManager = kafkaMgr

	return app, nil
}
