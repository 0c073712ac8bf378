// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"planwise-service/internal/config"
	"planwise-service/internal/db"
	recoHandler "planwise-service/internal/handlers/recommendation"
	"planwise-service/internal/middleware"
	"planwise-service/internal/pkg/cache"
	"planwise-service/internal/pkg/metrics"
	"planwise-service/internal/repository/postgres"
	recoService "planwise-service/internal/service/recommendation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- Metrics -----
	metrics.Init()

	// ----- PostgreSQL (table provider) -----
	pool, err := postgres.Connect(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis (optional recommendation cache) -----
	var recoCache recoService.ResultCache
	if s.cfg.RedisAddr != "" {
		redisClient, err := db.NewRedisClient(db.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPass,
			PoolSize: 10,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		recoCache = cache.NewRecommendationCache(redisClient, s.cfg.CacheTTL)
		logger.Info("recommendation cache enabled", zap.String("addr", s.cfg.RedisAddr))
	}

	// ----- Repositories -----
	datasetRepo := postgres.NewDatasetRepository(pool)

	// ----- Services -----
	recommendationService := recoService.NewRecommendationService(
		datasetRepo,
		recoCache,
		logger,
		s.cfg.NormalizeFeatures,
	)

	// Initial model build. The service stays up on failure so the dataset
	// can be fixed and rebuilt through the admin endpoint.
	buildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if _, err := recommendationService.Rebuild(buildCtx); err != nil {
		logger.Error("initial model build failed", zap.Error(err))
	}
	cancel()

	if s.cfg.RefreshInterval > 0 {
		go s.refreshLoop(ctx, recommendationService)
	}

	// ----- Handlers -----
	recommendationHandler := recoHandler.NewRecommendationHandler(recommendationService, s.cfg.DefaultK)

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		RecommendationHandler: recommendationHandler,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// refreshLoop periodically rebuilds the model so long-running processes
// pick up dataset changes without a restart. Each rebuild swaps the whole
// snapshot; in-flight queries keep reading the old one.
func (s *Server) refreshLoop(ctx context.Context, svc *recoService.RecommendationService) {
	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			buildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := svc.Rebuild(buildCtx); err != nil {
				s.logger.Error("scheduled model rebuild failed", zap.Error(err))
			}
			cancel()
		}
	}
}
