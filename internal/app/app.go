package app

import (
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/match-arena/internal/config"
	"github.com/riskibarqy/match-arena/internal/domain/matchrequest"
	"github.com/riskibarqy/match-arena/internal/domain/rating"
	"github.com/riskibarqy/match-arena/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/match-arena/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/match-arena/internal/interfaces/httpapi"
	"github.com/riskibarqy/match-arena/internal/platform/cache"
	idgen "github.com/riskibarqy/match-arena/internal/platform/id"
	"github.com/riskibarqy/match-arena/internal/platform/logging"
	"github.com/riskibarqy/match-arena/internal/usecase"
)

// NewHTTPServer wires repositories, services and the HTTP router. Postgres
// repositories are used when DB_URL is configured, in-memory ones otherwise.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		requestRepo matchrequest.Repository
		ratingRepo  rating.Repository
	)

	if cfg.DBURL != "" {
		dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
		db, err := otelsqlx.Connect("postgres", dsn,
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(dsn)),
		)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}

		requestRepo = postgres.NewRequestRepository(db)
		ratingRepo = postgres.NewRatingRepository(db)
		logger.Info("storage configured", "backend", "postgres", "db_name", dbNameFromURL(dsn))
	} else {
		requestRepo = memory.NewRequestRepository()
		ratingRepo = memory.NewRatingRepository()
		logger.Info("storage configured", "backend", "memory")
	}

	var openCache *cache.Store
	if cfg.CacheEnabled {
		openCache = cache.NewStore(cfg.OpenListCacheTTL)
	}

	marketplaceSvc := usecase.NewMarketplaceService(requestRepo, idgen.NewRandomGenerator("mr"), openCache)
	ratingSvc := usecase.NewRatingService(ratingRepo)
	ratingSvc.SetDefaultBatchWorkers(cfg.RecomputeWorkerCount)
	leaderboardSvc := usecase.NewLeaderboardService(ratingRepo)

	handler := httpapi.NewHandler(marketplaceSvc, ratingSvc, leaderboardSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
