package api

import (
	"context"
	"net/http"

	"example.com/cartonbox/config"
	"example.com/cartonbox/internal/api/middleware"
	"example.com/cartonbox/internal/api/routes"
	"example.com/cartonbox/internal/auth"
	"example.com/cartonbox/internal/cache"
	"example.com/cartonbox/internal/messaging"
	"example.com/cartonbox/internal/metrics"
	"example.com/cartonbox/internal/search"
	"example.com/cartonbox/internal/services"
	"example.com/cartonbox/internal/storage"
	"example.com/cartonbox/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	router     *gin.Engine
	config     *config.Config
	httpServer *http.Server
}

// NewServer creates a new HTTP server wired to the service layer
func NewServer(
	cfg *config.Config,
	db *gorm.DB,
	readOnlyDB *gorm.DB,
	projectionCache *cache.RedisCache,
	searchClient *search.ElasticClient,
	bus messaging.Publisher,
	store storage.Uploader,
	tracer tracing.Tracer,
) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log.Logger))

	if app := tracer.Application(); app != nil {
		router.Use(middleware.NewRelicMiddleware(app))
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	collector := metrics.NewMetrics()

	svc := routes.Services{
		Customers:   services.NewCustomerService(db, readOnlyDB),
		Orders:      services.NewOrderService(db, readOnlyDB, projectionCache, store, tracer, collector),
		Production:  services.NewProductionService(db, readOnlyDB, projectionCache, tracer),
		Fulfillment: services.NewFulfillmentService(db, readOnlyDB, projectionCache, searchClient, bus, tracer, collector, cfg.Fulfillment.StrictDelete),
		Dashboard:   services.NewDashboardService(db, readOnlyDB, projectionCache),
		Users:       services.NewUserService(db, readOnlyDB, issuer, projectionCache, cfg.Auth.ResetTTL),
		Search:      searchClient,
		Metrics:     collector,
	}

	routes.SetupRoutes(router, svc, issuer)

	return &Server{
		router: router,
		config: cfg,
		httpServer: &http.Server{
			Addr:         cfg.ServerAddress,
			Handler:      router,
			ReadTimeout:  cfg.ServerTimeout,
			WriteTimeout: cfg.ServerTimeout,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
