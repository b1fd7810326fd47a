package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/smallbiznis/benchstay/internal/audit/domain"
	"github.com/smallbiznis/benchstay/internal/clock"
	"github.com/smallbiznis/benchstay/internal/config"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	"github.com/smallbiznis/benchstay/internal/importer"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	"github.com/smallbiznis/benchstay/internal/observability"
	obsmiddleware "github.com/smallbiznis/benchstay/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/benchstay/internal/observability/metrics"
	obstracing "github.com/smallbiznis/benchstay/internal/observability/tracing"
	propertydomain "github.com/smallbiznis/benchstay/internal/property/domain"
	"github.com/smallbiznis/benchstay/internal/ratelimit"
	reportdomain "github.com/smallbiznis/benchstay/internal/report/domain"
	"github.com/smallbiznis/benchstay/internal/reportcache"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	clock       clock.Clock
	propertySvc propertydomain.Service
	recordSvc   dailyrecorddomain.Service
	marketSvc   marketdomain.Service
	reportSvc   reportdomain.Service
	auditSvc    auditdomain.Service
	importer    *importer.Service
	cache       *reportcache.Cache
	limiter     *ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Clock       clock.Clock
	PropertySvc propertydomain.Service
	RecordSvc   dailyrecorddomain.Service
	MarketSvc   marketdomain.Service
	ReportSvc   reportdomain.Service
	AuditSvc    auditdomain.Service
	Importer    *importer.Service
	Cache       *reportcache.Cache `optional:"true"`
	Limiter     *ratelimit.Limiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		clock:       p.Clock,
		propertySvc: p.PropertySvc,
		recordSvc:   p.RecordSvc,
		marketSvc:   p.MarketSvc,
		reportSvc:   p.ReportSvc,
		auditSvc:    p.AuditSvc,
		importer:    p.Importer,
		cache:       p.Cache,
		limiter:     p.Limiter,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Hotels --------
	api.GET("/hotels", s.ListHotels)
	api.POST("/hotels", s.CreateHotel)

	hotel := api.Group("/hotels/:hotel_id", HotelParam())
	hotel.GET("", s.GetHotel)
	hotel.PUT("", s.UpdateHotel)

	// -------- Competitors --------
	hotel.GET("/competitors", s.ListCompetitors)
	hotel.POST("/competitors", s.CreateCompetitor)
	api.PATCH("/competitors/:id", s.UpdateCompetitor)
	api.POST("/competitors/:id/deactivate", s.DeactivateCompetitor)
	api.DELETE("/competitors/:id", s.DeleteCompetitor)

	// -------- Daily records --------
	api.POST("/records", s.WriteRecord)
	api.GET("/records/:id", s.GetRecord)
	api.PUT("/records/:id", s.UpdateRecord)
	api.DELETE("/records/:id", s.DeleteRecord)
	hotel.GET("/records", s.ListRecords)
	hotel.POST("/import", Throttle(s.limiter, "import"), s.ImportWorkbook)

	// -------- Market --------
	hotel.GET("/market/:date", s.GetMarketSnapshot)
	hotel.POST("/market/:date/recalculate", Throttle(s.limiter, "recalculate"), s.RecalculateMarket)
	hotel.GET("/market/:date/indices", s.GetPerformanceIndex)
	hotel.GET("/market/:date/rankings", s.GetRankings)

	// -------- Reports --------
	hotel.GET("/reports/performance", s.PerformanceSummary)
	hotel.GET("/reports/competitors", s.CompetitorAnalytics)
	hotel.GET("/reports/competitors/export", Throttle(s.limiter, "export"), s.ExportCompetitorAnalytics)
	hotel.GET("/reports/revpar-matrix", s.RevPARMatrix)

	api.GET("/audit-logs", s.ListAuditLogs)
	api.POST("/cache/clear", s.ClearCache)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
