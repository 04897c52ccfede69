package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/vanity/internal/branding"
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
	"github.com/smallbiznis/vanity/internal/cache"
	"github.com/smallbiznis/vanity/internal/clock"
	"github.com/smallbiznis/vanity/internal/config"
	"github.com/smallbiznis/vanity/internal/customdomain"
	customdomaindomain "github.com/smallbiznis/vanity/internal/customdomain/domain"
	"github.com/smallbiznis/vanity/internal/observability"
	obsmiddleware "github.com/smallbiznis/vanity/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/vanity/internal/observability/metrics"
	obstracing "github.com/smallbiznis/vanity/internal/observability/tracing"
	"github.com/smallbiznis/vanity/internal/ratelimit"
	"github.com/smallbiznis/vanity/internal/tenant"
	tenantdomain "github.com/smallbiznis/vanity/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	branding.Module,
	cache.Module,
	customdomain.Module,
	ratelimit.Module,
	tenant.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(obsCfg, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	brandingSvc   brandingdomain.Service
	domainSvc     customdomaindomain.Service
	resolver      cache.BrandingResolver
	tenants       tenantdomain.Repository
	verifyLimiter *ratelimit.TokenBucket
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	BrandingSvc   brandingdomain.Service
	DomainSvc     customdomaindomain.Service
	Resolver      cache.BrandingResolver
	Tenants       tenantdomain.Repository
	VerifyLimiter *ratelimit.TokenBucket `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		genID:         p.GenID,
		clock:         p.Clock,
		brandingSvc:   p.BrandingSvc,
		domainSvc:     p.DomainSvc,
		resolver:      p.Resolver,
		tenants:       p.Tenants,
		verifyLimiter: p.VerifyLimiter,
	}

	svc.registerPublicRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/v1", s.BrandingResolution())

	public.GET("/theme", s.GetTheme)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1", s.AuthRequired())

	api.GET("/branding", s.GetBranding)
	api.PUT("/branding", s.UpdateBranding)
	api.DELETE("/branding", s.DeleteBranding)

	api.POST("/branding/domain", s.SetDomain)
	api.POST("/branding/domain/verify", s.VerifyDomain)
	api.DELETE("/branding/domain", s.ClearDomain)
}
