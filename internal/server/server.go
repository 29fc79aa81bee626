package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/caja/internal/catalog"
	catalogdomain "github.com/smallbiznis/caja/internal/catalog/domain"
	"github.com/smallbiznis/caja/internal/config"
	"github.com/smallbiznis/caja/internal/observability/metrics"
	"github.com/smallbiznis/caja/internal/register"
	registerdomain "github.com/smallbiznis/caja/internal/register/domain"
	"github.com/smallbiznis/caja/internal/ticket"
	ticketdomain "github.com/smallbiznis/caja/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	catalog.Module,
	ticket.Module,
	register.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	cfg         config.Config
	catalogSvc  catalogdomain.Service
	templateSvc ticketdomain.Service
	registerSvc registerdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	CatalogSvc  catalogdomain.Service
	TemplateSvc ticketdomain.Service
	RegisterSvc registerdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		catalogSvc:  p.CatalogSvc,
		templateSvc: p.TemplateSvc,
		registerSvc: p.RegisterSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalog --------
	api.POST("/catalog/import", s.ImportCatalog)
	api.GET("/catalog/products", s.ListProducts)
	api.GET("/catalog/products/:reference", s.GetProduct)

	// -------- Ticket template --------
	api.GET("/template", s.GetTemplate)
	api.PUT("/template", s.UpdateTemplate)

	// -------- Register --------
	api.GET("/register/status", s.RegisterStatus)
	api.POST("/register/open", s.OpenRegister)
	api.POST("/register/close", s.CloseRegister)
	api.GET("/register/totals", s.RegisterTotals)
	api.GET("/register/last-close", s.LastClose)
	api.GET("/register/last-close/export", s.LastCloseExport)

	// -------- Working sale --------
	api.GET("/sale", s.CurrentSale)
	api.POST("/sale/lines", s.AddLine)
	api.PATCH("/sale/lines/:index", s.EditLine)
	api.DELETE("/sale/lines/:index", s.RemoveLine)
	api.POST("/sale/charge", s.ChargeWorkingSale)
}
