// Package http wires the gin engine: middleware chain, route tree and the
// HTTP server lifecycle.
package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trackops/riskregistry/internal/config"
	"github.com/trackops/riskregistry/internal/interfaces/http/handlers"
	"github.com/trackops/riskregistry/pkg/logger"
)

// Router HTTP 路由器
type Router struct {
	engine          *gin.Engine
	config          *config.Config
	logger          logger.Logger
	middleware      *handlers.Middleware
	healthHandler   *handlers.HealthHandler
	riskHandler     *handlers.RiskHandler
	taxonomyHandler *handlers.TaxonomyHandler
	controlHandler  *handlers.ControlHandler
	actionHandler   *handlers.ActionHandler
	server          *http.Server
}

// NewRouter 创建路由器
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	middleware *handlers.Middleware,
	healthHandler *handlers.HealthHandler,
	riskHandler *handlers.RiskHandler,
	taxonomyHandler *handlers.TaxonomyHandler,
	controlHandler *handlers.ControlHandler,
	actionHandler *handlers.ActionHandler,
) *Router {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Router{
		engine:          gin.New(),
		config:          cfg,
		logger:          log.WithComponent("router"),
		middleware:      middleware,
		healthHandler:   healthHandler,
		riskHandler:     riskHandler,
		taxonomyHandler: taxonomyHandler,
		controlHandler:  controlHandler,
		actionHandler:   actionHandler,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	// 全局中间件
	r.engine.Use(gin.Recovery())
	r.engine.Use(r.middleware.RequestID())
	r.engine.Use(r.middleware.Tracing())
	r.engine.Use(r.middleware.Logging())
	r.engine.Use(r.middleware.Metrics())

	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:  r.config.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// 健康检查路由
	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/live", r.healthHandler.LivenessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pprof 性能分析（仅在非生产环境）
	if r.config.Server.Environment != "production" {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")
	{
		themes := v1.Group("/themes")
		{
			themes.POST("", r.taxonomyHandler.CreateTheme)
			themes.GET("", r.taxonomyHandler.ListThemes)
			themes.GET("/:theme_id", r.taxonomyHandler.GetTheme)
			themes.PUT("/:theme_id", r.taxonomyHandler.UpdateTheme)
			themes.DELETE("/:theme_id", r.taxonomyHandler.DeleteTheme)
			themes.POST("/:theme_id/categories", r.taxonomyHandler.CreateCategory)
			themes.GET("/:theme_id/categories", r.taxonomyHandler.ListCategories)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("/:category_id", r.taxonomyHandler.GetCategory)
			categories.PUT("/:category_id", r.taxonomyHandler.UpdateCategory)
			categories.DELETE("/:category_id", r.taxonomyHandler.DeleteCategory)
		}

		risks := v1.Group("/risks")
		{
			risks.POST("", r.riskHandler.Create)
			risks.GET("", r.riskHandler.List)
			risks.POST("/recalculate", r.riskHandler.Recalculate)
			risks.GET("/heatmap", r.riskHandler.Heatmap)
			risks.GET("/:risk_id", r.riskHandler.Get)
			risks.PUT("/:risk_id", r.riskHandler.Update)
			risks.DELETE("/:risk_id", r.riskHandler.Delete)

			risks.POST("/:risk_id/controls", r.controlHandler.Attach)
			risks.GET("/:risk_id/controls", r.controlHandler.ListAttachments)

			risks.POST("/:risk_id/actions", r.actionHandler.Create)
			risks.GET("/:risk_id/actions", r.actionHandler.ListByRisk)
		}

		controls := v1.Group("/controls")
		{
			controls.POST("", r.controlHandler.CreateEntry)
			controls.GET("", r.controlHandler.ListEntries)
			controls.GET("/:control_id", r.controlHandler.GetEntry)
			controls.PUT("/:control_id", r.controlHandler.UpdateEntry)
			controls.DELETE("/:control_id", r.controlHandler.DeleteEntry)
		}

		attachments := v1.Group("/attachments")
		{
			attachments.PUT("/:attachment_id", r.controlHandler.UpdateAttachment)
			attachments.DELETE("/:attachment_id", r.controlHandler.Detach)
		}

		actions := v1.Group("/actions")
		{
			actions.GET("/:action_id", r.actionHandler.Get)
			actions.PUT("/:action_id", r.actionHandler.Update)
			actions.DELETE("/:action_id", r.actionHandler.Delete)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Engine 返回底层 gin 引擎，供测试使用
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Start 启动 HTTP 服务器并阻塞直到关闭
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := r.config.Server.Host + ":" + strconv.Itoa(r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("address", addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (r *Router) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "Shutting down HTTP server")
	return r.server.Shutdown(ctx)
}
