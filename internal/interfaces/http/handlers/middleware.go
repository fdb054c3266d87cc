package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trackops/riskregistry/internal/infrastructure/monitoring"
	"github.com/trackops/riskregistry/pkg/constants"
	"github.com/trackops/riskregistry/pkg/logger"
)

// Middleware HTTP 中间件集合
type Middleware struct {
	logger  logger.Logger
	metrics *monitoring.Metrics
	tracer  trace.Tracer
}

// NewMiddleware 创建中间件集合
func NewMiddleware(log logger.Logger, metrics *monitoring.Metrics) *Middleware {
	return &Middleware{
		logger:  log.WithComponent("http"),
		metrics: metrics,
		tracer:  otel.Tracer(constants.ServiceName),
	}
}

// RequestID 为每个请求分配请求 ID
func (m *Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Tracing 为每个请求开启 OpenTelemetry span
func (m *Middleware) Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := m.tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.path", c.FullPath()),
			attribute.Int("http.status_code", c.Writer.Status()),
		)
	}
}

// Logging 记录每个请求的访问日志
func (m *Middleware) Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.logger.Info(c.Request.Context(), "HTTP request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Int64("duration_ms", time.Since(start).Milliseconds()),
			logger.String("client_ip", c.ClientIP()),
		)
	}
}

// Metrics 记录每个请求的 Prometheus 指标
func (m *Middleware) Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "not_found"
		}
		m.metrics.RecordRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
