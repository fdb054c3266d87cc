package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/trackops/riskregistry/pkg/logger"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   logger.Logger
}

// NewHealthHandler creates a health handler. redis may be nil when the cache
// is disabled; the check is then skipped.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
		log:   log.WithComponent("health"),
	}
}

// HealthCheck reports the service's health together with its dependencies.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	checks := h.performChecks(c)

	status := "healthy"
	httpStatus := http.StatusOK
	for _, checkStatus := range checks {
		if checkStatus != "ok" {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// ReadinessCheck reports whether the service is ready for traffic.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.HealthCheck(c)
}

// LivenessCheck reports only that the process is responsive.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *HealthHandler) performChecks(c *gin.Context) map[string]string {
	var wg sync.WaitGroup
	var mu sync.Mutex
	checks := make(map[string]string)

	set := func(name, status string) {
		mu.Lock()
		checks[name] = status
		mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			h.log.Warn(c.Request.Context(), "Database health check failed", logger.Error(err))
			set("database", "unavailable")
			return
		}
		set("database", "ok")
	}()

	if h.redis != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
				h.log.Warn(c.Request.Context(), "Redis health check failed", logger.Error(err))
				set("redis", "unavailable")
				return
			}
			set("redis", "ok")
		}()
	}

	wg.Wait()
	return checks
}
