package http

import (
	"context"
	"net/http"
	"time"

	"github.com/civictrack/civictrack-go/internal/apiclient"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type UpstreamStatus struct {
	BaseURL          string  `json:"base_url"`
	Calls            int64   `json:"calls"`
	Errors           int64   `json:"errors"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
	ErrorRatePercent float64 `json:"error_rate_percent"`
}

type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Service   string          `json:"service"`
	Version   string          `json:"version"`
	Redis     string          `json:"redis,omitempty"`
	Upstream  *UpstreamStatus `json:"upstream,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	redis       *redis.Client
	upstream    *apiclient.Client
}

// NewHealthHandler reports on redis and the upstream client when they are set.
func NewHealthHandler(serviceName, version string, rdb *redis.Client, upstream *apiclient.Client) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		redis:       rdb,
		upstream:    upstream,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	redisStatus := "disabled"
	if h.redis != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.redis.Ping(pingCtx).Err(); err != nil {
			redisStatus = "down"
		} else {
			redisStatus = "up"
		}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Redis:     redisStatus,
	}
	if h.upstream != nil {
		m := h.upstream.Metrics()
		resp.Upstream = &UpstreamStatus{
			BaseURL:          h.upstream.BaseURL(),
			Calls:            m.Calls,
			Errors:           m.Errors,
			AverageLatencyMs: m.AverageLatency(),
			ErrorRatePercent: m.ErrorRate(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
