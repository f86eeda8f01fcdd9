package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jiratools/internal/tools"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Tools     int       `json:"tools"`
}

type HealthHandler struct {
	serviceName string
	version     string
	registry    *tools.Registry
}

func NewHealthHandler(serviceName, version string, registry *tools.Registry) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		registry:    registry,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Tools:     h.registry.Count(),
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
