package gateway

import (
	"github.com/gin-gonic/gin"

	"jiratools/internal/tools"
)

// RouterDeps carries what the router needs.
type RouterDeps struct {
	Registry    *tools.Registry
	ServiceName string
	Version     string
}

// NewRouter builds the gin engine with health and v1 tool routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	NewHealthHandler(deps.ServiceName, deps.Version, deps.Registry).RegisterRoutes(r)

	v1 := r.Group("/v1")
	NewHandler(deps.Registry).Register(v1)

	return r
}
