package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/doctor-directory/internal/container"
	handlers "github.com/oksasatya/doctor-directory/internal/interface/http"
	"github.com/oksasatya/doctor-directory/internal/interface/middleware"
)

// DebugModule exposes GET /api/health and, when enabled, GET /api/debug/vars.
type DebugModule struct {
	Health     *handlers.HealthHandler
	ExposeVars bool
}

func NewDebugModule(health *handlers.HealthHandler, exposeVars bool) *DebugModule {
	return &DebugModule{Health: health, ExposeVars: exposeVars}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Health.Health)
	if !m.ExposeVars {
		return
	}
	// Public metrics endpoint (expvar), rate-limited per IP
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
