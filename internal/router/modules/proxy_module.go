package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/doctor-directory/internal/container"
	handlers "github.com/oksasatya/doctor-directory/internal/interface/http"
	"github.com/oksasatya/doctor-directory/internal/interface/middleware"
)

// ProxyModule mirrors the backend API under /api.
type ProxyModule struct {
	Handler *handlers.ProxyHandler
	Limit   int
	Window  time.Duration
	Allow   middleware.AllowFunc
}

func NewProxyModule(h *handlers.ProxyHandler, limit int, window time.Duration, allow middleware.AllowFunc) *ProxyModule {
	return &ProxyModule{Handler: h, Limit: limit, Window: window, Allow: allow}
}

func (m *ProxyModule) Register(rg *gin.RouterGroup) {
	addLimiter := middleware.RateLimit(container.GetRedis(), m.Limit, m.Window, middleware.KeyByIPAndPath(), m.Allow)

	rg.POST("/add-doctor", addLimiter, m.Handler.AddDoctor)
	rg.GET("/list-doctor-with-filter", m.Handler.ListDoctors)
}
