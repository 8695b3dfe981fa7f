package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/doctor-directory/internal/container"
	handlers "github.com/oksasatya/doctor-directory/internal/interface/http"
	"github.com/oksasatya/doctor-directory/internal/interface/middleware"
)

type SearchModule struct {
	Handler *handlers.SearchHandler
}

func NewSearchModule(h *handlers.SearchHandler) *SearchModule {
	return &SearchModule{Handler: h}
}

func (m *SearchModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil) // 60 req/min per IP
	rg.GET("/doctors/search", rl, m.Handler.Search)
}
