package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/doctor-directory/internal/container"
	handlers "github.com/oksasatya/doctor-directory/internal/interface/http"
	"github.com/oksasatya/doctor-directory/internal/interface/middleware"
)

// PagesModule serves the HTML pages:
// GET /, GET /doctors/:specialty, GET /add-doctor, POST /add-doctor
type PagesModule struct {
	Handler *handlers.PageHandler
	Limit   int
	Window  time.Duration
	Allow   middleware.AllowFunc
}

func NewPagesModule(h *handlers.PageHandler, limit int, window time.Duration, allow middleware.AllowFunc) *PagesModule {
	return &PagesModule{Handler: h, Limit: limit, Window: window, Allow: allow}
}

func (m *PagesModule) Register(rg *gin.RouterGroup) {
	submitLimiter := middleware.RateLimit(container.GetRedis(), m.Limit, m.Window, middleware.KeyByIPAndPath(), m.Allow)

	rg.GET("/", m.Handler.Home)
	rg.GET("/doctors/:specialty", m.Handler.ListDoctors)
	rg.GET("/add-doctor", m.Handler.AddDoctorForm)
	rg.POST("/add-doctor", submitLimiter, m.Handler.SubmitDoctor)
}
