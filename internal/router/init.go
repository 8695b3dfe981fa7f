package router

import (
	"github.com/oksasatya/doctor-directory/internal/application"
	"github.com/oksasatya/doctor-directory/internal/container"
	"github.com/oksasatya/doctor-directory/internal/infrastructure/backend"
	"github.com/oksasatya/doctor-directory/internal/infrastructure/cache"
	"github.com/oksasatya/doctor-directory/internal/infrastructure/search"
	handlers "github.com/oksasatya/doctor-directory/internal/interface/http"
	"github.com/oksasatya/doctor-directory/internal/interface/middleware"
	"github.com/oksasatya/doctor-directory/internal/router/modules"
)

type DoctorModuleDeps struct {
	Service *application.DoctorService
	Pages   *handlers.PageHandler
	Proxy   *handlers.ProxyHandler
	Search  *handlers.SearchHandler
	Health  *handlers.HealthHandler
}

// BuildDoctorService assembles the doctor service from whatever the container holds.
func BuildDoctorService() *application.DoctorService {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	svc := application.NewDoctorService(
		backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger),
		nil,
		nil,
		logger,
	)
	if rdb := container.GetRedis(); rdb != nil {
		svc.Cache = cache.NewListCache(rdb, cfg.ListCacheTTL)
		svc.Locks = cache.NewSubmitLocks(rdb, cfg.SubmitLockTTL)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		svc.Events = pub
	}
	if es := container.GetES(); es != nil {
		svc.Index = search.NewDoctorIndex(es, cfg.ESDoctorsIndex, logger)
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		svc.GCS = gcs
		svc.GCSBucket = cfg.GCSBucket
	}
	return svc
}

func buildDoctorDeps() DoctorModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := BuildDoctorService()

	return DoctorModuleDeps{
		Service: svc,
		Pages:   handlers.NewPageHandler(svc, logger, cfg.DefaultListingSlug, cfg.RedirectDelay),
		Proxy:   handlers.NewProxyHandler(svc, logger),
		Search:  handlers.NewSearchHandler(svc, logger),
		Health:  handlers.NewHealthHandler(container.GetRedis(), container.GetES(), container.GetRabbitPub() != nil),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	deps := buildDoctorDeps()

	var allow middleware.AllowFunc
	if cfg.RateLimitBypassPrivate {
		allow = middleware.AllowPrivateIP()
	}

	r.AddPages(modules.NewPagesModule(deps.Pages, cfg.AddDoctorRateLimit, cfg.AddDoctorRateWindow, allow))
	r.Add(modules.NewProxyModule(deps.Proxy, cfg.AddDoctorRateLimit, cfg.AddDoctorRateWindow, allow))
	r.Add(modules.NewSearchModule(deps.Search))
	r.Add(modules.NewDebugModule(deps.Health, cfg.DebugMetricsEnabled))
}
