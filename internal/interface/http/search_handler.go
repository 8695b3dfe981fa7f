package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/doctor-directory/internal/application"
	"github.com/oksasatya/doctor-directory/pkg/response"
)

type SearchHandler struct {
	Svc    *application.DoctorService
	Logger *logrus.Logger
}

func NewSearchHandler(svc *application.DoctorService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{Svc: svc, Logger: logger}
}

// Search looks up doctors added through this service: GET /api/doctors/search?q=&size=
func (h *SearchHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if errors.Is(err, application.ErrSearchDisabled) {
		response.Error[any](c, http.StatusServiceUnavailable, "search is not enabled", nil)
		return
	}
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("q", q).Warn("doctor search failed")
		}
		response.Error[any](c, http.StatusBadGateway, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "doctors", map[string]any{"count": len(hits)})
}
