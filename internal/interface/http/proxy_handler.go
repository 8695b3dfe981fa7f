package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/doctor-directory/internal/application"
	"github.com/oksasatya/doctor-directory/internal/domain/repository"
	"github.com/oksasatya/doctor-directory/pkg/helpers"
)

const (
	ErrorCodeHeader      = "X-Error-Code"
	IdempotencyKeyHeader = "Idempotency-Key"

	maxProxyBody = 1 << 20
)

// ProxyHandler relays the directory API to the external backend.
type ProxyHandler struct {
	Svc    *application.DoctorService
	Logger *logrus.Logger
}

func NewProxyHandler(svc *application.DoctorService, logger *logrus.Logger) *ProxyHandler {
	return &ProxyHandler{Svc: svc, Logger: logger}
}

// AddDoctor forwards the JSON body verbatim and echoes the backend's answer.
func (h *ProxyHandler) AddDoctor(c *gin.Context) {
	helpers.CountMetric("proxy_add_requests")
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxProxyBody))
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	relay, err := h.Svc.RelayAdd(c.Request.Context(), body, c.GetHeader(IdempotencyKeyHeader))
	if errors.Is(err, application.ErrDuplicateSubmission) {
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate submission"})
		return
	}
	if err != nil {
		h.fail(c, err, "add-doctor relay failed")
		return
	}
	writeRelay(c, relay)
}

// ListDoctors forwards the query string unchanged. Any transport failure becomes
// {"error":"Failed to fetch doctors"} with status 500.
func (h *ProxyHandler) ListDoctors(c *gin.Context) {
	helpers.CountMetric("proxy_list_requests")
	relay, err := h.Svc.RelayList(c.Request.Context(), c.Request.URL.RawQuery)
	if err != nil {
		h.fail(c, err, "list-doctor relay failed")
		return
	}
	writeRelay(c, relay)
}

func (h *ProxyHandler) fail(c *gin.Context, err error, msg string) {
	code, message := application.CodeUpstreamUnreachable, "Internal server error"
	var uerr *application.UpstreamError
	if errors.As(err, &uerr) {
		code, message = uerr.Code, uerr.Message
	}
	if h.Logger != nil {
		h.Logger.WithError(err).WithFields(logrus.Fields{
			"code":       code,
			"request_id": c.GetString("request_id"),
		}).Error(msg)
	}
	c.Header(ErrorCodeHeader, code)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func writeRelay(c *gin.Context, relay *repository.Relay) {
	c.Data(relay.Status, "application/json; charset=utf-8", relay.Body)
}
