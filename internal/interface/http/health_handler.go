package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/doctor-directory/pkg/helpers"
	"github.com/oksasatya/doctor-directory/pkg/response"
)

// HealthHandler reports which optional dependencies are reachable.
// The service stays up without them, so health is always 200.
type HealthHandler struct {
	Redis  *redis.Client
	ES     *elasticsearch.Client
	Events bool
}

func NewHealthHandler(rdb *redis.Client, es *elasticsearch.Client, events bool) *HealthHandler {
	return &HealthHandler{Redis: rdb, ES: es, Events: events}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := map[string]string{
		"redis":         "disabled",
		"elasticsearch": "disabled",
		"events":        "disabled",
	}
	if h.Redis != nil {
		status["redis"] = "ok"
		if err := helpers.PingRedis(ctx, h.Redis); err != nil {
			status["redis"] = "down"
		}
	}
	if h.ES != nil {
		status["elasticsearch"] = "ok"
		res, err := h.ES.Ping(h.ES.Ping.WithContext(ctx))
		if err != nil {
			status["elasticsearch"] = "down"
		} else {
			if res.IsError() {
				status["elasticsearch"] = "down"
			}
			_ = res.Body.Close()
		}
	}
	if h.Events {
		status["events"] = "ok"
	}
	response.Success(c, http.StatusOK, status, "ok", nil)
}
