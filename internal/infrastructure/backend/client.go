package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/doctor-directory/internal/domain/repository"
)

const (
	AddDoctorPath   = "/api/add-doctor"
	ListDoctorsPath = "/api/list-doctor-with-filter"

	maxBodyBytes = 10 << 20
)

// Client talks to the fixed external doctor backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConnsPerHost:   10,
				ResponseHeaderTimeout: timeout,
				DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		},
		Logger: logger,
	}
}

// AddDoctor posts body verbatim to the backend add endpoint.
func (c *Client) AddDoctor(ctx context.Context, body []byte) (*repository.Relay, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+AddDoctorPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// ListDoctors appends rawQuery unchanged to the backend list endpoint.
func (c *Client) ListDoctors(ctx context.Context, rawQuery string) (*repository.Relay, error) {
	u := c.BaseURL + ListDoctorsPath
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*repository.Relay, error) {
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrBackendUnreachable, err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", repository.ErrBackendUnreachable, err)
	}
	if c.Logger != nil {
		c.Logger.WithFields(logrus.Fields{
			"method":  req.Method,
			"path":    req.URL.Path,
			"status":  res.StatusCode,
			"elapsed": time.Since(start).String(),
		}).Debug("doctor backend call")
	}
	relay := &repository.Relay{Status: res.StatusCode, Body: body}
	if !json.Valid(body) {
		return relay, fmt.Errorf("%w: status %d", repository.ErrBackendInvalidBody, res.StatusCode)
	}
	return relay, nil
}
