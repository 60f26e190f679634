package monitoring

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/automak-sensors/device-management/internal/infrastructure/config"
)

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 512

// HTTPClient calls the monitoring service's REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  Logger
}

// NewHTTPClient builds a client with the configured connect and read
// timeouts. The read timeout bounds the whole exchange after connecting.
func NewHTTPClient(cfg config.MonitoringHTTPConfig) *HTTPClient {
	connect := time.Duration(cfg.ConnectTimeout) * time.Second
	read := time.Duration(cfg.ReadTimeout) * time.Second

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connect}).DialContext
	transport.ResponseHeaderTimeout = read

	return &HTTPClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  &http.Client{Transport: transport, Timeout: connect + read},
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger.
func (c *HTTPClient) SetLogger(l Logger) {
	c.logger = l
}

// Activate sends PUT /api/sensors/{id}/monitoring/enable.
func (c *HTTPClient) Activate(ctx context.Context, sensorID string) error {
	return c.do(ctx, http.MethodPut, sensorID, ActionEnable)
}

// Deactivate sends DELETE /api/sensors/{id}/monitoring/disable.
func (c *HTTPClient) Deactivate(ctx context.Context, sensorID string) error {
	return c.do(ctx, http.MethodDelete, sensorID, ActionDisable)
}

func (c *HTTPClient) do(ctx context.Context, method, sensorID, action string) error {
	endpoint := fmt.Sprintf("%s/api/sensors/%s/monitoring/%s", c.baseURL, url.PathEscape(sensorID), action)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrMonitoringUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMonitoringUnavailable, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best effort detail
		return fmt.Errorf("%w: %s %s returned %d: %s",
			ErrMonitoringUnavailable, method, endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // body content is not used
	c.logger.Info("monitoring "+action+" sent", "sensor_id", sensorID)
	return nil
}
