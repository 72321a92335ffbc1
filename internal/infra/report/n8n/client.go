package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/astracalc/agent-server/internal/domain/report"
	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

// The workflow fans out to several downstream services, so the timeout is
// deliberately generous.
const defaultTimeout = 60 * time.Second

// Config points the client at an n8n webhook. The URL is the credential;
// no auth header is sent.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client triggers the external report workflow.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a webhook client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "n8n.client"),
	}
}

type webhookRequest struct {
	BirthDate     string          `json:"birth_date"`
	BirthTime     string          `json:"birth_time"`
	BirthLocation webhookLocation `json:"birth_location"`
}

type webhookLocation struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type webhookResponse struct {
	Report   string `json:"report"`
	ReportID string `json:"report_id"`
}

// GenerateReport posts the birth data to the workflow. It never retries;
// workflow runs are expensive and must be re-requested explicitly.
func (c *Client) GenerateReport(ctx context.Context, req report.Request) (report.WebhookResponse, error) {
	if c.cfg.URL == "" {
		return report.WebhookResponse{}, apperrors.Wrap("webhook_unavailable",
			"Rapor servisi yapılandırılmamış.", errors.New("webhook url is empty"))
	}

	payload, err := json.Marshal(webhookRequest{
		BirthDate: req.BirthDate,
		BirthTime: req.BirthTime,
		BirthLocation: webhookLocation{
			City: req.Location.City,
			Lat:  req.Location.Latitude,
			Lon:  req.Location.Longitude,
		},
	})
	if err != nil {
		return report.WebhookResponse{}, fmt.Errorf("encode webhook request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return report.WebhookResponse{}, fmt.Errorf("build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return report.WebhookResponse{}, apperrors.Wrap("report_timeout",
				"Rapor hazırlanması beklenenden uzun sürdü, lütfen daha sonra tekrar deneyin.", err)
		}
		return report.WebhookResponse{}, apperrors.Wrap("webhook_unavailable",
			"Rapor servisine şu anda ulaşılamıyor, lütfen daha sonra tekrar deneyin.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("webhook returned non-200", "status", resp.StatusCode, "body", peekBody(resp.Body))
		return report.WebhookResponse{}, apperrors.Wrap("webhook_error",
			fmt.Sprintf("Rapor servisi isteği tamamlayamadı (HTTP %d), lütfen daha sonra tekrar deneyin.", resp.StatusCode),
			fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return report.WebhookResponse{}, apperrors.Wrap("webhook_unavailable",
			"Rapor servisine şu anda ulaşılamıyor, lütfen daha sonra tekrar deneyin.", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return report.WebhookResponse{}, nil
	}

	// A 200 with an unexpected shape still acknowledges the run; report
	// and report_id are optional extras.
	var raw webhookResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("webhook response undecodable, continuing without report fields", "error", err)
		return report.WebhookResponse{}, nil
	}
	return report.WebhookResponse{Report: raw.Report, ReportID: raw.ReportID}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func peekBody(r io.Reader) string {
	payload, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	return string(payload)
}
