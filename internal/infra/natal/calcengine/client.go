package calcengine

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

	"github.com/astracalc/agent-server/internal/domain/natal"
	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

const (
	defaultPath    = "/natal/basic"
	defaultTimeout = 10 * time.Second
)

// Auth schemes the engine has shipped across revisions.
const (
	AuthSchemeHeader = "header" // X-API-Key
	AuthSchemeBearer = "bearer" // Authorization: Bearer
)

// Config points the client at a calculation engine deployment. Path and
// auth scheme stay configurable because upstream revisions disagree.
type Config struct {
	BaseURL    string
	Path       string
	APIKey     string
	AuthScheme string
	Timeout    time.Duration
}

// Client calls the external natal calculation engine.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds an engine client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.Path) == "" {
		cfg.Path = defaultPath
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = AuthSchemeHeader
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "calcengine.client"),
	}
}

type natalRequest struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Day      int     `json:"day"`
	Hour     int     `json:"hour"`
	Minute   int     `json:"minute"`
	TZOffset float64 `json:"tz_offset"`
}

type natalResponse struct {
	Bodies []natalBody `json:"bodies"`
	TSUTC  string      `json:"ts_utc"`
}

type natalBody struct {
	Name      string  `json:"name"`
	SignIndex int     `json:"sign_index"`
	Lon       float64 `json:"lon"`
}

// NatalChart posts a validated birth moment to the engine and returns the
// transient body list.
func (c *Client) NatalChart(ctx context.Context, moment natal.BirthMoment) (natal.EngineChart, error) {
	payload, err := json.Marshal(natalRequest{
		Year:     moment.Year,
		Month:    moment.Month,
		Day:      moment.Day,
		Hour:     moment.Hour,
		Minute:   moment.Minute,
		TZOffset: moment.UTCOffsetHours,
	})
	if err != nil {
		return natal.EngineChart{}, fmt.Errorf("encode natal request: %w", err)
	}

	endpoint := c.cfg.BaseURL + c.cfg.Path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return natal.EngineChart{}, fmt.Errorf("build natal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return natal.EngineChart{}, apperrors.Wrap("engine_timeout",
				"Hesaplama motoru zaman aşımına uğradı, lütfen tekrar deneyin.", err)
		}
		return natal.EngineChart{}, apperrors.Wrap("engine_unavailable",
			"Hesaplama motoruna şu anda ulaşılamıyor, lütfen daha sonra tekrar deneyin.", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		c.logger.Error("engine server error", "status", resp.StatusCode, "body", peekBody(resp.Body))
		return natal.EngineChart{}, apperrors.Wrap("engine_unavailable",
			"Hesaplama motoruna şu anda ulaşılamıyor, lütfen daha sonra tekrar deneyin.",
			fmt.Errorf("engine returned status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		c.logger.Error("engine rejected request", "status", resp.StatusCode, "body", peekBody(resp.Body))
		return natal.EngineChart{}, apperrors.Wrap("engine_rejected",
			"Hesaplama isteği kabul edilmedi, lütfen doğum bilgilerini kontrol edin.",
			fmt.Errorf("engine returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return natal.EngineChart{}, apperrors.Wrap("engine_unavailable",
			"Hesaplama motoruna şu anda ulaşılamıyor, lütfen daha sonra tekrar deneyin.", err)
	}

	var raw natalResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Error("engine response undecodable", "error", err)
		return natal.EngineChart{}, apperrors.Wrap("engine_contract",
			"Hesaplama sonucu beklenmeyen bir biçimde geldi, lütfen daha sonra tekrar deneyin.", err)
	}

	bodies := make([]natal.EngineBody, 0, len(raw.Bodies))
	for _, b := range raw.Bodies {
		bodies = append(bodies, natal.EngineBody{
			Name:             b.Name,
			SignIndex:        b.SignIndex,
			LongitudeDegrees: b.Lon,
		})
	}
	return natal.EngineChart{Bodies: bodies, TimestampUTC: raw.TSUTC}, nil
}

func (c *Client) setAuth(req *http.Request) {
	key := strings.TrimSpace(c.cfg.APIKey)
	if key == "" {
		return
	}
	if c.cfg.AuthScheme == AuthSchemeBearer {
		req.Header.Set("Authorization", "Bearer "+key)
		return
	}
	req.Header.Set("X-API-Key", key)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// peekBody reads a bounded prefix for diagnostics only; it never reaches
// user-visible output.
func peekBody(r io.Reader) string {
	payload, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	return string(payload)
}
