package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

// Service exposes chart report generation backed by the external workflow.
type Service interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// WebhookClient is the outbound contract with the workflow collaborator.
type WebhookClient interface {
	GenerateReport(ctx context.Context, req Request) (WebhookResponse, error)
}

const (
	birthDateLayout = "2006-01-02"
	birthTimeLayout = "15:04"
)

type service struct {
	webhook WebhookClient
	logger  *slog.Logger
}

// NewService wires up the report domain.
func NewService(webhook WebhookClient, logger *slog.Logger) Service {
	return &service{
		webhook: webhook,
		logger:  logger.With("component", "report.service"),
	}
}

// Generate validates the input and triggers the workflow. Failed runs are
// not retried here; the user must explicitly re-request the report.
func (s *service) Generate(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	resp, err := s.webhook.GenerateReport(ctx, req)
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("chart report generated", "city", req.Location.City,
		"report_id", resp.ReportID, "has_body", resp.Report != "")

	return Result{
		Acknowledgement: fmt.Sprintf("Doğum haritası raporu oluşturuldu. Doğum: %s %s, Yer: %s",
			req.BirthDate, req.BirthTime, cityLabel(req.Location.City)),
		ReportBody: resp.Report,
		ReportID:   resp.ReportID,
	}, nil
}

func validate(req Request) error {
	if _, err := time.Parse(birthDateLayout, req.BirthDate); err != nil {
		return apperrors.Wrap("invalid_input",
			fmt.Sprintf("Doğum tarihi YYYY-AA-GG biçiminde olmalı: %s", req.BirthDate), err)
	}
	if _, err := time.Parse(birthTimeLayout, req.BirthTime); err != nil {
		return apperrors.Wrap("invalid_input",
			fmt.Sprintf("Doğum saati SS:DD biçiminde olmalı: %s", req.BirthTime), err)
	}
	if !isFinite(req.Location.Latitude) || !isFinite(req.Location.Longitude) {
		return apperrors.Wrap("invalid_input", "Enlem ve boylam sayısal değerler olmalı.", nil)
	}
	return nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func cityLabel(city string) string {
	if city == "" {
		return "bilinmiyor"
	}
	return city
}
