package natal

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

// Service exposes sun-sign calculation backed by the external engine.
type Service interface {
	SunSign(ctx context.Context, moment BirthMoment) (SunSignResult, error)
}

// EngineClient is the outbound contract with the calculation engine.
type EngineClient interface {
	NatalChart(ctx context.Context, moment BirthMoment) (EngineChart, error)
}

const sunBodyName = "sun"

type service struct {
	engine EngineClient
	logger *slog.Logger
}

// NewService wires up the sun-sign domain.
func NewService(engine EngineClient, logger *slog.Logger) Service {
	return &service{
		engine: engine,
		logger: logger.With("component", "natal.service"),
	}
}

// SunSign validates the birth moment, delegates the math to the engine and
// translates the sun entry of the response. The engine is assumed pure, so
// identical input yields identical output; no caching happens here.
func (s *service) SunSign(ctx context.Context, moment BirthMoment) (SunSignResult, error) {
	if err := moment.Validate(); err != nil {
		return SunSignResult{}, err
	}

	chart, err := s.engine.NatalChart(ctx, moment)
	if err != nil {
		return SunSignResult{}, err
	}

	sun, found := findBody(chart.Bodies, sunBodyName)
	if !found {
		// Contract mismatch with the engine, logged apart from user input
		// failures so integration breaks stand out.
		s.logger.Error("engine response missing sun body", "bodies", len(chart.Bodies))
		return SunSignResult{}, apperrors.Wrap("engine_contract",
			"Hesaplama sonucu beklenmeyen bir biçimde geldi, lütfen daha sonra tekrar deneyin.",
			fmt.Errorf("no body named %q in engine response", sunBodyName))
	}

	signName, err := SignName(sun.SignIndex)
	if err != nil {
		s.logger.Error("engine sign index out of range", "sign_index", sun.SignIndex)
		return SunSignResult{}, err
	}

	return SunSignResult{
		SignName:     signName,
		Degree:       roundDegree(sun.LongitudeDegrees),
		UTCTimestamp: chart.TimestampUTC,
	}, nil
}

func findBody(bodies []EngineBody, name string) (EngineBody, bool) {
	for _, body := range bodies {
		if strings.EqualFold(body.Name, name) {
			return body, true
		}
	}
	return EngineBody{}, false
}

func roundDegree(longitude float64) float64 {
	return math.Round(longitude*100) / 100
}
