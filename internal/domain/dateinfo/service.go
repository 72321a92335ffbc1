package dateinfo

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

// Service reports the current calendar date with a localized weekday.
type Service interface {
	Today() (string, error)
}

// Config wires the date lookup domain.
type Config struct {
	Timezone string
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Pazartesi",
	time.Tuesday:   "Salı",
	time.Wednesday: "Çarşamba",
	time.Thursday:  "Perşembe",
	time.Friday:    "Cuma",
	time.Saturday:  "Cumartesi",
	time.Sunday:    "Pazar",
}

type service struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	once        sync.Once
	location    *time.Location
	locationErr error
}

// NewService wires up the date lookup domain.
func NewService(cfg Config, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "dateinfo.service"),
		now:    time.Now,
	}
}

// Today renders "YYYY-MM-DD (<weekday>)" for the configured timezone.
// Timezone data problems are reported as an error, never a crash.
func (s *service) Today() (string, error) {
	location, err := s.loadLocation()
	if err != nil {
		s.logger.Error("timezone data unavailable", "timezone", s.cfg.Timezone, "error", err)
		return "", apperrors.Wrap("clock_unavailable", "Tarih bilgisi şu anda alınamıyor.", err)
	}

	now := s.now().In(location)
	return fmt.Sprintf("%s (%s)", now.Format("2006-01-02"), weekdayNames[now.Weekday()]), nil
}

func (s *service) loadLocation() (*time.Location, error) {
	s.once.Do(func() {
		s.location, s.locationErr = time.LoadLocation(s.cfg.Timezone)
	})
	return s.location, s.locationErr
}
