package natal

import (
	"fmt"

	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

// BirthMoment is the minimal calendar/time/offset tuple needed to compute
// a natal position. Values are never mutated after validation.
type BirthMoment struct {
	Year           int
	Month          int
	Day            int
	Hour           int
	Minute         int
	UTCOffsetHours float64
}

// DefaultUTCOffsetHours is applied when the caller omits the offset.
const DefaultUTCOffsetHours = 3.0

// Validate checks field ranges. Violations are reported, never clamped.
func (m BirthMoment) Validate() error {
	if m.Year < 1 {
		return invalid(fmt.Sprintf("doğum yılı geçersiz: %d", m.Year))
	}
	if m.Month < 1 || m.Month > 12 {
		return invalid(fmt.Sprintf("doğum ayı 1-12 aralığında olmalı: %d", m.Month))
	}
	if m.Day < 1 || m.Day > daysInMonth(m.Year, m.Month) {
		return invalid(fmt.Sprintf("doğum günü %d. ay için geçersiz: %d", m.Month, m.Day))
	}
	if m.Hour < 0 || m.Hour > 23 {
		return invalid(fmt.Sprintf("doğum saati 0-23 aralığında olmalı: %d", m.Hour))
	}
	if m.Minute < 0 || m.Minute > 59 {
		return invalid(fmt.Sprintf("doğum dakikası 0-59 aralığında olmalı: %d", m.Minute))
	}
	return nil
}

func invalid(message string) error {
	return apperrors.Wrap("invalid_input", message, nil)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// EngineBody is one celestial body as reported by the calculation engine.
type EngineBody struct {
	Name             string
	SignIndex        int
	LongitudeDegrees float64
}

// EngineChart is the transient copy of an engine response.
type EngineChart struct {
	Bodies       []EngineBody
	TimestampUTC string
}

// SunSignResult is derived per request and never stored.
type SunSignResult struct {
	SignName     string
	Degree       float64
	UTCTimestamp string
}
