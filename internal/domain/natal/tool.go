package natal

import (
	"context"
	"fmt"
	"strconv"

	"github.com/astracalc/agent-server/internal/domain/chat"
	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

// ToolName identifies the sun-sign tool in the registry.
const ToolName = "calculate_sun_sign"

// NewTool adapts the sun-sign service into a registry tool.
func NewTool(svc Service) chat.Tool {
	return chat.Tool{
		Name: ToolName,
		Description: "Doğum anı bilgilerinden (yıl, ay, gün, saat, dakika, UTC ofseti) güneş burcunu hesaplar. " +
			"Kullanıcı doğum tarihi ve saatini verdiğinde burcunu öğrenmek için bu aracı kullan.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"year":   map[string]any{"type": "integer", "description": "Doğum yılı, örn. 1990"},
				"month":  map[string]any{"type": "integer", "description": "Doğum ayı, 1-12"},
				"day":    map[string]any{"type": "integer", "description": "Doğum günü"},
				"hour":   map[string]any{"type": "integer", "description": "Doğum saati, 0-23"},
				"minute": map[string]any{"type": "integer", "description": "Doğum dakikası, 0-59"},
				"utc_offset_hours": map[string]any{
					"type":        "number",
					"description": "UTC saat farkı, verilmezse 3 (Türkiye) kullanılır",
				},
			},
			"required": []string{"year", "month", "day", "hour", "minute"},
		},
		Invoke: func(ctx context.Context, args map[string]any) (string, error) {
			moment, err := momentFromArgs(args)
			if err != nil {
				return "", err
			}
			result, err := svc.SunSign(ctx, moment)
			if err != nil {
				return "", err
			}
			return formatResult(result), nil
		},
	}
}

func momentFromArgs(args map[string]any) (BirthMoment, error) {
	moment := BirthMoment{UTCOffsetHours: DefaultUTCOffsetHours}

	fields := []struct {
		key    string
		target *int
	}{
		{"year", &moment.Year},
		{"month", &moment.Month},
		{"day", &moment.Day},
		{"hour", &moment.Hour},
		{"minute", &moment.Minute},
	}
	for _, field := range fields {
		value, ok := chat.IntArg(args, field.key)
		if !ok {
			return BirthMoment{}, apperrors.Wrap("invalid_input",
				fmt.Sprintf("Doğum bilgisi eksik ya da geçersiz: %s", field.key), nil)
		}
		*field.target = value
	}
	if offset, ok := chat.FloatArg(args, "utc_offset_hours"); ok {
		moment.UTCOffsetHours = offset
	}
	return moment, nil
}

func formatResult(result SunSignResult) string {
	return fmt.Sprintf("Güneş burcu: %s\nDerece: %s°\nUTC zamanı: %s",
		result.SignName, formatDegree(result.Degree), result.UTCTimestamp)
}

func formatDegree(degree float64) string {
	return strconv.FormatFloat(degree, 'f', -1, 64)
}
