package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/astracalc/agent-server/internal/domain/chat"
	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

// ToolName identifies the report tool in the registry.
const ToolName = "generate_chart_report"

// NewTool adapts the report service into a registry tool.
func NewTool(svc Service) chat.Tool {
	return chat.Tool{
		Name: ToolName,
		Description: "Doğum tarihi, saati ve konumundan tam doğum haritası raporu hazırlatır. " +
			"Kullanıcı detaylı rapor ya da doğum haritası istediğinde bu aracı kullan. Rapor hazırlanması uzun sürebilir.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"birth_date": map[string]any{"type": "string", "description": "Doğum tarihi, YYYY-AA-GG, örn. 1990-03-15"},
				"birth_time": map[string]any{"type": "string", "description": "Doğum saati, SS:DD, örn. 14:30"},
				"latitude":   map[string]any{"type": "number", "description": "Doğum yeri enlemi, örn. 41.0082"},
				"longitude":  map[string]any{"type": "number", "description": "Doğum yeri boylamı, örn. 28.9784"},
				"city":       map[string]any{"type": "string", "description": "Şehir adı, bilgi amaçlı"},
			},
			"required": []string{"birth_date", "birth_time", "latitude", "longitude"},
		},
		Invoke: func(ctx context.Context, args map[string]any) (string, error) {
			req, err := requestFromArgs(args)
			if err != nil {
				return "", err
			}
			result, err := svc.Generate(ctx, req)
			if err != nil {
				return "", err
			}
			return formatResult(result), nil
		},
	}
}

func requestFromArgs(args map[string]any) (Request, error) {
	birthDate, ok := chat.StringArg(args, "birth_date")
	if !ok {
		return Request{}, missingArg("birth_date")
	}
	birthTime, ok := chat.StringArg(args, "birth_time")
	if !ok {
		return Request{}, missingArg("birth_time")
	}
	latitude, ok := chat.FloatArg(args, "latitude")
	if !ok {
		return Request{}, missingArg("latitude")
	}
	longitude, ok := chat.FloatArg(args, "longitude")
	if !ok {
		return Request{}, missingArg("longitude")
	}
	city, _ := chat.StringArg(args, "city")

	return Request{
		BirthDate: birthDate,
		BirthTime: birthTime,
		Location: GeoPoint{
			Latitude:  latitude,
			Longitude: longitude,
			City:      city,
		},
	}, nil
}

func missingArg(key string) error {
	return apperrors.Wrap("invalid_input",
		fmt.Sprintf("Rapor için gerekli bilgi eksik ya da geçersiz: %s", key), nil)
}

func formatResult(result Result) string {
	var sb strings.Builder
	sb.WriteString(result.Acknowledgement)
	if result.ReportBody != "" {
		sb.WriteString("\n\nRapor Özeti:\n")
		sb.WriteString(result.ReportBody)
	}
	if result.ReportID != "" {
		sb.WriteString("\n\nRapor ID: ")
		sb.WriteString(result.ReportID)
	}
	return sb.String()
}
