package dateinfo

import (
	"context"

	"github.com/astracalc/agent-server/internal/domain/chat"
)

// ToolName identifies the date lookup tool in the registry.
const ToolName = "get_current_date"

// NewTool adapts the date lookup into a registry tool. It takes no
// parameters and never calls the network.
func NewTool(svc Service) chat.Tool {
	return chat.Tool{
		Name: ToolName,
		Description: "Bugünün tarihini ve gün adını Türkiye saatine göre verir. " +
			"Kullanıcı \"bugün hangi gün\", \"tarih nedir\", \"ayın kaçı\" gibi sorular sorduğunda bu aracı kullan.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Invoke: func(_ context.Context, _ map[string]any) (string, error) {
			return svc.Today()
		},
	}
}
