package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

func TestToolInvokeIncludesReportAndID(t *testing.T) {
	webhook := &stubWebhookClient{
		resp: WebhookResponse{Report: "Detaylı rapor metni", ReportID: "abc123"},
	}
	tool := NewTool(newTestService(webhook))
	require.Equal(t, ToolName, tool.Name)

	out, err := tool.Invoke(context.Background(), map[string]any{
		"birth_date": "1990-03-15",
		"birth_time": "14:30",
		"latitude":   41.0082,
		"longitude":  28.9784,
		"city":       "Istanbul",
	})
	require.NoError(t, err)
	require.Contains(t, out, "Detaylı rapor metni")
	require.Contains(t, out, "Rapor ID: abc123")
}

func TestToolInvokeWithoutOptionalFields(t *testing.T) {
	webhook := &stubWebhookClient{}
	tool := NewTool(newTestService(webhook))

	out, err := tool.Invoke(context.Background(), map[string]any{
		"birth_date": "1990-03-15",
		"birth_time": "14:30",
		"latitude":   41.0082,
		"longitude":  28.9784,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.NotContains(t, out, "Rapor ID")
}

func TestToolInvokeMissingCoordinates(t *testing.T) {
	webhook := &stubWebhookClient{}
	tool := NewTool(newTestService(webhook))

	_, err := tool.Invoke(context.Background(), map[string]any{
		"birth_date": "1990-03-15",
		"birth_time": "14:30",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
	require.Contains(t, apperrors.SafeMessage(err), "latitude")
	require.Equal(t, 0, webhook.calls)
}
