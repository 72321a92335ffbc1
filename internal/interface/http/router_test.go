package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/astracalc/agent-server/internal/domain/chat"
	"github.com/astracalc/agent-server/internal/domain/dateinfo"
	"github.com/astracalc/agent-server/internal/infra/config"
	"github.com/astracalc/agent-server/internal/infra/llm/chatgpt"
	apperrors "github.com/astracalc/agent-server/pkg/errors"
	"github.com/astracalc/agent-server/pkg/metrics"
)

func TestRootEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubChatService{resp: chat.Response{Response: "ok"}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, ServiceName, body["service"])
	require.Equal(t, Version, body["version"])
	require.Equal(t, "running", body["status"])
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubChatService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "test", body["environment"])
}

func TestChatEndpointSuccess(t *testing.T) {
	svc := &stubChatService{resp: chat.Response{Response: "Merhaba!", Model: "gpt-4o-mini"}}
	router := newTestRouter(t, svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postJSON("/chat", `{"message": "merhaba", "user_id": "u1"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Merhaba!", body["response"])
	require.Equal(t, "gpt-4o-mini", body["model"])

	require.Equal(t, "merhaba", svc.lastReq.Message)
	require.Equal(t, "u1", svc.lastReq.UserID)
}

func TestChatEndpointInvalidJSON(t *testing.T) {
	router := newTestRouter(t, &stubChatService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body["detail"])
}

func TestChatEndpointDispatcherFailure(t *testing.T) {
	svc := &stubChatService{
		err: apperrors.Wrap("llm_error", "Asistan şu anda yanıt veremiyor, lütfen daha sonra tekrar deneyin.", errors.New("status=503")),
	}
	router := newTestRouter(t, svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postJSON("/chat", `{"message": "merhaba"}`))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Asistan şu anda yanıt veremiyor, lütfen daha sonra tekrar deneyin.", body["detail"])
	require.NotContains(t, w.Body.String(), "503")
}

func TestChatEndpointEmptyMessage(t *testing.T) {
	svc := &stubChatService{
		err: apperrors.Wrap("invalid_input", "message cannot be empty", nil),
	}
	router := newTestRouter(t, svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postJSON("/chat", `{"message": ""}`))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "message cannot be empty", body["detail"])
}

func TestChatEndpointCORS(t *testing.T) {
	router := newTestRouter(t, &stubChatService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitKicksIn(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}
	router := newRouterWithConfig(t, cfg, &stubChatService{})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		statuses = append(statuses, w.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

// End to end through the real dispatcher: the model asks for the date tool
// and the reply is produced from its output.
func TestChatFlowWithDateTool(t *testing.T) {
	dateSvc := dateinfo.NewService(dateinfo.Config{Timezone: "Europe/Istanbul"}, testLogger())
	registry, err := chat.NewRegistry(dateinfo.NewTool(dateSvc))
	require.NoError(t, err)

	client := &scriptedChatClient{
		responses: []chatgpt.ChatCompletionResponse{
			{
				Choices: []chatgpt.Choice{{
					Message: chatgpt.Message{
						Role: chat.RoleAssistant,
						ToolCalls: []chatgpt.ToolCall{{
							ID:       "call-1",
							Type:     "function",
							Function: chatgpt.ToolCallDefinition{Name: dateinfo.ToolName, Arguments: "{}"},
						}},
					},
					FinishReason: "tool_calls",
				}},
				Usage: chatgpt.Usage{PromptTokens: 15, CompletionTokens: 5, TotalTokens: 20},
			},
			{
				Choices: []chatgpt.Choice{{
					Message:      chatgpt.Message{Role: chat.RoleAssistant, Content: "Bugün 2024-07-01, Pazartesi."},
					FinishReason: "stop",
				}},
				Usage: chatgpt.Usage{PromptTokens: 25, CompletionTokens: 8, TotalTokens: 33},
			},
		},
	}

	chatCfg := chat.Config{Model: "gpt-4o-mini", SystemPrompt: "asistan", MaxToolRounds: 8, HistoryWindow: 0}
	chatSvc := chat.NewService(chatCfg, client, registry, nil, &metrics.Estimator{}, testLogger())
	router := newTestRouter(t, chatSvc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postJSON("/chat", `{"message": "bugün günlerden ne?"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Bugün 2024-07-01, Pazartesi.", body["response"])

	// the tool output handed back to the model follows the date contract
	toolMsgs := client.requests[1].Messages
	last := toolMsgs[len(toolMsgs)-1]
	require.Equal(t, chat.RoleTool, last.Role)
	require.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \(\p{L}+\)$`), last.Content)
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Port:         8585,
			Environment:  "test",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  []string{"*"},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, svc chat.Service) http.Handler {
	t.Helper()
	return newRouterWithConfig(t, testConfig(), svc)
}

func newRouterWithConfig(t *testing.T, cfg *config.Config, svc chat.Service) http.Handler {
	t.Helper()
	handler := NewHandler(svc, cfg, testLogger())
	return NewRouter(cfg, handler).Handler
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type stubChatService struct {
	resp    chat.Response
	err     error
	lastReq chat.Request
}

func (s *stubChatService) Chat(_ context.Context, req chat.Request) (chat.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return chat.Response{}, s.err
	}
	return s.resp, nil
}

type scriptedChatClient struct {
	responses []chatgpt.ChatCompletionResponse
	requests  []chatgpt.ChatCompletionRequest
}

func (s *scriptedChatClient) CreateChatCompletion(_ context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return chatgpt.ChatCompletionResponse{}, errors.New("scripted client exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}
