package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/astracalc/agent-server/internal/infra/llm/chatgpt"
	apperrors "github.com/astracalc/agent-server/pkg/errors"
	"github.com/astracalc/agent-server/pkg/metrics"
)

// Service dispatches one user message through the model and its tools.
type Service interface {
	Chat(ctx context.Context, req Request) (Response, error)
}

// ChatClient is the capability interface over the completion collaborator.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

const (
	// The completion call is retried twice before the turn fails; tools
	// are never retried here.
	llmRetries   = 2
	retryBackoff = 200 * time.Millisecond
)

type service struct {
	cfg       Config
	client    ChatClient
	registry  *Registry
	history   HistoryStore
	estimator *metrics.Estimator
	logger    *slog.Logger
	sleep     func(time.Duration)
}

// NewService wires up the dispatcher domain.
func NewService(cfg Config, client ChatClient, registry *Registry, history HistoryStore, estimator *metrics.Estimator, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		client:    client,
		registry:  registry,
		history:   history,
		estimator: estimator,
		logger:    logger.With("component", "chat.service"),
		sleep:     time.Sleep,
	}
}

func (s *service) Chat(ctx context.Context, req Request) (Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Response{}, apperrors.Wrap("invalid_input", "message cannot be empty", nil)
	}

	messages := s.openingMessages(ctx, req.UserID, message)
	manifest := s.registry.Manifest()

	var (
		final     string
		usage     metrics.TokenUsage
		completed bool
		rounds    int
	)
	for round := 0; round < s.cfg.MaxToolRounds; round++ {
		rounds = round + 1
		completion, err := s.complete(ctx, messages, manifest)
		if err != nil {
			return Response{}, err
		}
		if len(completion.Choices) == 0 {
			return Response{}, apperrors.Wrap("llm_error", "Asistan şu anda yanıt veremiyor, lütfen daha sonra tekrar deneyin.", errors.New("completion returned no choices"))
		}
		usage = usage.Add(s.usageFor(messages, completion))

		assistant := completion.Choices[0].Message
		assistant.Role = RoleAssistant
		messages = append(messages, assistant)

		if len(assistant.ToolCalls) == 0 {
			final = assistant.Content
			completed = true
			break
		}

		// Tool calls run synchronously in the order the model asked for
		// them; later calls may depend on earlier outputs.
		for _, call := range assistant.ToolCalls {
			output := s.invokeTool(ctx, call)
			messages = append(messages, chatgpt.Message{
				Role:       RoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	if !completed {
		return Response{}, apperrors.Wrap("llm_error", "Asistan isteği tamamlayamadı, lütfen tekrar deneyin.",
			fmt.Errorf("tool rounds exhausted after %d iterations", s.cfg.MaxToolRounds))
	}

	s.persistTurns(ctx, req.UserID, message, final)
	s.logger.Info("chat turn completed", "user_id", req.UserID, "rounds", rounds,
		"prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens)

	return Response{Response: final, Model: s.cfg.Model}, nil
}

func (s *service) openingMessages(ctx context.Context, userID, message string) []chatgpt.Message {
	messages := make([]chatgpt.Message, 0, s.cfg.HistoryWindow+2)
	if s.cfg.SystemPrompt != "" {
		messages = append(messages, chatgpt.Message{Role: RoleSystem, Content: s.cfg.SystemPrompt})
	}
	if s.history != nil && userID != "" && s.cfg.HistoryWindow > 0 {
		turns, err := s.history.Recent(ctx, userID, s.cfg.HistoryWindow)
		if err != nil {
			s.logger.Warn("history load failed", "user_id", userID, "error", err)
		}
		for _, turn := range turns {
			messages = append(messages, chatgpt.Message{Role: turn.Role, Content: turn.Content})
		}
	}
	return append(messages, chatgpt.Message{Role: RoleUser, Content: message})
}

func (s *service) complete(ctx context.Context, messages []chatgpt.Message, tools []chatgpt.Tool) (chatgpt.ChatCompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= llmRetries; attempt++ {
		if attempt > 0 {
			s.sleep(time.Duration(attempt) * retryBackoff)
		}
		completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
			Model:       s.cfg.Model,
			Messages:    messages,
			Temperature: s.cfg.Temperature,
			Tools:       tools,
		})
		if err == nil {
			return completion, nil
		}
		lastErr = err
		s.logger.Warn("completion attempt failed", "attempt", attempt+1, "error", err)
	}
	return chatgpt.ChatCompletionResponse{}, apperrors.Wrap("llm_error",
		"Asistan şu anda yanıt veremiyor, lütfen daha sonra tekrar deneyin.", lastErr)
}

// invokeTool always produces text for the model: tool failures are part of
// the conversation, never silently dropped and never fatal for the turn.
func (s *service) invokeTool(ctx context.Context, call chatgpt.ToolCall) string {
	name := call.Function.Name
	tool, ok := s.registry.Get(name)
	if !ok {
		s.logger.Warn("model requested unknown tool", "tool", name)
		return fmt.Sprintf("Araç bulunamadı: %s", name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			s.logger.Warn("tool arguments undecodable", "tool", name, "error", err)
			return "Araç parametreleri çözümlenemedi, lütfen bilgileri yeniden belirtin."
		}
	}

	output, err := tool.Invoke(ctx, args)
	if err != nil {
		s.logger.Error("tool invocation failed", "tool", name, "code", apperrors.CodeOf(err), "error", err)
		if msg := apperrors.SafeMessage(err); msg != "" {
			return msg
		}
		return "Araç beklenmeyen bir hatayla karşılaştı, lütfen tekrar deneyin."
	}
	s.logger.Info("tool invoked", "tool", name)
	return output
}

func (s *service) usageFor(prompt []chatgpt.Message, completion chatgpt.ChatCompletionResponse) metrics.TokenUsage {
	if u := completion.Usage; u.PromptTokens > 0 || u.CompletionTokens > 0 || u.TotalTokens > 0 {
		return metrics.TokenUsage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}

	var estimate metrics.TokenUsage
	for _, msg := range prompt {
		estimate.PromptTokens += s.estimator.Count(msg.Content)
	}
	if len(completion.Choices) > 0 {
		estimate.CompletionTokens = s.estimator.Count(completion.Choices[0].Message.Content)
	}
	estimate.TotalTokens = estimate.PromptTokens + estimate.CompletionTokens
	return estimate
}

func (s *service) persistTurns(ctx context.Context, userID, message, reply string) {
	if s.history == nil || userID == "" {
		return
	}
	err := s.history.Append(ctx, userID,
		Turn{Role: RoleUser, Content: message},
		Turn{Role: RoleAssistant, Content: reply},
	)
	if err != nil {
		s.logger.Warn("history append failed", "user_id", userID, "error", err)
	}
}
