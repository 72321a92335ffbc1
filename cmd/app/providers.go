package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/astracalc/agent-server/internal/domain/chat"
	"github.com/astracalc/agent-server/internal/domain/dateinfo"
	"github.com/astracalc/agent-server/internal/domain/natal"
	"github.com/astracalc/agent-server/internal/domain/report"
	"github.com/astracalc/agent-server/internal/infra/chathistory"
	"github.com/astracalc/agent-server/internal/infra/config"
	"github.com/astracalc/agent-server/internal/infra/llm/chatgpt"
	"github.com/astracalc/agent-server/internal/infra/natal/calcengine"
	"github.com/astracalc/agent-server/internal/infra/report/n8n"
	"github.com/astracalc/agent-server/pkg/metrics"
)

func provideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		SystemPrompt:  cfg.Chat.SystemPrompt,
		MaxToolRounds: cfg.Chat.MaxToolRounds,
		HistoryWindow: cfg.Chat.HistoryWindow,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideEngineClient(cfg *config.Config, logger *slog.Logger) *calcengine.Client {
	return calcengine.NewClient(calcengine.Config{
		BaseURL:    cfg.Engine.BaseURL,
		Path:       cfg.Engine.Path,
		APIKey:     cfg.Engine.APIKey,
		AuthScheme: cfg.Engine.AuthScheme,
		Timeout:    cfg.Engine.Timeout,
	}, logger)
}

func provideWebhookClient(cfg *config.Config, logger *slog.Logger) *n8n.Client {
	return n8n.NewClient(n8n.Config{
		URL:     cfg.Webhook.URL,
		Timeout: cfg.Webhook.Timeout,
	}, logger)
}

func provideDateInfoService(cfg *config.Config, logger *slog.Logger) dateinfo.Service {
	return dateinfo.NewService(dateinfo.Config{Timezone: cfg.Chat.Timezone}, logger)
}

func provideRegistry(cfg *config.Config, natalSvc natal.Service, reportSvc report.Service, dateSvc dateinfo.Service, logger *slog.Logger) (*chat.Registry, error) {
	tools := []chat.Tool{
		dateinfo.NewTool(dateSvc),
		natal.NewTool(natalSvc),
	}
	if strings.TrimSpace(cfg.Webhook.URL) != "" {
		tools = append(tools, report.NewTool(reportSvc))
	} else {
		logger.Info("webhook url not set, report tool disabled")
	}
	return chat.NewRegistry(tools...)
}

func provideHistoryStore(cfg *config.Config, logger *slog.Logger) chat.HistoryStore {
	fallback := chathistory.NewMemoryStore(cfg.History.MaxTurns, cfg.History.TTL)
	if !cfg.History.ValkeyEnabled {
		return fallback
	}

	opt, err := buildValkeyOptions(cfg.History.ValkeyAddr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory history", "error", err)
		return fallback
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory history", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory history", "error", err)
		return fallback
	}
	logger.Info("valkey history store enabled", "addr", cfg.History.ValkeyAddr)
	return chathistory.NewValkeyStore(client, "chat", cfg.History.MaxTurns, cfg.History.TTL)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideEstimator(cfg *config.Config) *metrics.Estimator {
	return metrics.NewEstimator(cfg.LLM.Model)
}
