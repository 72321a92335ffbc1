//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/astracalc/agent-server/internal/bootstrap"
	"github.com/astracalc/agent-server/internal/domain/chat"
	"github.com/astracalc/agent-server/internal/domain/natal"
	"github.com/astracalc/agent-server/internal/domain/report"
	"github.com/astracalc/agent-server/internal/infra/config"
	"github.com/astracalc/agent-server/internal/infra/llm/chatgpt"
	"github.com/astracalc/agent-server/internal/infra/natal/calcengine"
	"github.com/astracalc/agent-server/internal/infra/report/n8n"
	httpiface "github.com/astracalc/agent-server/internal/interface/http"
	"github.com/astracalc/agent-server/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideChatConfig,
		provideChatGPTClient,
		provideEngineClient,
		provideWebhookClient,
		provideDateInfoService,
		provideRegistry,
		provideHistoryStore,
		provideEstimator,
		natal.NewService,
		report.NewService,
		chat.NewService,
		wire.Bind(new(chat.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(natal.EngineClient), new(*calcengine.Client)),
		wire.Bind(new(report.WebhookClient), new(*n8n.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
