package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astracalc/agent-server/internal/domain/chat"
	"github.com/astracalc/agent-server/internal/infra/config"
	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

// Service identity reported by the informational endpoints.
const (
	ServiceName = "AstraCalc Agent Server"
	Version     = "0.1.0"
)

// Handler wires the HTTP transport to the dispatcher.
type Handler struct {
	chatSvc     chat.Service
	environment string
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(chatSvc chat.Service, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		chatSvc:     chatSvc,
		environment: cfg.HTTP.Environment,
		logger:      logger.With("component", "http.handler"),
	}
}

// Root reports basic service identity.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": ServiceName,
		"version": Version,
		"status":  "running",
	})
}

// Health is the liveness endpoint.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"version":     Version,
		"environment": h.environment,
	})
}

// Chat forwards one user message to the dispatcher and returns its reply.
// Message content is never inspected or transformed here.
func (h *Handler) Chat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "gövde geçerli JSON olmalı", err))
		return
	}

	resp, err := h.chatSvc.Chat(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "dispatcher_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		message := apperrors.SafeMessage(err)
		if message == "" {
			message = "İstek şu anda işlenemiyor, lütfen daha sonra tekrar deneyin."
		}
		abortWithError(c, NewHTTPError(status, code, message, err))
		return
	}

	c.JSON(http.StatusOK, resp)
}
