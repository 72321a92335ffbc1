package chat

import "context"

// Request captures the payload accepted by the chat endpoint.
type Request struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// Response is serialized back to API consumers.
type Response struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

// Message roles shared with the completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn is one stored conversation entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryStore keeps per-session conversation turns. Implementations only
// need read-your-writes consistency within one session id.
type HistoryStore interface {
	Recent(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	Append(ctx context.Context, sessionID string, turns ...Turn) error
}

// Config tunes the dispatcher.
type Config struct {
	Model         string
	Temperature   float32
	SystemPrompt  string
	MaxToolRounds int
	HistoryWindow int
}
