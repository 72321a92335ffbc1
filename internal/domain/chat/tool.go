package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/astracalc/agent-server/internal/infra/llm/chatgpt"
)

// ToolFunc executes a tool with the arguments the model supplied. The
// returned string is fed back to the model verbatim, so implementations
// must keep it user safe.
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is a named, schema-described callable the model may invoke.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Invoke      ToolFunc
}

// Registry holds the tool set exposed to the model. It is populated once
// at startup and never mutated afterwards.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds an immutable registry, rejecting unnamed, invokeless
// or duplicate tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, errors.New("tool name cannot be empty")
		}
		if t.Invoke == nil {
			return nil, fmt.Errorf("tool %q has no invoke function", name)
		}
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		t.Name = name
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names lists the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Manifest renders the registry in the completion API tool format.
func (r *Registry) Manifest() []chatgpt.Tool {
	out := make([]chatgpt.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, chatgpt.Tool{
			Type: "function",
			Function: chatgpt.ToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
