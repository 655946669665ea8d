package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
)

// Model is the minimal interface required by agents to drive generation.
type Model interface {
	// Generate returns the completion for messages. files are attachments
	// (typically images) belonging to the final user message.
	Generate(ctx context.Context, messages []core.Message, files []core.File) (*core.Response, error)

	// Name identifies the backend in logs and metadata.
	Name() string
}

// SplitSystem separates leading and interleaved system messages from the
// conversation. Vendors that take the system prompt on a dedicated channel
// use it to build their requests.
func SplitSystem(messages []core.Message) (system []string, rest []core.Message) {
	rest = make([]core.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			if m.Content != "" {
				system = append(system, m.Content)
			}
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	name string

	mu        sync.RWMutex
	responses map[string]string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{name: name, responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Generate implements Model by answering the last message.
func (m *MockModel) Generate(ctx context.Context, messages []core.Message, _ []core.File) (*core.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	input := messages[len(messages)-1].Content

	m.mu.RLock()
	full, ok := m.responses[input]
	m.mu.RUnlock()
	if !ok {
		full = fmt.Sprintf("Mock response to: %s", input)
	}
	return &core.Response{Content: full, Metadata: map[string]string{"model": m.name}}, nil
}

// Name implements Model.
func (m *MockModel) Name() string { return m.name }

var _ Model = (*MockModel)(nil)
