package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/agentkit/core"
)

// RecordingModel answers every call with Reply (or fails with Err) and keeps
// a copy of each prompt it received.
type RecordingModel struct {
	Reply string
	Err   error

	mu    sync.Mutex
	calls [][]core.Message
	files [][]core.File
}

// Generate records the prompt and returns the configured outcome.
func (m *RecordingModel) Generate(_ context.Context, messages []core.Message, files []core.File) (*core.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]core.Message(nil), messages...))
	m.files = append(m.files, files)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return &core.Response{Content: m.Reply}, nil
}

// Name implements model.Model.
func (m *RecordingModel) Name() string { return "recording" }

// Calls returns every prompt received so far.
func (m *RecordingModel) Calls() [][]core.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]core.Message(nil), m.calls...)
}

// LastCall returns the most recent prompt or nil.
func (m *RecordingModel) LastCall() []core.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

// LastFiles returns the attachments of the most recent call.
func (m *RecordingModel) LastFiles() []core.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.files) == 0 {
		return nil
	}
	return m.files[len(m.files)-1]
}
