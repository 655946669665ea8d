package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hupe1980/agentkit/core"
)

// Checkpoint serializes the session's short-term memory and the system
// prompt as JSON (core.AgentState).
func (a *Agent) Checkpoint(sessionID string) ([]byte, error) {
	state := core.AgentState{
		SystemPrompt: a.systemPrompt,
		ShortTerm:    a.memory.RetrieveRecent(sessionID),
		Timestamp:    time.Now().UTC(),
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, core.NewError(core.ErrSerialization, "agent.checkpoint", sessionID, err)
	}
	return data, nil
}

// Restore decodes a checkpoint and replays its records through session
// memory, so they also reach the durable store. Restore is additive: records
// merge into whatever the cache holds, subject to the window.
func (a *Agent) Restore(ctx context.Context, sessionID string, data []byte) error {
	var state core.AgentState
	if err := json.Unmarshal(data, &state); err != nil {
		return core.NewError(core.ErrSerialization, "agent.restore", sessionID, err)
	}
	for _, r := range state.ShortTerm {
		if err := a.memory.Store(ctx, r); err != nil {
			return err
		}
	}
	a.logger.Info("agent.restore", "session_id", sessionID, "records", len(state.ShortTerm))
	return nil
}
