package agent

import (
	"slices"

	"github.com/google/uuid"

	"github.com/hupe1980/agentkit/core"
)

// buildPrompt assembles the system message, as much cached history as fits
// the context limit, and the new input. History is walked newest to oldest
// and emitted oldest first. The record holding the current input (current)
// is skipped since the input is appended explicitly.
func (a *Agent) buildPrompt(sessionID, input string, current uuid.UUID) []core.Message {
	var messages []core.Message
	if a.systemPrompt != "" {
		messages = append(messages, core.NewMessage(core.RoleSystem, a.systemPrompt))
	}

	records := a.memory.RetrieveRecent(sessionID)
	history := make([]core.Message, 0, len(records))
	total := 0
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if r.ID == current {
			continue
		}
		cost := a.counter.Count(r.Content)
		if total+cost > a.contextLimit {
			break
		}
		total += cost
		history = append(history, core.Message{
			Role:     core.ParseRole(string(r.Role)),
			Content:  r.Content,
			Metadata: r.Metadata,
		})
	}
	slices.Reverse(history)

	messages = append(messages, history...)
	return append(messages, core.NewMessage(core.RoleUser, input))
}
