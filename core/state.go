package core

import "time"

// AgentState is the portable checkpoint of one session: the system prompt,
// the short-term cache (chronological) and the capture time.
type AgentState struct {
	SystemPrompt string         `json:"system_prompt"`
	ShortTerm    []MemoryRecord `json:"short_term"`
	JoinedSpaces []string       `json:"joined_spaces,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}
