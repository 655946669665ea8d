// Package tool implements the capability subsystem that lets agents invoke
// structured functions (APIs, computations, code execution, delegated
// sub-agents) by name with schema validated arguments, consistent error
// handling and rich metadata for model guidance.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentkit/core"
)

// Spec describes a capability to model backends. The catalog never interprets
// InputSchema or Examples; they exist to advertise calling conventions.
type Spec struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	InputSchema map[string]any   `json:"input_schema"`
	Examples    []map[string]any `json:"examples,omitempty"`
}

// Request carries the session a call belongs to and its decoded arguments.
type Request struct {
	SessionID string         `json:"session_id"`
	Arguments map[string]any `json:"arguments"`
}

// String returns the argument value for key when it is a string.
func (r Request) String(key string) (string, bool) {
	v, ok := r.Arguments[key].(string)
	return v, ok
}

// Response is the textual result of a call plus optional metadata that is
// recorded alongside the synthetic tool memory record.
type Response struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are registered in a Catalog and invoked by name, either directly by
// application code (Agent.InvokeTool) or by a routing resolver.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Return *ToolError for failures they can categorize
//   - Be safe for concurrent use
type Tool interface {
	// Spec returns the declared name, description and input schema.
	Spec() Spec

	// Invoke executes the tool. Implementations should honor ctx cancellation.
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// Error codes used by the built-in tools.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string      `json:"tool"`              // Name of the tool that failed
	Message string      `json:"message"`           // Error message
	Code    string      `json:"code"`              // Error code for categorization
	Details interface{} `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Is reports ToolError as a core.ErrToolExecution.
func (e *ToolError) Is(target error) bool { return target == core.ErrToolExecution }

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
