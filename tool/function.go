package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/hupe1980/agentkit/logging"
)

// Func is the implementation signature wrapped by FunctionTool. The result may
// be a string, a *Response, or any JSON-serializable value.
type Func func(ctx context.Context, req Request) (any, error)

// FunctionOptions configures a FunctionTool.
type FunctionOptions struct {
	Examples []map[string]any
	Metadata map[string]string
	Logger   logging.Logger
}

// FunctionTool is a generic adapter that exposes a plain Go function as a tool.
//
// Responsibilities:
//   - Holds a JSON Schema parameter specification, resolved once at construction
//   - Validates supplied arguments against that schema before execution
//   - Normalizes error handling so callers receive *ToolError with consistent codes:
//     VALIDATION_ERROR  -> schema / argument mismatch
//     EXECUTION_ERROR   -> underlying function returned an error (non-ToolError)
//     (custom codes preserved if the function returns *ToolError directly)
//   - Converts the result into a Response (strings verbatim, everything else as JSON)
//
// Concurrency:
//
//	A FunctionTool has no internal mutable state after construction and is safe for
//	concurrent use by multiple goroutines.
type FunctionTool struct {
	spec       Spec
	fn         Func
	opts       FunctionOptions
	resolved   *jsonschema.Resolved
	resolveErr error
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(ctx context.Context, req Request) (any, error) {
//	    return req.Arguments["a"].(float64) + req.Arguments["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(name, description string, parameters map[string]any, fn Func, optFns ...func(o *FunctionOptions)) *FunctionTool {
	opts := FunctionOptions{Logger: logging.NoOpLogger{}}
	for _, f := range optFns {
		f(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	resolved, err := resolveSchema(parameters)
	return &FunctionTool{
		spec:       Spec{Name: name, Description: description, InputSchema: parameters, Examples: opts.Examples},
		fn:         fn,
		opts:       opts,
		resolved:   resolved,
		resolveErr: err,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct with SchemaOf.
func NewFunctionToolFromStruct(name, description string, structType any, fn Func, optFns ...func(o *FunctionOptions)) *FunctionTool {
	return NewFunctionTool(name, description, SchemaOf(structType), fn, optFns...)
}

// Spec returns the tool specification.
func (t *FunctionTool) Spec() Spec { return t.spec }

// Invoke validates the provided args against the declared schema then invokes the
// underlying function.
//
// Logging Fields:
//
//	tool: tool name
//	session_id: calling session
//	duration_ms: execution time in milliseconds
func (t *FunctionTool) Invoke(ctx context.Context, req Request) (*Response, error) {
	logger := t.opts.Logger
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.spec.Name, "session_id", req.SessionID)

	if t.resolveErr != nil {
		logger.Error("tool.call.invalid_schema", "tool", t.spec.Name, "error", t.resolveErr.Error())

		return nil, &ToolError{Tool: t.spec.Name, Message: t.resolveErr.Error(), Code: CodeValidation}
	}

	if vErr := validateArguments(t.spec.Name, t.resolved, req.Arguments); vErr != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.spec.Name, "error", vErr.Message)

		return nil, vErr
	}

	result, err := t.fn(ctx, req)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			logger.Error("tool.call.error", "tool", t.spec.Name, "error", toolErr.Message)

			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.spec.Name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.spec.Name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	resp, err := toResponse(result)
	if err != nil {
		return nil, &ToolError{Tool: t.spec.Name, Message: err.Error(), Code: CodeExecution}
	}
	if resp.Metadata == nil && t.opts.Metadata != nil {
		resp.Metadata = t.opts.Metadata
	}

	logger.Info("tool.call.success", "tool", t.spec.Name, "duration_ms", time.Since(start).Milliseconds())

	return resp, nil
}

func toResponse(result any) (*Response, error) {
	switch v := result.(type) {
	case nil:
		return &Response{}, nil
	case string:
		return &Response{Content: v}, nil
	case *Response:
		return v, nil
	case Response:
		return &v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("result is not serializable: %w", err)
		}
		return &Response{Content: string(data)}, nil
	}
}

var _ Tool = (*FunctionTool)(nil)
