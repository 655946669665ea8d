package code

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hupe1980/agentkit/internal/util"
	"github.com/hupe1980/agentkit/tool"
)

// DefaultTimeout bounds a single Execute call when the caller gives none.
const DefaultTimeout = 30 * time.Second

// Step is one executed statement of a program.
type Step struct {
	Tool   string `json:"tool"`
	Output string `json:"output"`
}

// Result is the outcome of running a program. Value is the output of the
// last statement, decoded as JSON when possible.
type Result struct {
	Value any    `json:"value"`
	Steps []Step `json:"steps,omitempty"`
}

// Engine executes code snippets.
type Engine interface {
	// Execute runs code. Implementations must honor ctx cancellation.
	Execute(ctx context.Context, code string) (*Result, error)
}

// ScriptEngine runs line-oriented programs against a tool catalog. Each
// non-blank line has the form
//
//	<tool name> [JSON object of arguments]
//
// Lines starting with '#' or '//' are comments. A final "return <JSON>" line
// sets the result value explicitly.
type ScriptEngine struct {
	catalog   *tool.Catalog
	sessionID string
}

// NewScriptEngine creates an engine calling tools from catalog.
func NewScriptEngine(catalog *tool.Catalog) *ScriptEngine {
	return &ScriptEngine{catalog: catalog, sessionID: "codemode"}
}

// Execute implements Engine.
func (e *ScriptEngine) Execute(ctx context.Context, code string) (*Result, error) {
	res := &Result{}
	for lineNo, raw := range strings.Split(code, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "execution aborted", goerr.V("line", lineNo+1))
		}

		name, rest := util.SplitCommand(line)
		if name == "return" {
			res.Value = decodeValue(rest)
			return res, nil
		}

		args := map[string]any{}
		if rest != "" {
			if err := json.Unmarshal([]byte(rest), &args); err != nil {
				return nil, goerr.Wrap(err, "invalid arguments", goerr.V("line", lineNo+1), goerr.V("tool", name))
			}
		}

		resp, err := e.catalog.Invoke(ctx, name, tool.Request{SessionID: e.sessionID, Arguments: args})
		if err != nil {
			return nil, err
		}
		res.Steps = append(res.Steps, Step{Tool: name, Output: resp.Content})
		res.Value = decodeValue(resp.Content)
	}
	return res, nil
}

func decodeValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// FormatValue renders an orchestrator value as reply text: strings verbatim,
// everything else as compact JSON.
func FormatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

var _ Engine = (*ScriptEngine)(nil)
