package code

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/testutil"
	"github.com/hupe1980/agentkit/tool"
)

func newCatalog() *tool.Catalog {
	c := tool.NewCatalog()
	c.MustRegister(
		tool.NewFunctionTool("echo", "Echo input", map[string]any{
			"type":       "object",
			"properties": map[string]any{"input": map[string]any{"type": "string"}},
			"required":   []string{"input"},
		}, func(_ context.Context, req tool.Request) (any, error) {
			s, _ := req.String("input")
			return s, nil
		}),
		tool.NewFunctionTool("add", "Add numbers", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		}, func(_ context.Context, req tool.Request) (any, error) {
			return req.Arguments["a"].(float64) + req.Arguments["b"].(float64), nil
		}),
	)
	return c
}

// -------------------- ScriptEngine Tests --------------------

func TestScriptEngine_Chain(t *testing.T) {
	e := NewScriptEngine(newCatalog())
	res, err := e.Execute(context.Background(), strings.Join([]string{
		"# greet first",
		`echo {"input": "hello"}`,
		"",
		`add {"a": 2, "b": 3}`,
	}, "\n"))
	require.NoError(t, err)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, "hello", res.Steps[0].Output)
	assert.Equal(t, float64(5), res.Value)
}

func TestScriptEngine_Return(t *testing.T) {
	res, err := NewScriptEngine(newCatalog()).Execute(context.Background(), "echo {\"input\": \"x\"}\nreturn {\"done\": true}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"done": true}, res.Value)
}

func TestScriptEngine_Errors(t *testing.T) {
	e := NewScriptEngine(newCatalog())

	_, err := e.Execute(context.Background(), `missing {}`)
	assert.ErrorIs(t, err, core.ErrToolNotFound)

	_, err = e.Execute(context.Background(), `echo {not json}`)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Execute(ctx, `echo {"input": "x"}`)
	assert.ErrorIs(t, err, context.Canceled)
}

// -------------------- Tool Tests --------------------

func TestRunCodeTool(t *testing.T) {
	c := newCatalog()
	require.NoError(t, c.Register(NewTool(NewScriptEngine(c))))

	resp, err := c.Invoke(context.Background(), ToolName, tool.Request{Arguments: map[string]any{
		"code":    `add {"a": 1, "b": 1}`,
		"timeout": float64(1000),
	}})
	require.NoError(t, err)
	assert.Equal(t, "codemode", resp.Metadata["provider"])

	var res Result
	require.NoError(t, json.Unmarshal([]byte(resp.Content), &res))
	assert.Equal(t, float64(2), res.Value)

	_, err = c.Invoke(context.Background(), ToolName, tool.Request{Arguments: map[string]any{}})
	assert.ErrorIs(t, err, core.ErrToolExecution)
}

// -------------------- Orchestrator Tests --------------------

func TestOrchestrator_ToolRoute(t *testing.T) {
	c := newCatalog()
	m := &testutil.RecordingModel{Reply: "```json\n{\"tool\": \"echo\", \"arguments\": {\"input\": \"hi\"}}\n```"}
	o := NewOrchestrator(NewScriptEngine(c), c, m)

	v, ok, err := o.Route(context.Background(), "say hi")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", v)

	prompt := m.LastCall()[0].Content
	assert.Contains(t, prompt, "- echo: Echo input")
	assert.Contains(t, prompt, "Request: say hi")
}

func TestOrchestrator_CodeRoute(t *testing.T) {
	c := newCatalog()
	plan, _ := json.Marshal(map[string]string{"code": "add {\"a\": 20, \"b\": 22}"})
	o := NewOrchestrator(NewScriptEngine(c), c, &testutil.RecordingModel{Reply: string(plan)})

	v, ok, err := o.Route(context.Background(), "what is 20 + 22")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", FormatValue(v))
}

func TestOrchestrator_NoRoute(t *testing.T) {
	c := newCatalog()
	for _, reply := range []string{"{}", "I can answer that myself.", `{"tool": "  "}`} {
		o := NewOrchestrator(NewScriptEngine(c), c, &testutil.RecordingModel{Reply: reply})
		v, ok, err := o.Route(context.Background(), "hello")
		require.NoError(t, err, reply)
		assert.False(t, ok, reply)
		assert.Nil(t, v, reply)
	}
}

func TestOrchestrator_ModelError(t *testing.T) {
	c := newCatalog()
	o := NewOrchestrator(NewScriptEngine(c), c, &testutil.RecordingModel{Err: errors.New("down")})
	_, _, err := o.Route(context.Background(), "hello")
	assert.ErrorIs(t, err, core.ErrModel)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "test", FormatValue("test"))
	assert.Equal(t, "42", FormatValue(42))
	assert.Equal(t, `{"a":1}`, FormatValue(map[string]int{"a": 1}))
	assert.Equal(t, "null", FormatValue(nil))
}
