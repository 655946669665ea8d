package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/testutil"
	"github.com/hupe1980/agentkit/tool"
	"github.com/hupe1980/agentkit/tool/mcp"
)

func TestProviderName(t *testing.T) {
	assert.Equal(t, "research", ProviderName("research.ask"))
	assert.Equal(t, "solo", ProviderName(" solo "))
	assert.Equal(t, "agent", ProviderName(".ask"))
	assert.Equal(t, "agent", ProviderName(""))
}

func TestAgent_AsTool(t *testing.T) {
	ctx := context.Background()
	mem, _ := newMemory(10)
	worker := New(&testutil.RecordingModel{Reply: "done"}, mem)

	catalog := tool.NewCatalog()
	require.NoError(t, catalog.Register(worker.AsTool("research.ask", "Ask the researcher")))

	resp, err := catalog.Invoke(ctx, "research.ask", tool.Request{Arguments: map[string]any{"instruction": "find it"}})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.Equal(t, "research", resp.Metadata["provider"])
	assert.Len(t, mem.RetrieveRecent("research.session"), 2)

	_, err = catalog.Invoke(ctx, "research.ask", tool.Request{Arguments: map[string]any{"instruction": "again", "session_id": "custom"}})
	require.NoError(t, err)
	assert.Len(t, mem.RetrieveRecent("custom"), 2)

	_, err = catalog.Invoke(ctx, "research.ask", tool.Request{Arguments: map[string]any{"instruction": "   "}})
	assert.ErrorIs(t, err, core.ErrToolExecution)
}

func TestAgent_Publish(t *testing.T) {
	ctx := context.Background()
	mem, _ := newMemory(10)
	worker := New(&testutil.RecordingModel{Reply: "from worker"}, mem)

	transport := mcp.NewTransport()
	require.NoError(t, worker.Publish(transport, "worker.run", "Delegate to the worker"))

	cli, err := transport.Client(ctx)
	require.NoError(t, err)
	defer cli.Close()

	leadMem, _ := newMemory(10)
	lead := New(&testutil.RecordingModel{}, leadMem)
	_, err = mcp.RegisterTools(ctx, lead.Tools(), cli)
	require.NoError(t, err)

	out, err := lead.InvokeTool(ctx, "s", "worker.run", map[string]any{"instruction": "go"})
	require.NoError(t, err)
	assert.Equal(t, "from worker", out)
	assert.Len(t, mem.RetrieveRecent("worker.session"), 2)
}

func TestAgent_AsSubAgent(t *testing.T) {
	mem, _ := newMemory(10)
	worker := New(&testutil.RecordingModel{Reply: "sub"}, mem)

	dir := tool.NewSubAgentDirectory()
	require.NoError(t, dir.Register(worker.AsSubAgent("writer", "Writes things")))

	catalog := tool.NewCatalog()
	require.NoError(t, dir.RegisterAll(catalog))
	resp, err := catalog.Invoke(context.Background(), "writer", tool.Request{Arguments: map[string]any{"input": "draft"}})
	require.NoError(t, err)
	assert.Equal(t, "sub", resp.Content)
	assert.Len(t, mem.RetrieveRecent("writer.session"), 2)

	reply, err := worker.AsSubAgent("writer.v2", "Writes more").Run(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, "sub", reply)
	assert.Len(t, mem.RetrieveRecent("writer.session"), 4)
}
