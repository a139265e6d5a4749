package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/scoring"
	"github.com/moolen/faultline/internal/source"
)

func newTestServer(t *testing.T, src source.Source) (*Server, *analysis.Orchestrator) {
	t.Helper()
	o, err := analysis.New(src, analysis.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Stop(context.Background()) })
	return NewServer(o, "test"), o
}

func call(t *testing.T, s *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	tool, ok := s.tools[name]
	require.True(t, ok, "tool %s registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := s.createToolHandler(name, tool)(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestToolsRegistered(t *testing.T) {
	s, _ := newTestServer(t, source.NewGovernanceMock())
	for _, name := range []string{
		"faultline_snapshot", "faultline_select", "faultline_selection", "faultline_analyze", "faultline_trend",
	} {
		assert.Contains(t, s.tools, name)
	}
	assert.NotNil(t, s.MCPServer())
}

func TestAnalyzeSelectFlow(t *testing.T) {
	s, _ := newTestServer(t, source.NewGovernanceMock())

	res := call(t, s, "faultline_analyze", map[string]interface{}{"wait": true})
	require.False(t, res.IsError, text(t, res))
	var snap analysis.Snapshot
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &snap))
	assert.Len(t, snap.Nodes, 4)

	res = call(t, s, "faultline_select", map[string]interface{}{"id": "DELHI"})
	require.False(t, res.IsError)
	var sel analysis.Selection
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &sel))
	assert.Equal(t, scoring.StatusCritical, sel.Result.Status)

	res = call(t, s, "faultline_selection", nil)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &sel))
	assert.Equal(t, "delhi", sel.ID)

	res = call(t, s, "faultline_trend", nil)
	var trend analysis.Trend
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &trend))
	assert.Len(t, trend.History, 1)

	res = call(t, s, "faultline_snapshot", nil)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &snap))
	assert.True(t, snap.Published())
}

func TestToolErrors(t *testing.T) {
	s, _ := newTestServer(t, source.NewMarketMock(source.MarketOptions{}))

	res := call(t, s, "faultline_select", map[string]interface{}{})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "id is required")

	res = call(t, s, "faultline_analyze", map[string]interface{}{"topic": ""})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), analysis.ErrEmptyTopic.Error())
}

func TestBackgroundAnalyze(t *testing.T) {
	s, o := newTestServer(t, source.NewMarketMock(source.MarketOptions{}))

	res := call(t, s, "faultline_analyze", map[string]interface{}{"topic": "Lithium"})
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"started": true`)

	require.Eventually(t, func() bool { return o.Snapshot().Published() }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Lithium", o.Snapshot().Topic)
}

func TestAnalyzeAfterStop(t *testing.T) {
	s, o := newTestServer(t, source.NewGovernanceMock())
	require.NoError(t, o.Stop(context.Background()))

	res := call(t, s, "faultline_analyze", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), analysis.ErrStopped.Error())
}
