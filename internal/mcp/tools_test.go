package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
	"github.com/ajaysolanky/namazing-sub000/internal/pipeline"
	"github.com/ajaysolanky/namazing-sub000/internal/research"
	"github.com/ajaysolanky/namazing-sub000/internal/runs"
)

const smithBrief = "We're expecting a girl! Our surname is Smith and her big sister is Ava."

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestServer wires the MCP server to a registry running the stub pipeline.
func newTestServer(t *testing.T) (*Server, *runs.Registry) {
	t.Helper()
	logger := testLogger()
	p := pipeline.New(pipeline.Config{Concurrency: 4}, nil, research.NewBridge(research.Local{}, logger), logger)
	reg := runs.NewRegistry(runs.NewMemoryStore(0), p, logger)
	t.Cleanup(reg.Wait)
	return New(reg, logger, "test"), reg
}

func toolRequest(name string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// parseToolText extracts the first TextContent text from a CallToolResult.
func parseToolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no TextContent found in tool result")
	return ""
}

func startRun(t *testing.T, s *Server, args map[string]any) string {
	t.Helper()
	result, err := s.handleStartRun(context.Background(), toolRequest("namazing_start_run", args))
	require.NoError(t, err)
	require.False(t, result.IsError, parseToolText(t, result))

	var resp struct {
		RunID  string          `json:"run_id"`
		Status model.RunStatus `json:"status"`
		Mode   model.Mode      `json:"mode"`
	}
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &resp))
	require.NotEmpty(t, resp.RunID)
	assert.Equal(t, model.RunStatusPending, resp.Status)
	return resp.RunID
}

func TestRegisterTools(t *testing.T) {
	s, _ := newTestServer(t)
	require.NotNil(t, s.MCPServer())
}

func TestStartAndGetRun(t *testing.T) {
	s, reg := newTestServer(t)
	runID := startRun(t, s, map[string]any{"brief": smithBrief})
	reg.Wait()

	result, err := s.handleGetRun(context.Background(), toolRequest("namazing_get_run", map[string]any{"run_id": runID}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var run model.Run
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &run))
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, model.ModeSerial, run.Mode)
	assert.Equal(t, model.RunStatusCompleted, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, "Smith", run.Result.Profile.Family.Surname)
}

func TestGetRunSummary(t *testing.T) {
	s, reg := newTestServer(t)
	runID := startRun(t, s, map[string]any{"brief": smithBrief, "mode": "parallel"})
	reg.Wait()

	result, err := s.handleGetRun(context.Background(), toolRequest("namazing_get_run", map[string]any{
		"run_id": runID,
		"view":   "summary",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &summary))
	assert.Equal(t, "completed", summary["status"])
	assert.Equal(t, "parallel", summary["mode"])
	assert.NotContains(t, summary, "events")
	finalists, ok := summary["finalists"].([]any)
	require.True(t, ok)
	assert.Len(t, finalists, 8)
}

func TestStartRunInvalid(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing brief", map[string]any{}, "brief is required"},
		{"blank brief", map[string]any{"brief": "  "}, "brief is required"},
		{"unknown mode", map[string]any{"brief": smithBrief, "mode": "turbo"}, "unknown mode"},
		{"oversized brief", map[string]any{"brief": strings.Repeat("x", model.MaxBriefLen+1)}, "maximum length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleStartRun(context.Background(), toolRequest("namazing_start_run", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, parseToolText(t, result), tt.want)
		})
	}
}

func TestGetRunErrors(t *testing.T) {
	s, reg := newTestServer(t)
	runID := startRun(t, s, map[string]any{"brief": smithBrief})
	reg.Wait()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing id", map[string]any{}, "run_id is required"},
		{"unknown id", map[string]any{"run_id": "nope"}, "run not found"},
		{"unknown view", map[string]any{"run_id": runID, "view": "tiny"}, "unknown view"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleGetRun(context.Background(), toolRequest("namazing_get_run", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, parseToolText(t, result), tt.want)
		})
	}
}

func TestErrorResult(t *testing.T) {
	result := errorResult("test error message")
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)

	tc, ok := result.Content[0].(mcplib.TextContent)
	require.True(t, ok, "content should be TextContent")
	assert.Equal(t, "test error message", tc.Text)
	assert.Equal(t, "text", tc.Type)
}
