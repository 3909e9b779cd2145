// Package mcp implements the Model Context Protocol server for namazing.
//
// The MCP server exposes the same capabilities as the HTTP API through
// MCP tools, resources and prompts, so MCP-compatible agents can start a
// naming run and read back its report.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

// RunService is the part of the run registry the MCP tools need.
// *runs.Registry implements it.
type RunService interface {
	StartRun(ctx context.Context, brief string, mode model.Mode) (model.Run, error)
	GetRun(id string) (model.Run, error)
}

// Server wraps the MCP server with the run registry.
type Server struct {
	mcpServer *mcpserver.MCPServer
	runs      RunService
	logger    *slog.Logger
}

// New creates and configures a new MCP server with all tools, resources
// and prompts.
func New(runs RunService, logger *slog.Logger, version string) *Server {
	s := &Server{
		runs:   runs,
		logger: logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"namazing",
		version,
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithPromptCapabilities(false),
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("failed to encode result: " + err.Error()), nil
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
