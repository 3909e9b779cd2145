package mcp

import (
	"context"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	// write-brief: turns what the agent knows about a family into a brief.
	s.mcpServer.AddPrompt(
		mcplib.NewPrompt("write-brief",
			mcplib.WithPromptDescription("Draft a naming brief from what you know about the family, then start a run"),
			mcplib.WithArgument("surname",
				mcplib.ArgumentDescription("Family surname the name must pair with"),
				mcplib.RequiredArgument(),
			),
			mcplib.WithArgument("siblings",
				mcplib.ArgumentDescription("Comma-separated names of older siblings, if any"),
			),
			mcplib.WithArgument("styles",
				mcplib.ArgumentDescription("Preferred styles, e.g. classic, nature, vintage, literary, modern"),
			),
		),
		s.handleWriteBriefPrompt,
	)

	// naming-setup: explains the start/poll workflow.
	s.mcpServer.AddPrompt(
		mcplib.NewPrompt("naming-setup",
			mcplib.WithPromptDescription("System prompt snippet explaining the namazing start-then-poll workflow"),
		),
		s.handleNamingSetupPrompt,
	)
}

func (s *Server) handleWriteBriefPrompt(ctx context.Context, request mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	surname := strings.TrimSpace(request.Params.Arguments["surname"])
	if surname == "" {
		return nil, fmt.Errorf("surname argument is required")
	}

	var known strings.Builder
	fmt.Fprintf(&known, "- Surname: %s\n", surname)
	if sibs := strings.TrimSpace(request.Params.Arguments["siblings"]); sibs != "" {
		fmt.Fprintf(&known, "- Siblings: %s\n", sibs)
	}
	if styles := strings.TrimSpace(request.Params.Arguments["styles"]); styles != "" {
		fmt.Fprintf(&known, "- Preferred styles: %s\n", styles)
	}

	return &mcplib.GetPromptResult{
		Description: fmt.Sprintf("Draft a naming brief for the %s family", surname),
		Messages: []mcplib.PromptMessage{
			{
				Role: mcplib.RoleUser,
				Content: mcplib.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Write a short naming brief for the %s family. What we know so far:

%s
A good brief, in plain prose, covers:
- the expected baby's gender, or that it is unknown
- the surname and any siblings' names
- people the family wants to honor
- styles they like and names or sounds to avoid
- preferred length and how they feel about nicknames

Ask the family for anything important that is missing, then CALL
namazing_start_run with the brief. Poll namazing_get_run with
view="summary" until status is "completed", and share the finalists.`, surname, known.String()),
				},
			},
		},
	}, nil
}

func (s *Server) handleNamingSetupPrompt(ctx context.Context, request mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	return &mcplib.GetPromptResult{
		Description: "namazing baby-naming workflow for AI agents",
		Messages: []mcplib.PromptMessage{
			{
				Role: mcplib.RoleUser,
				Content: mcplib.TextContent{
					Type: "text",
					Text: `You have access to namazing, a pipeline that turns a family's naming brief into
researched name suggestions and a short report.

## The Pattern: Start, Then Poll

1. Call namazing_start_run with the brief. It returns a run_id right away.
2. Call namazing_get_run with that run_id and view="summary" until status
   is "completed" (or "failed").
3. Call namazing_get_run with view="full", or read the resource
   namazing://runs/{run_id}/report, for the full report.

## Modes

- serial (default): at most 24 candidates, researched one at a time.
- parallel: every candidate, researched concurrently. Faster, costs more.

## Available Tools

- namazing_start_run: Start a run for a brief
- namazing_get_run: Read a run's status, events and result`,
				},
			},
		},
	}, nil
}
