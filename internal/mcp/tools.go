package mcp

import (
	"context"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
	"github.com/ajaysolanky/namazing-sub000/internal/runs"
)

// Views accepted by namazing_get_run.
const (
	viewFull    = "full"
	viewSummary = "summary"
)

func (s *Server) registerTools() {
	// namazing_start_run: start a naming run for a brief.
	s.mcpServer.AddTool(
		mcplib.NewTool("namazing_start_run",
			mcplib.WithDescription(`Start a baby-naming run for a free-text brief.

The run executes in the background: it parses the brief into a family
profile, generates candidate names, researches each one, picks finalists
and writes a report. This tool returns immediately with the run id; poll
namazing_get_run until status is "completed" or "failed".

WHAT TO INCLUDE IN THE BRIEF: surname, sibling names, names to honor,
style preferences (classic, nature, vintage, literary, modern...), anything
to avoid.`),
			mcplib.WithString("brief",
				mcplib.Description("Free-text description of the family and what they want in a name"),
				mcplib.Required(),
			),
			mcplib.WithString("mode",
				mcplib.Description("serial researches up to 24 names one at a time; parallel researches every candidate concurrently"),
				mcplib.Enum(string(model.ModeSerial), string(model.ModeParallel)),
				mcplib.DefaultString(string(model.ModeSerial)),
			),
			mcplib.WithOpenWorldHintAnnotation(false),
		),
		s.handleStartRun,
	)

	// namazing_get_run: read a run snapshot.
	s.mcpServer.AddTool(
		mcplib.NewTool("namazing_get_run",
			mcplib.WithDescription(`Get the current state of a naming run.

Returns status, the ordered event log and, once completed, the result
(profile, candidates, cards, selection, report). Use view="summary" for a
compact status with finalist names only.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("run_id",
				mcplib.Description("Run id returned by namazing_start_run"),
				mcplib.Required(),
			),
			mcplib.WithString("view",
				mcplib.Description("full (default) or summary"),
				mcplib.Enum(viewFull, viewSummary),
				mcplib.DefaultString(viewFull),
			),
		),
		s.handleGetRun,
	)
}

func (s *Server) handleStartRun(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	req := model.StartRunRequest{
		Brief: request.GetString("brief", ""),
		Mode:  request.GetString("mode", ""),
	}
	mode, err := req.Validate()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	run, err := s.runs.StartRun(ctx, req.Brief, mode)
	if err != nil {
		s.logger.Error("mcp: start run", "error", err)
		return errorResult(fmt.Sprintf("start run failed: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"run_id": run.ID,
		"status": run.Status,
		"mode":   run.Mode,
	})
}

func (s *Server) handleGetRun(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return errorResult("run_id is required"), nil
	}

	run, err := s.runs.GetRun(runID)
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			return errorResult("run not found: " + runID), nil
		}
		return errorResult(fmt.Sprintf("get run failed: %v", err)), nil
	}

	switch view := request.GetString("view", viewFull); view {
	case viewFull:
		return jsonResult(run)
	case viewSummary:
		return jsonResult(summarizeRun(run))
	default:
		return errorResult(fmt.Sprintf("unknown view %q (want %q or %q)", view, viewFull, viewSummary)), nil
	}
}
