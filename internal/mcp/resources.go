package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

const runURIPrefix = "namazing://runs/"

func (s *Server) registerResources() {
	// namazing://runs/{run_id}: full run snapshot.
	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			runURIPrefix+"{run_id}",
			"Run",
			mcplib.WithTemplateDescription("Snapshot of a naming run: status, events and result"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		s.handleRunResource,
	)

	// namazing://runs/{run_id}/report: the finished report as markdown.
	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			runURIPrefix+"{run_id}/report",
			"Run Report",
			mcplib.WithTemplateDescription("Markdown report of a completed naming run"),
			mcplib.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReportResource,
	)
}

// parseRunURI splits namazing://runs/{id}[/report] into the id and whether
// the report was requested.
func parseRunURI(uri string) (runID string, report bool, err error) {
	rest, ok := strings.CutPrefix(uri, runURIPrefix)
	if !ok {
		return "", false, fmt.Errorf("mcp: invalid run URI: %s", uri)
	}
	if id, ok := strings.CutSuffix(rest, "/report"); ok {
		rest, report = id, true
	}
	if rest == "" || strings.Contains(rest, "/") {
		return "", false, fmt.Errorf("mcp: invalid run URI: %s", uri)
	}
	return rest, report, nil
}

func (s *Server) handleRunResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	uri := request.Params.URI
	runID, report, err := parseRunURI(uri)
	if err != nil {
		return nil, err
	}
	if report {
		return s.handleReportResource(ctx, request)
	}

	run, err := s.runs.GetRun(runID)
	if err != nil {
		return nil, fmt.Errorf("mcp: run resource: %w", err)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal run: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleReportResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	uri := request.Params.URI
	runID, report, err := parseRunURI(uri)
	if err != nil {
		return nil, err
	}
	if !report {
		return nil, fmt.Errorf("mcp: not a report URI: %s", uri)
	}

	run, err := s.runs.GetRun(runID)
	if err != nil {
		return nil, fmt.Errorf("mcp: report resource: %w", err)
	}
	if run.Result == nil {
		return nil, fmt.Errorf("mcp: run %s has no report (status %s)", runID, run.Status)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     run.Result.Report.Markdown,
		},
	}, nil
}
