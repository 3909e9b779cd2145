package mcp

import (
	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

const maxCompactText = 200

// summarizeRun returns a minimal representation of a run for MCP responses.
// Drops the event log and the researched cards that agents rarely act on;
// keeps the latest progress message and, once completed, the finalists.
func summarizeRun(run model.Run) map[string]any {
	m := map[string]any{
		"run_id":      run.ID,
		"status":      run.Status,
		"mode":        run.Mode,
		"event_count": len(run.Events),
	}
	if run.Error != "" {
		m["error"] = run.Error
	}
	if msg := lastMessage(run.Events); msg != "" {
		m["last_message"] = truncate(msg, maxCompactText)
	}
	if run.Result == nil {
		return m
	}

	report := run.Result.Report
	finalists := make([]map[string]any, 0, len(report.Finalists))
	for _, f := range report.Finalists {
		entry := map[string]any{
			"name":          f.Card.Name,
			"justification": truncate(f.Justification, maxCompactText),
		}
		if f.Combo != "" {
			entry["combo"] = f.Combo
		}
		finalists = append(finalists, entry)
	}
	m["summary"] = report.Summary
	m["finalists"] = finalists
	m["tie_break"] = truncate(report.TieBreak, maxCompactText)
	m["candidates_researched"] = len(run.Result.Cards)
	return m
}

// lastMessage returns the msg of the most recent activity, log or error
// event.
func lastMessage(events []model.Event) string {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Msg != "" {
			return events[i].Msg
		}
	}
	return ""
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
