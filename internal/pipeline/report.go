package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajaysolanky/namazing-sub000/internal/agent"
	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

type reportInput struct {
	Profile   model.Profile   `json:"profile"`
	Selection model.Selection `json:"selection"`
}

// composeReport writes the report and emits the run's terminal result
// event, whose payload is the full Result.
func (p *Pipeline) composeReport(ctx context.Context, ev stageEvents, res *model.Result) error {
	if err := ev.activity("Writing the report"); err != nil {
		return err
	}

	out := attempt(ctx, p.cfg.StubOnly, func(ctx context.Context) (model.Report, error) {
		md, err := p.agent.Text(ctx, agent.Call{
			TemplateID:  templateReportComposer,
			Model:       p.cfg.Models.ReportComposer,
			Input:       toJSON(reportInput{Profile: res.Profile, Selection: res.Selection}),
			Temperature: tempReportComposer,
		})
		if err != nil {
			return model.Report{}, err
		}
		return reportFromMarkdown(md, res.Selection), nil
	}, func() model.Report {
		return fallbackReport(res.Profile, res.Selection, len(res.Cards))
	})
	if out.IsStubbed() {
		if err := p.noteFallback(ctx, ev, "", out.Reason); err != nil {
			return err
		}
	}

	res.Report = out.Value
	return ev.result(*res)
}

// reportFromMarkdown derives the structured report fields from free text.
// Trade-offs and tie-break point into the markdown rather than parsing it.
func reportFromMarkdown(md string, sel model.Selection) model.Report {
	return model.Report{
		Summary:   firstLine(md),
		Finalists: sel.Finalists,
		Combos:    finalistCombos(sel),
		Tradeoffs: []string{sectionPointer(md, "trade", "See the full report for trade-offs between the finalists.")},
		TieBreak:  sectionPointer(md, "tie", "See the full report for tie-break guidance."),
		Markdown:  md,
	}
}

func firstLine(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line != "" {
			return line
		}
	}
	return ""
}

// sectionPointer names the first markdown heading containing keyword, or
// returns fallback when there is none.
func sectionPointer(md, keyword, fallback string) string {
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if strings.Contains(strings.ToLower(heading), keyword) {
			return fmt.Sprintf("See %q in the report.", heading)
		}
	}
	return fallback
}

func finalistCombos(sel model.Selection) []string {
	combos := []string{}
	for _, f := range sel.Finalists {
		if f.Combo != "" {
			combos = append(combos, f.Combo)
		}
	}
	return combos
}

// fallbackReport fills every report field from templates.
func fallbackReport(prof model.Profile, sel model.Selection, researched int) model.Report {
	family := "your family"
	if prof.Family.Surname != "" {
		family = "the " + prof.Family.Surname + " family"
	}
	names := make([]string, 0, len(sel.Finalists))
	for _, f := range sel.Finalists {
		names = append(names, f.Card.Name)
	}

	rep := model.Report{
		Summary:   fmt.Sprintf("%d finalists for %s, chosen from %d researched names.", len(sel.Finalists), family, researched),
		Finalists: sel.Finalists,
		Combos:    finalistCombos(sel),
		Tradeoffs: []string{},
	}
	for i, f := range sel.Finalists {
		if i == 3 {
			break
		}
		rep.Tradeoffs = append(rep.Tradeoffs, fmt.Sprintf("%s (%s): %s", f.Card.Name, f.Card.Lane, f.Card.Popularity))
	}
	if len(sel.NearMisses) > 0 {
		rep.Tradeoffs = append(rep.Tradeoffs,
			fmt.Sprintf("%d near-misses remain available if a finalist falls through.", len(sel.NearMisses)))
	}

	tie := "Say each finalist aloud with the full family name"
	if len(prof.Family.Siblings) > 0 {
		tie += " and next to " + strings.Join(prof.Family.Siblings, ", ")
	}
	tie += "."
	if len(prof.Family.HonorNames) > 0 {
		tie += fmt.Sprintf(" If two still tie, prefer the one that pairs best with %s.", prof.Family.HonorNames[0])
	}
	rep.TieBreak = tie

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rep.Summary)
	if len(names) > 0 {
		fmt.Fprintf(&b, "Shortlist: %s.\n\n", strings.Join(names, ", "))
	}
	b.WriteString("## Finalists\n\n")
	for _, f := range sel.Finalists {
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", f.Card.Name, f.Card.Lane, f.Justification)
	}
	b.WriteString("\n## Trade-offs\n\n")
	for _, t := range rep.Tradeoffs {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	fmt.Fprintf(&b, "\n## Tie-break\n\n%s\n", rep.TieBreak)
	rep.Markdown = b.String()
	return rep
}
