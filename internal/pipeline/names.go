package pipeline

import (
	"context"

	"github.com/ajaysolanky/namazing-sub000/internal/agent"
	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

func (p *Pipeline) generateNames(ctx context.Context, ev stageEvents, prof model.Profile, mode model.Mode) ([]model.Candidate, error) {
	if err := ev.activity("Brainstorming candidate names"); err != nil {
		return nil, err
	}

	out := attempt(ctx, p.cfg.StubOnly, func(ctx context.Context) ([]model.Candidate, error) {
		var list model.CandidateList
		err := p.agent.Structured(ctx, agent.Call{
			TemplateID:  templateNameGenerator,
			Model:       p.cfg.Models.NameGenerator,
			Input:       toJSON(prof),
			Temperature: tempNameGenerator,
		}, &list)
		return list.Candidates, err
	}, func() []model.Candidate {
		return fallbackCandidates(prof)
	})
	if out.IsStubbed() {
		if err := p.noteFallback(ctx, ev, "", out.Reason); err != nil {
			return nil, err
		}
	}

	cands := out.Value
	if mode != model.ModeParallel && len(cands) > p.cfg.SerialMaxCandidates {
		cands = cands[:p.cfg.SerialMaxCandidates]
	}
	if err := ev.partial(model.FieldCandidates, cands); err != nil {
		return nil, err
	}
	return cands, nil
}
