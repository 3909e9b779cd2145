package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajaysolanky/namazing-sub000/internal/agent"
	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

// Fallback selection sizes.
const (
	fallbackFinalists  = 8
	fallbackNearMisses = 4
)

type selectionInput struct {
	Profile model.Profile `json:"profile"`
	Cards   []model.Card  `json:"cards"`
}

func (p *Pipeline) selectFinalists(ctx context.Context, ev stageEvents, prof model.Profile, cards []model.Card) (model.Selection, error) {
	if err := ev.activity(fmt.Sprintf("Weighing %d researched names", len(cards))); err != nil {
		return model.Selection{}, err
	}

	out := attempt(ctx, p.cfg.StubOnly, func(ctx context.Context) (model.Selection, error) {
		var draft model.SelectionDraft
		if err := p.agent.Structured(ctx, agent.Call{
			TemplateID:  templateExpertSelector,
			Model:       p.cfg.Models.ExpertSelector,
			Input:       toJSON(selectionInput{Profile: prof, Cards: cards}),
			Temperature: tempExpertSelector,
		}, &draft); err != nil {
			return model.Selection{}, err
		}
		sel, err := draft.Hydrate(cards)
		if err != nil {
			return model.Selection{}, &agent.Error{Kind: agent.KindValidation, TemplateID: templateExpertSelector, Err: err}
		}
		return sel, nil
	}, func() model.Selection {
		return fallbackSelection(prof, cards)
	})
	if out.IsStubbed() {
		if err := p.noteFallback(ctx, ev, "", out.Reason); err != nil {
			return model.Selection{}, err
		}
	}

	if err := ev.result(out.Value); err != nil {
		return model.Selection{}, err
	}
	return out.Value, nil
}

// fallbackSelection slices the cards by position: the first eight are
// finalists and the next four are near-misses.
func fallbackSelection(prof model.Profile, cards []model.Card) model.Selection {
	sel := model.Selection{
		Finalists:  []model.Finalist{},
		NearMisses: []model.NearMiss{},
	}
	for i, c := range cards {
		switch {
		case i < fallbackFinalists:
			f := model.Finalist{
				Card:          c,
				Justification: strings.TrimSpace(fmt.Sprintf("%s leads the %s lane. %s", c.Name, c.Lane, c.Fit.Surname)),
			}
			if len(c.Combos) > 0 {
				f.Combo = c.Combos[0]
			}
			sel.Finalists = append(sel.Finalists, f)
		case i < fallbackFinalists+fallbackNearMisses:
			sel.NearMisses = append(sel.NearMisses, model.NearMiss{
				Card:   c,
				Reason: fmt.Sprintf("%s is a strong option but ranked below the finalists in this pass.", c.Name),
			})
		default:
			return sel
		}
	}
	return sel
}
