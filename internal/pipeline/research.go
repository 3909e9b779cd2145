package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"

	"github.com/ajaysolanky/namazing-sub000/internal/agent"
	"github.com/ajaysolanky/namazing-sub000/internal/fanout"
	"github.com/ajaysolanky/namazing-sub000/internal/model"
	"github.com/ajaysolanky/namazing-sub000/internal/research"
	"github.com/ajaysolanky/namazing-sub000/internal/telemetry"
)

// researchInput is what the researcher model sees for one candidate.
type researchInput struct {
	Candidate model.Candidate   `json:"candidate"`
	Profile   model.Profile     `json:"profile"`
	Tools     research.Snapshot `json:"tools"`
}

func (p *Pipeline) researchNames(ctx context.Context, ev stageEvents, prof model.Profile, cands []model.Candidate, mode model.Mode) ([]model.Card, error) {
	workers := 1
	if mode == model.ModeParallel {
		workers = p.cfg.Concurrency
	}
	if err := ev.activity(fmt.Sprintf("Researching %d names", len(cands))); err != nil {
		return nil, err
	}

	return fanout.Map(ctx, cands, workers, func(ctx context.Context, _ int, c model.Candidate) (model.Card, error) {
		ctx, span := p.tracer.Start(ctx, "namazing.research", trace.WithAttributes(
			telemetry.CandidateKey.String(c.Name),
		))
		defer span.End()

		if err := ev.start(c.Name); err != nil {
			return model.Card{}, err
		}

		snap := p.bridge.Snapshot(ctx, c.Name)
		out := attempt(ctx, p.cfg.StubOnly, func(ctx context.Context) (model.Card, error) {
			var card model.Card
			err := p.agent.Structured(ctx, agent.Call{
				TemplateID:  templateResearcher,
				Model:       p.cfg.Models.Researcher,
				Input:       toJSON(researchInput{Candidate: c, Profile: prof, Tools: snap}),
				Temperature: tempResearcher,
			}, &card)
			return card, err
		}, func() model.Card {
			return fallbackCard(c, prof, snap)
		})
		if out.IsStubbed() {
			if err := p.noteFallback(ctx, ev, c.Name, out.Reason); err != nil {
				return model.Card{}, err
			}
		}

		card := out.Value
		// Cards are keyed by the candidate's name for selection.
		card.Name = c.Name
		if card.Lane == "" {
			card.Lane = c.Lane
		}
		if err := ev.partial(model.FieldCard, card); err != nil {
			return model.Card{}, err
		}
		if err := ev.done(c.Name); err != nil {
			return model.Card{}, err
		}
		return card, nil
	})
}

// fallbackCard builds a card from the candidate, the profile and whatever
// the local tools could answer.
func fallbackCard(c model.Candidate, prof model.Profile, snap research.Snapshot) model.Card {
	syllables := snap.Syllables
	if syllables < 1 {
		syllables = 1
	}
	pron := snap.Pronunciation
	if pron == "" {
		pron = strings.ToUpper(c.Name)
	}
	meaning := c.Rationale
	if meaning == "" {
		meaning = fmt.Sprintf("A %s choice.", c.Lane)
	}
	popularity := "no popularity data available"
	if snap.Popularity != nil {
		popularity = snap.Popularity.Note
	}

	card := model.Card{
		Name:            c.Name,
		Lane:            c.Lane,
		Pronunciation:   pron,
		Syllables:       syllables,
		Meaning:         meaning,
		Origins:         model.StringList{},
		Variants:        model.StringList{},
		NicknameClasses: nicknameClasses(c.Name),
		Popularity:      popularity,
		NotableBearers:  append(model.StringList{}, snap.Associations...),
		CulturalNotes:   append(model.StringList{}, c.ThemeLinks...),
		Fit: model.Fit{
			Surname:  surnameFit(c.Name, prof.Family.Surname),
			Siblings: siblingFit(c.Name, prof.Family.Siblings),
		},
		ResearchLog: researchLog(snap),
	}

	middle := ""
	if len(prof.Family.HonorNames) > 0 {
		middle = prof.Family.HonorNames[0]
		card.HonorMapping = fmt.Sprintf("%s works as a middle name honouring %s.", middle, middle)
	}
	card.Combos = model.StringList{joinNonEmpty(c.Name, middle, prof.Family.Surname)}
	return card
}

func nicknameClasses(name string) model.StringList {
	r := []rune(name)
	if len(r) <= 4 {
		return model.StringList{"none obvious"}
	}
	return model.StringList{"short form " + string(r[:3])}
}

func surnameFit(name, surname string) string {
	if surname == "" || name == "" {
		return "No surname given."
	}
	full := name + " " + surname
	if sameInitial(name, surname) {
		return full + " is alliterative."
	}
	return full + " reads cleanly."
}

func siblingFit(name string, siblings []string) string {
	if len(siblings) == 0 || name == "" {
		return "No siblings named in the brief."
	}
	for _, s := range siblings {
		if strings.EqualFold(s, name) {
			return "Same name as a sibling; avoid."
		}
	}
	for _, s := range siblings {
		if sameInitial(s, name) {
			return fmt.Sprintf("Shares an initial with %s.", s)
		}
	}
	return "Sits alongside " + strings.Join(siblings, ", ") + "."
}

// sameInitial compares the first letters of a and b case-insensitively.
func sameInitial(a, b string) bool {
	ra, _ := utf8.DecodeRuneInString(a)
	rb, _ := utf8.DecodeRuneInString(b)
	if ra == utf8.RuneError || rb == utf8.RuneError {
		return false
	}
	return unicode.ToLower(ra) == unicode.ToLower(rb)
}

func researchLog(snap research.Snapshot) string {
	if len(snap.Errors) == 0 {
		return "Built from local tools: pronunciation, syllables, popularity and associations."
	}
	failed := make([]string, 0, len(snap.Errors))
	for k := range snap.Errors {
		failed = append(failed, k)
	}
	sort.Strings(failed)
	return "Built from local tools; unavailable: " + strings.Join(failed, ", ") + "."
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
