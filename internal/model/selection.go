package model

import (
	"fmt"
	"strings"
)

// Finalist is a card the selector kept, with its justification.
type Finalist struct {
	Card          Card   `json:"card"`
	Justification string `json:"justification"`
	Combo         string `json:"combo,omitempty"`
}

// NearMiss is a card the selector considered and rejected.
type NearMiss struct {
	Card   Card   `json:"card"`
	Reason string `json:"reason"`
}

// Selection is the finalist / near-miss split over researched cards.
type Selection struct {
	Finalists  []Finalist `json:"finalists"`
	NearMisses []NearMiss `json:"nearMisses"`
}

// SelectionDraft is what the selector model returns: names only. It is
// hydrated against the card list to form a Selection.
type SelectionDraft struct {
	Finalists []struct {
		Name          string `json:"name"`
		Justification string `json:"justification"`
		Combo         string `json:"combo,omitempty"`
	} `json:"finalists"`
	NearMisses []struct {
		Name   string `json:"name"`
		Reason string `json:"reason"`
	} `json:"nearMisses"`
}

// Validate checks that the draft is non-empty and fully justified.
func (d *SelectionDraft) Validate() error {
	if len(d.Finalists) == 0 {
		return fmt.Errorf("selection: at least one finalist is required")
	}
	for i, f := range d.Finalists {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("selection: finalists[%d]: name is required", i)
		}
		if strings.TrimSpace(f.Justification) == "" {
			return fmt.Errorf("selection: finalists[%d] %q: justification is required", i, f.Name)
		}
	}
	for i, n := range d.NearMisses {
		if strings.TrimSpace(n.Name) == "" {
			return fmt.Errorf("selection: nearMisses[%d]: name is required", i)
		}
	}
	return nil
}

// Hydrate resolves draft names against the researched cards. Names are
// matched case-insensitively; an unknown name is a validation failure.
func (d *SelectionDraft) Hydrate(cards []Card) (Selection, error) {
	byName := make(map[string]Card, len(cards))
	for _, c := range cards {
		byName[strings.ToLower(strings.TrimSpace(c.Name))] = c
	}
	lookup := func(name string) (Card, error) {
		c, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return Card{}, fmt.Errorf("selection: %q is not a researched name", name)
		}
		return c, nil
	}

	sel := Selection{
		Finalists:  make([]Finalist, 0, len(d.Finalists)),
		NearMisses: make([]NearMiss, 0, len(d.NearMisses)),
	}
	for _, f := range d.Finalists {
		card, err := lookup(f.Name)
		if err != nil {
			return Selection{}, err
		}
		sel.Finalists = append(sel.Finalists, Finalist{Card: card, Justification: f.Justification, Combo: f.Combo})
	}
	for _, n := range d.NearMisses {
		card, err := lookup(n.Name)
		if err != nil {
			return Selection{}, err
		}
		sel.NearMisses = append(sel.NearMisses, NearMiss{Card: card, Reason: n.Reason})
	}
	return sel, nil
}
