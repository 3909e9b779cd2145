package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Candidate bounds enforced on model-generated lists.
const (
	MinCandidates = 8
	MaxCandidates = 80
)

// StringList decodes either a single JSON string or an array of strings.
// Models are inconsistent about which one they return for list-valued fields.
type StringList []string

// UnmarshalJSON accepts "a", ["a","b"] and null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = list
	return nil
}

// Candidate is a proposed name with a thematic lane, pre-research.
type Candidate struct {
	Name       string     `json:"name"`
	Lane       string     `json:"lane"`
	Rationale  string     `json:"rationale"`
	ThemeLinks StringList `json:"themeLinks,omitempty"`
}

// Validate checks a single candidate.
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(c.Lane) == "" {
		return fmt.Errorf("lane is required for %q", c.Name)
	}
	return nil
}

// CandidateList is the Name Generator's structured output.
type CandidateList struct {
	Candidates []Candidate `json:"candidates"`
}

// Validate enforces the list bounds and every element.
func (l *CandidateList) Validate() error {
	n := len(l.Candidates)
	if n < MinCandidates || n > MaxCandidates {
		return fmt.Errorf("candidates: got %d, want between %d and %d", n, MinCandidates, MaxCandidates)
	}
	for i, c := range l.Candidates {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("candidates[%d]: %w", i, err)
		}
	}
	return nil
}

// Fit describes how a name sits with the rest of the family.
type Fit struct {
	Surname  string `json:"surname"`
	Siblings string `json:"siblings"`
}

// Card is the fully researched profile of one name.
type Card struct {
	Name            string     `json:"name"`
	Lane            string     `json:"lane"`
	Pronunciation   string     `json:"pronunciation"`
	Syllables       int        `json:"syllables"`
	Meaning         string     `json:"meaning"`
	Origins         StringList `json:"origins"`
	Variants        StringList `json:"variants"`
	NicknameClasses StringList `json:"nicknameClasses"`
	Popularity      string     `json:"popularity"`
	NotableBearers  StringList `json:"notableBearers"`
	CulturalNotes   StringList `json:"culturalNotes"`
	Fit             Fit        `json:"fit"`
	HonorMapping    string     `json:"honorMapping,omitempty"`
	Combos          StringList `json:"combos"`
	ResearchLog     string     `json:"researchLog"`
}

// Validate checks the fields every card must carry.
func (c *Card) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("card: name is required")
	case strings.TrimSpace(c.Pronunciation) == "":
		return fmt.Errorf("card %q: pronunciation is required", c.Name)
	case c.Syllables < 1:
		return fmt.Errorf("card %q: syllables must be positive", c.Name)
	case strings.TrimSpace(c.Meaning) == "":
		return fmt.Errorf("card %q: meaning is required", c.Name)
	}
	return nil
}
