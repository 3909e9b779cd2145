package model

import (
	"fmt"
)

// Gender guesses used to pick a name catalog.
const (
	GenderGirl    = "girl"
	GenderBoy     = "boy"
	GenderUnknown = "unknown"
)

var (
	validGenders            = map[string]bool{"": true, GenderGirl: true, GenderBoy: true, GenderUnknown: true}
	validLengthPreferences  = map[string]bool{"": true, "short": true, "medium": true, "long": true, "any": true}
	validNicknameTolerances = map[string]bool{"": true, "none": true, "low": true, "medium": true, "high": true}
)

// Profile is the parsed interpretation of a client brief.
type Profile struct {
	Family      Family      `json:"family"`
	Preferences Preferences `json:"preferences"`
	Region      string      `json:"region,omitempty"`
	RawBrief    string      `json:"rawBrief" jsonschema:"-"`
}

// Family holds the facts about the family the name must fit.
type Family struct {
	Surname          string   `json:"surname"`
	Siblings         []string `json:"siblings"`
	HonorNames       []string `json:"honorNames"`
	RequiredInitials []string `json:"requiredInitials,omitempty"`
}

// Preferences holds the stated taste of the client.
type Preferences struct {
	Gender            string   `json:"gender" jsonschema:"enum=girl,enum=boy,enum=unknown"`
	StyleLanes        []string `json:"styleLanes"`
	LengthPreference  string   `json:"lengthPreference,omitempty" jsonschema:"enum=short,enum=medium,enum=long,enum=any"`
	NicknameTolerance string   `json:"nicknameTolerance,omitempty" jsonschema:"enum=none,enum=low,enum=medium,enum=high"`
}

// Validate checks the enumerated fields and the initial constraints.
// RawBrief is deliberately not checked: it is attached after validation.
func (p *Profile) Validate() error {
	if !validGenders[p.Preferences.Gender] {
		return fmt.Errorf("preferences.gender %q is not one of girl, boy, unknown", p.Preferences.Gender)
	}
	if !validLengthPreferences[p.Preferences.LengthPreference] {
		return fmt.Errorf("preferences.lengthPreference %q is not recognised", p.Preferences.LengthPreference)
	}
	if !validNicknameTolerances[p.Preferences.NicknameTolerance] {
		return fmt.Errorf("preferences.nicknameTolerance %q is not recognised", p.Preferences.NicknameTolerance)
	}
	for i, initial := range p.Family.RequiredInitials {
		if len([]rune(initial)) != 1 {
			return fmt.Errorf("family.requiredInitials[%d] %q must be a single letter", i, initial)
		}
	}
	return nil
}

// IsBoy reports whether the boy-leaning catalog applies. Anything ambiguous
// leans girl.
func (p Profile) IsBoy() bool {
	return p.Preferences.Gender == GenderBoy
}
