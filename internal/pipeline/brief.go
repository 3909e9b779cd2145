package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/ajaysolanky/namazing-sub000/internal/agent"
	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

func (p *Pipeline) parseBrief(ctx context.Context, ev stageEvents, brief string) (model.Profile, error) {
	if err := ev.activity("Reading the brief"); err != nil {
		return model.Profile{}, err
	}

	out := attempt(ctx, p.cfg.StubOnly, func(ctx context.Context) (model.Profile, error) {
		var prof model.Profile
		err := p.agent.Structured(ctx, agent.Call{
			TemplateID:  templateBriefParser,
			Model:       p.cfg.Models.BriefParser,
			Input:       brief,
			Temperature: tempBriefParser,
		}, &prof)
		return prof, err
	}, func() model.Profile {
		return fallbackProfile(brief)
	})
	if out.IsStubbed() {
		if err := p.noteFallback(ctx, ev, "", out.Reason); err != nil {
			return model.Profile{}, err
		}
	}

	prof := out.Value
	// The model never gets to rewrite the client's words.
	prof.RawBrief = brief
	normalizeProfile(&prof)
	if err := ev.result(prof); err != nil {
		return model.Profile{}, err
	}
	return prof, nil
}

func normalizeProfile(p *model.Profile) {
	if p.Family.Siblings == nil {
		p.Family.Siblings = []string{}
	}
	if p.Family.HonorNames == nil {
		p.Family.HonorNames = []string{}
	}
	if p.Preferences.StyleLanes == nil {
		p.Preferences.StyleLanes = []string{}
	}
	if p.Preferences.Gender == "" {
		p.Preferences.Gender = model.GenderUnknown
	}
}

// nameWord matches one capitalised name, including O'Brien and McDonald forms.
const (
	nameWord    = `[A-Z](?:['’][A-Z])?[a-z]+(?:[A-Z][a-z]+)?`
	namePattern = `(` + nameWord + `(?:-` + nameWord + `)?)`
)

var (
	surnameRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(?i:surname|last name|family name)(?:\s+(?i:is|will be))?\s*:?\s*` + namePattern),
		regexp.MustCompile(`\b(?i:the)\s+` + namePattern + `\s+(?i:family|household)\b`),
	}
	siblingRe = regexp.MustCompile(`\b(?i:sister|brother|sibling|son|daughter)s?(?:\s+(?i:is|are|named|called))?\s*:?\s*` +
		`(` + nameWord + `(?:\s*(?:,|&|\band\b)\s*` + nameWord + `)*)`)
	honorRe = regexp.MustCompile(`\b(?i:honou?r(?:ing)?|after|in memory of|named for)\s+` +
		`(?:(?i:her|his|their|my|our)\s+)?(?:(?i:late)\s+)?` +
		`(?:(?i:great-)?(?i:grandmother|grandfather|grandma|grandpa|mother|father|mom|dad|aunt|uncle|nana|papa)\s+)?` +
		namePattern)
	initialRe = regexp.MustCompile(`\b(?i:starts? with|starting with|begins? with|beginning with|initials?)\s+(?:(?i:an?|the letter)\s+)?["']?([A-Z])\b`)
	regionRe  = regexp.MustCompile(`\b(?i:we live in|we're in|based in|living in|live in)\s+([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)?)`)
	capsRe    = regexp.MustCompile(nameWord)

	girlRe = regexp.MustCompile(`(?i)\b(?:girl|daughter|female|feminine)\b`)
	boyRe  = regexp.MustCompile(`(?i)\b(?:boy|son|male|masculine)\b`)

	shortRe       = regexp.MustCompile(`(?i)\b(?:short(?:er)?\s+(?:first\s+)?names?|one[- ]syllable|two[- ]syllable|short and sweet)\b`)
	longRe        = regexp.MustCompile(`(?i)\b(?:long(?:er)?\s+(?:first\s+)?names?|three[- ]syllable|elaborate)\b`)
	noNicknameRe  = regexp.MustCompile(`(?i)\b(?:no|hate|avoid|dislike|without)\s+nicknames?\b`)
	yesNicknameRe = regexp.MustCompile(`(?i)\b(?:love|like|enjoy)\s+nicknames?\b|\bnickname[- ]friendly\b`)
)

// laneKeywords maps catalog lane keys to words that signal them in a brief.
var laneKeywords = []struct {
	lane  string
	words *regexp.Regexp
}{
	{"classic", regexp.MustCompile(`(?i)\b(?:classic|timeless|traditional)\b`)},
	{"nature", regexp.MustCompile(`(?i)\b(?:nature|botanical|floral|flowers?|earthy|outdoorsy)\b`)},
	{"vintage", regexp.MustCompile(`(?i)\b(?:vintage|old[- ]fashioned|retro|antique)\b`)},
	{"literary", regexp.MustCompile(`(?i)\b(?:literary|bookish|literature|novels?|poetry)\b`)},
	{"modern", regexp.MustCompile(`(?i)\b(?:modern|trendy|contemporary|fresh)\b`)},
	{"mythic", regexp.MustCompile(`(?i)\b(?:myths?|mythic|mythology|mythological|legends?)\b`)},
	{"celestial", regexp.MustCompile(`(?i)\b(?:celestial|stars?|moon|space|cosmic)\b`)},
}

// fallbackProfile extracts what it can from the brief with regular
// expressions. Keywords match case-insensitively; names must be capitalised.
func fallbackProfile(brief string) model.Profile {
	var prof model.Profile

	for _, re := range surnameRes {
		if m := re.FindStringSubmatch(brief); m != nil {
			prof.Family.Surname = m[1]
			break
		}
	}

	seen := map[string]bool{}
	add := func(list *[]string, name string) {
		if name == "" || name == prof.Family.Surname || seen[name] {
			return
		}
		seen[name] = true
		*list = append(*list, name)
	}
	for _, m := range siblingRe.FindAllStringSubmatch(brief, -1) {
		for _, name := range capsRe.FindAllString(m[1], -1) {
			add(&prof.Family.Siblings, name)
		}
	}
	for _, m := range honorRe.FindAllStringSubmatch(brief, -1) {
		add(&prof.Family.HonorNames, m[1])
	}
	for _, m := range initialRe.FindAllStringSubmatch(brief, -1) {
		if !contains(prof.Family.RequiredInitials, m[1]) {
			prof.Family.RequiredInitials = append(prof.Family.RequiredInitials, m[1])
		}
	}
	if m := regionRe.FindStringSubmatch(brief); m != nil {
		prof.Region = m[1]
	}

	girls := len(girlRe.FindAllString(brief, -1))
	boys := len(boyRe.FindAllString(brief, -1))
	switch {
	case girls > boys:
		prof.Preferences.Gender = model.GenderGirl
	case boys > girls:
		prof.Preferences.Gender = model.GenderBoy
	default:
		prof.Preferences.Gender = model.GenderUnknown
	}

	for _, lk := range laneKeywords {
		if lk.words.MatchString(brief) {
			prof.Preferences.StyleLanes = append(prof.Preferences.StyleLanes, lk.lane)
		}
	}

	switch {
	case shortRe.MatchString(brief):
		prof.Preferences.LengthPreference = "short"
	case longRe.MatchString(brief):
		prof.Preferences.LengthPreference = "long"
	default:
		prof.Preferences.LengthPreference = "any"
	}
	switch {
	case noNicknameRe.MatchString(brief):
		prof.Preferences.NicknameTolerance = "none"
	case yesNicknameRe.MatchString(brief):
		prof.Preferences.NicknameTolerance = "high"
	default:
		prof.Preferences.NicknameTolerance = "medium"
	}
	return prof
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
