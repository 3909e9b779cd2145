package pipeline

import (
	"strings"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

// Fallback catalog dimensions.
const (
	fallbackLanes        = 5
	fallbackNamesPerLane = 5
)

type catalogLane struct {
	key       string
	label     string
	rationale string
	names     [fallbackNamesPerLane]string
}

// The first five lanes of each catalog are the defaults used when the
// profile names no style.
var girlCatalog = []catalogLane{
	{"classic", "Timeless classics", "a long-standing favourite that never dates",
		[5]string{"Eleanor", "Charlotte", "Margaret", "Josephine", "Beatrice"}},
	{"nature", "Nature & botanical", "drawn from the natural world",
		[5]string{"Iris", "Willow", "Hazel", "Juniper", "Fern"}},
	{"vintage", "Vintage revival", "a turn-of-the-century name back in circulation",
		[5]string{"Mabel", "Ada", "Edith", "Florence", "Pearl"}},
	{"literary", "Literary heroines", "carried by a memorable character or author",
		[5]string{"Matilda", "Cordelia", "Harper", "Emma", "Juliet"}},
	{"modern", "Modern & airy", "light and current without feeling trendy",
		[5]string{"Nova", "Aria", "Isla", "Mila", "Quinn"}},
	{"mythic", "Mythic & legendary", "rooted in myth and legend",
		[5]string{"Athena", "Freya", "Phoebe", "Penelope", "Calliope"}},
	{"celestial", "Celestial", "inspired by the sky and the stars",
		[5]string{"Luna", "Stella", "Celeste", "Aurora", "Vega"}},
}

var boyCatalog = []catalogLane{
	{"classic", "Timeless classics", "a long-standing favourite that never dates",
		[5]string{"William", "Henry", "James", "Theodore", "Arthur"}},
	{"nature", "Nature & earthy", "drawn from the natural world",
		[5]string{"Rowan", "Forrest", "Ash", "River", "Jasper"}},
	{"vintage", "Vintage revival", "a turn-of-the-century name back in circulation",
		[5]string{"Walter", "Otis", "Felix", "August", "Hugo"}},
	{"literary", "Literary heroes", "carried by a memorable character or author",
		[5]string{"Atticus", "Silas", "Milo", "Ellis", "Emerson"}},
	{"modern", "Modern & crisp", "short, current and easy to say",
		[5]string{"Kai", "Ezra", "Leo", "Jude", "Beckett"}},
	{"mythic", "Mythic & legendary", "rooted in myth and legend",
		[5]string{"Orion", "Apollo", "Magnus", "Leander", "Cassius"}},
	{"celestial", "Celestial", "inspired by the sky and the stars",
		[5]string{"Sol", "Cyrus", "Castor", "Elio", "Zephyr"}},
}

// fallbackCandidates picks five lanes from the catalog for the profile's
// gender: lanes matching the declared styles first, then the defaults.
func fallbackCandidates(prof model.Profile) []model.Candidate {
	catalog := girlCatalog
	if prof.IsBoy() {
		catalog = boyCatalog
	}

	picked := make([]catalogLane, 0, fallbackLanes)
	used := make(map[string]bool, fallbackLanes)
	pick := func(l catalogLane) {
		if len(picked) < fallbackLanes && !used[l.key] {
			used[l.key] = true
			picked = append(picked, l)
		}
	}
	for _, style := range prof.Preferences.StyleLanes {
		if l, ok := matchLane(catalog, style); ok {
			pick(l)
		}
	}
	for _, l := range catalog {
		pick(l)
	}

	out := make([]model.Candidate, 0, fallbackLanes*fallbackNamesPerLane)
	for _, l := range picked {
		for _, name := range l.names {
			out = append(out, model.Candidate{
				Name:       name,
				Lane:       l.label,
				Rationale:  name + " is " + l.rationale + ".",
				ThemeLinks: model.StringList{l.key},
			})
		}
	}
	return out
}

// matchLane finds the catalog lane whose key appears in a declared style,
// or whose key contains it ("nature-inspired" and "Nature" both match
// "nature").
func matchLane(catalog []catalogLane, style string) (catalogLane, bool) {
	s := strings.ToLower(strings.TrimSpace(style))
	if s == "" {
		return catalogLane{}, false
	}
	for _, l := range catalog {
		if strings.Contains(s, l.key) || strings.Contains(l.key, s) {
			return l, true
		}
	}
	return catalogLane{}, false
}
