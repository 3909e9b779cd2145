package research

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed data/names.yaml
var namesYAML []byte

type referenceData struct {
	Popularity map[string]struct {
		Rank  int    `yaml:"rank"`
		Trend string `yaml:"trend"`
	} `yaml:"popularity"`
	Associations map[string][]string `yaml:"associations"`
}

var loadReference = sync.OnceValues(func() (*referenceData, error) {
	var data referenceData
	if err := yaml.Unmarshal(namesYAML, &data); err != nil {
		return nil, fmt.Errorf("research: parse reference data: %w", err)
	}
	return &data, nil
})

// Local implements Tools with spelling heuristics and the embedded
// reference table. It never touches the network.
type Local struct{}

var _ Tools = Local{}

// Pronounce splits the name into rough syllables and stresses the first.
func (Local) Pronounce(_ context.Context, name string) (string, error) {
	parts := splitSyllables(name)
	if len(parts) == 0 {
		return "", ErrEmptyName
	}
	parts[0] = strings.ToUpper(parts[0])
	return strings.Join(parts, "-"), nil
}

// Syllables counts vowel groups, discounting a silent final e.
func (Local) Syllables(_ context.Context, name string) (int, error) {
	parts := splitSyllables(name)
	if len(parts) == 0 {
		return 0, ErrEmptyName
	}
	return len(parts), nil
}

// Popularity looks the name up in the reference table. Unranked names are
// reported as uncommon rather than as an error.
func (Local) Popularity(_ context.Context, name string) (Popularity, error) {
	key := normalize(name)
	if key == "" {
		return Popularity{}, ErrEmptyName
	}
	data, err := loadReference()
	if err != nil {
		return Popularity{}, err
	}
	entry, ok := data.Popularity[key]
	if !ok {
		return Popularity{Trend: "uncommon", Note: "not ranked in the reference table; rarely used"}, nil
	}
	return Popularity{
		Rank:  entry.Rank,
		Trend: entry.Trend,
		Note:  fmt.Sprintf("ranked #%d and %s", entry.Rank, entry.Trend),
	}, nil
}

// Associations returns the name's known references plus ranked names that
// rhyme with it.
func (Local) Associations(_ context.Context, name string) ([]string, error) {
	key := normalize(name)
	if key == "" {
		return nil, ErrEmptyName
	}
	data, err := loadReference()
	if err != nil {
		return nil, err
	}
	out := append([]string(nil), data.Associations[key]...)

	if len(key) >= 3 {
		ending := key[len(key)-3:]
		var rhymes []string
		for other := range data.Popularity {
			if other != key && strings.HasSuffix(other, ending) {
				rhymes = append(rhymes, other)
			}
		}
		sort.Strings(rhymes)
		for _, r := range rhymes {
			out = append(out, "rhymes with "+strings.ToUpper(r[:1])+r[1:])
		}
	}
	return out, nil
}

func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isVowel(r byte) bool {
	return strings.IndexByte("aeiouy", r) >= 0
}

// splitSyllables breaks a name at vowel groups. A single consonant between
// groups starts the next syllable; of two or more, the first closes the
// previous one. A final e after a consonant is silent unless it follows a
// consonant-l ("-ple", "-ble") or is the only vowel.
func splitSyllables(name string) []string {
	word := normalize(name)
	if word == "" {
		return nil
	}
	if !isASCII(word) {
		return []string{word}
	}

	type span struct{ start, end int }
	var groups []span
	for i := 0; i < len(word); {
		if !isVowel(word[i]) {
			i++
			continue
		}
		j := i
		for j < len(word) && isVowel(word[j]) {
			j++
		}
		groups = append(groups, span{i, j})
		i = j
	}
	if len(groups) == 0 {
		return []string{word}
	}

	if n := len(word); len(groups) > 1 && silentFinalE(word) && groups[len(groups)-1].start == n-1 {
		groups = groups[:len(groups)-1]
	}

	var parts []string
	prev := 0
	for i := 0; i+1 < len(groups); i++ {
		between := groups[i+1].start - groups[i].end
		cut := groups[i].end
		if between >= 2 {
			cut++
		}
		parts = append(parts, word[prev:cut])
		prev = cut
	}
	return append(parts, word[prev:])
}

func silentFinalE(word string) bool {
	n := len(word)
	if n < 3 || word[n-1] != 'e' || isVowel(word[n-2]) {
		return false
	}
	if word[n-2] == 'l' && !isVowel(word[n-3]) && word[n-3] != 'l' {
		return false
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
