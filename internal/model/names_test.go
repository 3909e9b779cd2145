package model_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

func TestStringListAcceptsStringOrList(t *testing.T) {
	var c model.Candidate
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Iris","lane":"Nature","themeLinks":"flowers"}`), &c))
	assert.Equal(t, model.StringList{"flowers"}, c.ThemeLinks)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Iris","lane":"Nature","themeLinks":["flowers","rainbow"]}`), &c))
	assert.Equal(t, model.StringList{"flowers", "rainbow"}, c.ThemeLinks)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Iris","lane":"Nature","themeLinks":null}`), &c))
	assert.Nil(t, c.ThemeLinks)

	err := json.Unmarshal([]byte(`{"name":"Iris","lane":"Nature","themeLinks":42}`), &c)
	require.Error(t, err)
}

func TestCandidateListBounds(t *testing.T) {
	mk := func(n int) *model.CandidateList {
		l := &model.CandidateList{}
		for i := range n {
			l.Candidates = append(l.Candidates, model.Candidate{Name: fmt.Sprintf("N%d", i), Lane: "Classic"})
		}
		return l
	}
	assert.Error(t, mk(model.MinCandidates-1).Validate())
	assert.NoError(t, mk(model.MinCandidates).Validate())
	assert.NoError(t, mk(model.MaxCandidates).Validate())
	assert.Error(t, mk(model.MaxCandidates+1).Validate())

	l := mk(10)
	l.Candidates[3].Lane = ""
	err := l.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidates[3]")
}

func TestCardValidate(t *testing.T) {
	good := model.Card{Name: "Ava", Pronunciation: "AY-vuh", Syllables: 2, Meaning: "bird"}
	assert.NoError(t, good.Validate())

	noSyll := good
	noSyll.Syllables = 0
	assert.Error(t, noSyll.Validate())

	noMeaning := good
	noMeaning.Meaning = " "
	assert.Error(t, noMeaning.Validate())
}

func TestSelectionDraftHydrate(t *testing.T) {
	cards := []model.Card{{Name: "Ava"}, {Name: "Iris"}, {Name: "June"}}
	var draft model.SelectionDraft
	require.NoError(t, json.Unmarshal([]byte(`{
		"finalists":[{"name":"iris","justification":"soft","combo":"Iris June"}],
		"nearMisses":[{"name":"June","reason":"too short"}]
	}`), &draft))
	require.NoError(t, draft.Validate())

	sel, err := draft.Hydrate(cards)
	require.NoError(t, err)
	require.Len(t, sel.Finalists, 1)
	assert.Equal(t, "Iris", sel.Finalists[0].Card.Name)
	assert.Equal(t, "Iris June", sel.Finalists[0].Combo)
	require.Len(t, sel.NearMisses, 1)
	assert.Equal(t, "too short", sel.NearMisses[0].Reason)

	require.NoError(t, json.Unmarshal([]byte(`{"finalists":[{"name":"Zelda","justification":"x"}]}`), &draft))
	_, err = draft.Hydrate(cards)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Zelda")
}

func TestSelectionDraftValidate(t *testing.T) {
	var empty model.SelectionDraft
	assert.Error(t, empty.Validate())

	var noJust model.SelectionDraft
	require.NoError(t, json.Unmarshal([]byte(`{"finalists":[{"name":"Ava"}]}`), &noJust))
	assert.Error(t, noJust.Validate())
}

func TestProfileValidate(t *testing.T) {
	p := model.Profile{Preferences: model.Preferences{Gender: "girl", LengthPreference: "short"}}
	assert.NoError(t, p.Validate())

	p.Preferences.Gender = "either"
	assert.Error(t, p.Validate())

	p.Preferences.Gender = "boy"
	p.Family.RequiredInitials = []string{"AB"}
	assert.Error(t, p.Validate())
	assert.True(t, p.IsBoy())
}
