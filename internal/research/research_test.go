package research

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSyllablesAndPronunciation(t *testing.T) {
	tests := []struct {
		name      string
		syllables int
		pron      string
	}{
		{"Iris", 2, "I-ris"},
		{"Ava", 2, "A-va"},
		{"Grace", 1, "GRACE"},
		{"Maple", 2, "MAP-le"},
		{"Charlotte", 2, "CHAR-lotte"},
		{"Isabelle", 3, "I-sa-belle"},
		{"Eleanor", 3, "E-lea-nor"},
		{"Lynn", 1, "LYNN"},
		{"Mary-Kate", 3, "MA-ry-kate"},
	}
	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Local{}.Syllables(ctx, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.syllables, n)

			p, err := Local{}.Pronounce(ctx, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.pron, p)
		})
	}
}

func TestLocalEmptyName(t *testing.T) {
	ctx := context.Background()
	_, err := Local{}.Syllables(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = Local{}.Pronounce(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = Local{}.Popularity(ctx, "-")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = Local{}.Associations(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestLocalPopularity(t *testing.T) {
	ctx := context.Background()

	p, err := Local{}.Popularity(ctx, "Charlotte")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Rank)
	assert.Equal(t, "steady", p.Trend)
	assert.Equal(t, "ranked #3 and steady", p.Note)

	p, err = Local{}.Popularity(ctx, "Zebulon")
	require.NoError(t, err)
	assert.Zero(t, p.Rank)
	assert.Equal(t, "uncommon", p.Trend)
}

func TestLocalAssociations(t *testing.T) {
	a, err := Local{}.Associations(context.Background(), "iris")
	require.NoError(t, err)
	assert.Contains(t, a, "Iris Murdoch")

	a, err = Local{}.Associations(context.Background(), "Stella")
	require.NoError(t, err)
	assert.Contains(t, a, "A Streetcar Named Desire")
}

type failingTools struct {
	Local
	failSyllables bool
	failAll       bool
}

var errLookup = errors.New("lookup offline")

func (f failingTools) Syllables(ctx context.Context, name string) (int, error) {
	if f.failSyllables || f.failAll {
		return 0, errLookup
	}
	return f.Local.Syllables(ctx, name)
}

func (f failingTools) Popularity(ctx context.Context, name string) (Popularity, error) {
	if f.failAll {
		return Popularity{}, errLookup
	}
	return f.Local.Popularity(ctx, name)
}

func (f failingTools) Pronounce(ctx context.Context, name string) (string, error) {
	if f.failAll {
		return "", errLookup
	}
	return f.Local.Pronounce(ctx, name)
}

func (f failingTools) Associations(ctx context.Context, name string) ([]string, error) {
	if f.failAll {
		return nil, errLookup
	}
	return f.Local.Associations(ctx, name)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBridgeSnapshot(t *testing.T) {
	snap := NewBridge(Local{}, discardLogger()).Snapshot(context.Background(), "Hazel")
	assert.Equal(t, "Hazel", snap.Name)
	assert.Equal(t, "HA-zel", snap.Pronunciation)
	assert.Equal(t, 2, snap.Syllables)
	require.NotNil(t, snap.Popularity)
	assert.Equal(t, 26, snap.Popularity.Rank)
	assert.Contains(t, snap.Associations, "hazel tree")
	assert.Empty(t, snap.Errors)
}

func TestBridgeSnapshotRecordsFailures(t *testing.T) {
	snap := NewBridge(failingTools{failSyllables: true}, discardLogger()).Snapshot(context.Background(), "Hazel")
	assert.Zero(t, snap.Syllables)
	assert.Equal(t, "HA-zel", snap.Pronunciation)
	assert.Equal(t, map[string]string{LookupSyllables: "lookup offline"}, snap.Errors)

	snap = NewBridge(failingTools{failAll: true}, discardLogger()).Snapshot(context.Background(), "Hazel")
	assert.Len(t, snap.Errors, 4)
	assert.Nil(t, snap.Popularity)
}
