// Package research bundles the per-name lookups used while researching a
// candidate: pronunciation, syllable count, popularity and associations.
//
// Tools is the injected capability. Local is the default implementation,
// built from heuristics and an embedded reference table. Bridge fans the four
// lookups out concurrently and folds them into one Snapshot; a failed lookup
// is recorded in the snapshot and never fails the whole call.
package research

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyName is returned by every lookup when the name is blank.
var ErrEmptyName = errors.New("research: empty name")

// Popularity is a name's standing in the reference table.
type Popularity struct {
	Rank  int    `json:"rank,omitempty"` // 0 when the name is not ranked
	Trend string `json:"trend"`
	Note  string `json:"note"`
}

// Tools are four independent, side-effect-free lookups keyed by name.
type Tools interface {
	Pronounce(ctx context.Context, name string) (string, error)
	Syllables(ctx context.Context, name string) (int, error)
	Popularity(ctx context.Context, name string) (Popularity, error)
	Associations(ctx context.Context, name string) ([]string, error)
}

// Lookup names used as keys in Snapshot.Errors.
const (
	LookupPronunciation = "pronunciation"
	LookupSyllables     = "syllables"
	LookupPopularity    = "popularity"
	LookupAssociations  = "associations"
)

// Snapshot is the combined result of the four lookups for one name.
type Snapshot struct {
	Name          string            `json:"name"`
	Pronunciation string            `json:"pronunciation,omitempty"`
	Syllables     int               `json:"syllables,omitempty"`
	Popularity    *Popularity       `json:"popularity,omitempty"`
	Associations  []string          `json:"associations,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
}

// Bridge runs the lookups for one name concurrently.
type Bridge struct {
	tools  Tools
	logger *slog.Logger
}

// NewBridge creates a bridge over tools.
func NewBridge(tools Tools, logger *slog.Logger) *Bridge {
	return &Bridge{tools: tools, logger: logger}
}

// Snapshot runs all four lookups and returns whatever succeeded.
func (b *Bridge) Snapshot(ctx context.Context, name string) Snapshot {
	snap := Snapshot{Name: name}

	var mu sync.Mutex
	fail := func(lookup string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if snap.Errors == nil {
			snap.Errors = make(map[string]string)
		}
		snap.Errors[lookup] = err.Error()
		b.logger.Debug("research: lookup failed", "candidate", name, "lookup", lookup, "error", err)
	}

	// Each goroutine writes a distinct field; only Errors is shared.
	var g errgroup.Group
	g.Go(func() error {
		p, err := b.tools.Pronounce(ctx, name)
		if err != nil {
			fail(LookupPronunciation, err)
			return nil
		}
		snap.Pronunciation = p
		return nil
	})
	g.Go(func() error {
		n, err := b.tools.Syllables(ctx, name)
		if err != nil {
			fail(LookupSyllables, err)
			return nil
		}
		snap.Syllables = n
		return nil
	})
	g.Go(func() error {
		p, err := b.tools.Popularity(ctx, name)
		if err != nil {
			fail(LookupPopularity, err)
			return nil
		}
		snap.Popularity = &p
		return nil
	})
	g.Go(func() error {
		a, err := b.tools.Associations(ctx, name)
		if err != nil {
			fail(LookupAssociations, err)
			return nil
		}
		snap.Associations = a
		return nil
	})
	_ = g.Wait()

	return snap
}
