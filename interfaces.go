package namazing

import "context"

// ModelClient sends one chat-completion request to a text-generation model
// and returns the raw assistant text. When provided via WithModelClient it
// replaces the provider selected by NAMAZING_MODEL_PROVIDER.
type ModelClient interface {
	Complete(ctx context.Context, req ModelRequest) (string, error)
}

// ModelRequest is a single chat-completion call.
type ModelRequest struct {
	Model       string
	System      string
	Messages    []ModelMessage
	JSON        bool // the caller expects a JSON object back
	Temperature float64
}

// ModelMessage is one turn of the conversation. Role is "user" or
// "assistant".
type ModelMessage struct {
	Role    string
	Content string
}

// ResearchTools are the per-name lookups used by the researcher stage.
// When provided via WithResearchTools they replace the built-in local
// heuristics. Each lookup may fail independently; a failure is recorded on
// the card and never fails the run.
type ResearchTools interface {
	Pronounce(ctx context.Context, name string) (string, error)
	Syllables(ctx context.Context, name string) (int, error)
	Popularity(ctx context.Context, name string) (Popularity, error)
	Associations(ctx context.Context, name string) ([]string, error)
}

// Popularity is a name's standing in a popularity table.
type Popularity struct {
	Rank  int    // 0 when the name is not ranked
	Trend string // e.g. "rising", "steady", "falling"
	Note  string // one human-readable line
}
