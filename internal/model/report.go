package model

// Report is the final human-facing artifact of a run.
type Report struct {
	Summary   string     `json:"summary"`
	Finalists []Finalist `json:"finalists"`
	Combos    []string   `json:"combos"`
	Tradeoffs []string   `json:"tradeoffs"`
	TieBreak  string     `json:"tieBreak"`
	Markdown  string     `json:"markdown,omitempty"`
}
