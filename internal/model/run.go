// Package model defines the core domain types for namazing.
//
// Types here are the contracts shared by the pipeline, the run registry and
// the transports. Every type produced by a model-backed stage carries a
// Validate method; a value that fails Validate is never committed to a run.
package model

import (
	"fmt"
	"time"
)

// RunStatus represents the lifecycle state of a run.
//
//	pending -> running -> completed | failed
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// CanTransition reports whether moving from s to next is legal.
func (s RunStatus) CanTransition(next RunStatus) bool {
	switch s {
	case RunStatusPending:
		return next == RunStatusRunning
	case RunStatusRunning:
		return next == RunStatusCompleted || next == RunStatusFailed
	default:
		return false
	}
}

// Mode selects how a run trades latency for cost.
type Mode string

const (
	// ModeSerial caps the candidate list and researches one name at a time.
	ModeSerial Mode = "serial"
	// ModeParallel keeps every candidate and researches them concurrently.
	ModeParallel Mode = "parallel"
)

// ParseMode converts a caller-supplied string into a Mode. The empty string
// maps to ModeSerial.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeSerial:
		return ModeSerial, nil
	case ModeParallel:
		return ModeParallel, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeSerial, ModeParallel)
	}
}

// Run is one end-to-end execution of the pipeline for a single brief.
// Values handed out by the registry are snapshots: mutating them has no
// effect on the live run.
type Run struct {
	ID          string     `json:"id"`
	Brief       string     `json:"brief"`
	Mode        Mode       `json:"mode"`
	Status      RunStatus  `json:"status"`
	Events      []Event    `json:"events"`
	Result      *Result    `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Result is the terminal artifact set of a completed run.
type Result struct {
	Profile    Profile     `json:"profile"`
	Candidates []Candidate `json:"candidates"`
	Cards      []Card      `json:"cards"`
	Selection  Selection   `json:"selection"`
	Report     Report      `json:"report"`
}
