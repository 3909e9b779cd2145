package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

// ---- ParseMode -----------------------------------------------------------

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Mode
		wantErr bool
	}{
		{"", model.ModeSerial, false},
		{"serial", model.ModeSerial, false},
		{"parallel", model.ModeParallel, false},
		{"Parallel", "", true},
		{"turbo", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := model.ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---- StartRunRequest -----------------------------------------------------

func TestStartRunRequest_HappyPath(t *testing.T) {
	mode, err := model.StartRunRequest{Brief: "a girl, surname Smith", Mode: "parallel"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, model.ModeParallel, mode)
}

func TestStartRunRequest_EmptyBrief(t *testing.T) {
	_, err := model.StartRunRequest{Brief: "   "}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brief")
}

func TestStartRunRequest_BriefOverMax(t *testing.T) {
	_, err := model.StartRunRequest{Brief: strings.Repeat("x", model.MaxBriefLen+1)}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum length")
}

func TestStartRunRequest_BadMode(t *testing.T) {
	_, err := model.StartRunRequest{Brief: "ok", Mode: "fast"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

// ---- RunStatus -----------------------------------------------------------

func TestRunStatusTransitions(t *testing.T) {
	assert.True(t, model.RunStatusPending.CanTransition(model.RunStatusRunning))
	assert.False(t, model.RunStatusPending.CanTransition(model.RunStatusCompleted))
	assert.True(t, model.RunStatusRunning.CanTransition(model.RunStatusCompleted))
	assert.True(t, model.RunStatusRunning.CanTransition(model.RunStatusFailed))
	assert.False(t, model.RunStatusCompleted.CanTransition(model.RunStatusFailed))
	assert.False(t, model.RunStatusFailed.CanTransition(model.RunStatusRunning))

	assert.True(t, model.RunStatusCompleted.Terminal())
	assert.True(t, model.RunStatusFailed.Terminal())
	assert.False(t, model.RunStatusRunning.Terminal())
}
