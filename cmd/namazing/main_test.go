package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBrief(t *testing.T) {
	file := filepath.Join(t.TempDir(), "brief.txt")
	require.NoError(t, os.WriteFile(file, []byte("  Surname: Lee.\n"), 0o600))

	tests := []struct {
		name    string
		args    []string
		file    string
		stdin   string
		want    string
		wantErr string
	}{
		{name: "args are joined", args: []string{"Surname:", "Lee."}, want: "Surname: Lee."},
		{name: "file", file: file, want: "Surname: Lee."},
		{name: "stdin", file: "-", stdin: "A girl, surname Smith.\n", want: "A girl, surname Smith."},
		{name: "both", args: []string{"x"}, file: file, wantErr: "not both"},
		{name: "missing file", file: filepath.Join(t.TempDir(), "nope.txt"), wantErr: "read brief"},
		{name: "empty", args: []string{"  "}, wantErr: "a brief is required"},
		{name: "nothing", wantErr: "a brief is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveBrief(tt.args, tt.file, strings.NewReader(tt.stdin))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NAMAZING_MODEL_PROVIDER", "auto")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("NAMAZING_LOG_LEVEL", "error")
}

func TestRunCommandPrintsEveryEvent(t *testing.T) {
	isolateEnv(t)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &stdout, &stderr)
	cmd.SetArgs([]string{"run", "--stub", "--mode", "parallel",
		"We're expecting a girl! Our surname is Smith and her big sister is Ava."})
	require.NoError(t, cmd.Execute())

	var kinds []string
	sc := bufio.NewScanner(&stdout)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var e struct {
			Kind  string `json:"t"`
			RunID string `json:"runId"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		require.NotEmpty(t, e.RunID)
		kinds = append(kinds, e.Kind)
	}
	require.NoError(t, sc.Err())
	require.NotEmpty(t, kinds)
	assert.Equal(t, "activity", kinds[0])
	assert.Equal(t, "result", kinds[len(kinds)-1])
	assert.NotContains(t, kinds, "error")
}

func TestRunCommandRejectsBadMode(t *testing.T) {
	isolateEnv(t)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &stdout, &stderr)
	cmd.SetArgs([]string{"run", "--stub", "--mode", "turbo", "Surname: Lee."})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Empty(t, stdout.String())
}

func TestRunCommandRequiresBrief(t *testing.T) {
	isolateEnv(t)

	cmd := newRootCmd(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--stub"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a brief is required")
}
