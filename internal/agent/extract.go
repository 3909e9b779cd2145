package agent

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers a JSON value from model text.
//
// The trimmed text is parsed directly first. If that fails, the substring
// between the first '{' and the last '}' is tried, which recovers objects the
// model wrapped in prose or code fences. If both fail the error from the
// direct parse is returned.
func ExtractJSON(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)

	var raw json.RawMessage
	err := json.Unmarshal([]byte(trimmed), &raw)
	if err == nil {
		return raw, nil
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end <= start {
		return nil, err
	}
	var salvaged json.RawMessage
	if json.Unmarshal([]byte(trimmed[start:end+1]), &salvaged) != nil {
		return nil, err
	}
	return salvaged, nil
}
