/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result extracts structured payloads from model text responses.
// Models frequently wrap JSON in markdown code fences or pad it with prose;
// these helpers normalize that before unmarshaling.
package result

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the JSON content of a model response. It prefers the
// first ```json fenced block; failing that it strips stray fences and
// whitespace and returns the remainder.
func ExtractJSON(responseText string) string {
	lines := strings.Split(responseText, "\n")
	var block []string
	inBlock := false
	for _, line := range lines {
		switch {
		case !inBlock && strings.TrimSpace(line) == "```json":
			inBlock = true
		case inBlock && strings.TrimSpace(line) == "```":
			return strings.TrimSpace(strings.Join(block, "\n"))
		case inBlock:
			block = append(block, line)
		}
	}
	if inBlock {
		// Unterminated fence; use what we collected.
		return strings.TrimSpace(strings.Join(block, "\n"))
	}

	text := strings.TrimSpace(responseText)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Unmarshal extracts the JSON content of a model response and decodes it
// into T.
func Unmarshal[T any](responseText string) (T, error) {
	var out T
	payload := ExtractJSON(responseText)
	if payload == "" {
		return out, fmt.Errorf("no JSON content in response")
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, fmt.Errorf("parsing response JSON: %w", err)
	}
	return out, nil
}
