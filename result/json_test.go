/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result_test

import (
	"testing"

	"chainguard.dev/judgebuilder/result"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{{
		name: "bare json",
		in:   `{"options": ["Pass", "Fail"]}`,
		want: `{"options": ["Pass", "Fail"]}`,
	}, {
		name: "fenced block",
		in:   "Here you go:\n```json\n{\"label\": \"pass\"}\n```\nDone.",
		want: `{"label": "pass"}`,
	}, {
		name: "fence without language marker",
		in:   "```\n{\"a\": 1}\n```",
		want: `{"a": 1}`,
	}, {
		name: "unterminated fence",
		in:   "```json\n{\"a\": 1}",
		want: `{"a": 1}`,
	}, {
		name: "surrounding whitespace",
		in:   "\n\n  {\"a\": 1}  \n",
		want: `{"a": 1}`,
	}}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := result.ExtractJSON(tc.in); got != tc.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()
	type analysis struct {
		Options []string `json:"options"`
	}

	got, err := result.Unmarshal[analysis]("```json\n{\"options\": [\"Yes\", \"No\"]}\n```")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(analysis{Options: []string{"Yes", "No"}}, got))

	_, err = result.Unmarshal[analysis]("not json at all")
	assert.Error(t, err, "non-JSON input should not parse")

	_, err = result.Unmarshal[analysis]("")
	assert.Error(t, err, "empty input should not parse")
}
