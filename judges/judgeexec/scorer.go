/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judgeexec

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"chainguard.dev/judgebuilder/completion"
	"chainguard.dev/judgebuilder/judges/labeling"
	"chainguard.dev/judgebuilder/result"
	"github.com/chainguard-dev/clog"
	"github.com/invopop/jsonschema"
)

// Verdict is the structured output a judge produces for one example.
type Verdict struct {
	Label     string `json:"label" jsonschema:"description=The verdict label for this example"`
	Rationale string `json:"rationale,omitempty" jsonschema:"description=Short explanation of the verdict"`
}

// verdictSchema is the JSON schema embedded in every scoring prompt.
var verdictSchema = func() string {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}
	raw, err := json.MarshalIndent(reflector.Reflect(&Verdict{}), "", "  ")
	if err != nil {
		panic(fmt.Sprintf("marshaling verdict schema: %v", err))
	}
	return string(raw)
}()

// Scorer executes judge instructions over examples.
type Scorer struct {
	llm completion.Client
}

// NewScorer creates a Scorer backed by the given completion client.
func NewScorer(llm completion.Client) *Scorer {
	return &Scorer{llm: llm}
}

// Judge evaluates one example under the instruction text and returns the
// full verdict.
func (s *Scorer) Judge(ctx context.Context, instruction string, ex labeling.Example) (Verdict, error) {
	response, err := s.llm.Complete(ctx, systemPrompt(instruction), userPrompt(ex))
	if err != nil {
		return Verdict{}, fmt.Errorf("judge execution: %w", err)
	}
	verdict, err := result.Unmarshal[Verdict](response)
	if err != nil {
		return Verdict{}, fmt.Errorf("parsing judge verdict: %w", err)
	}
	if verdict.Label == "" {
		return Verdict{}, fmt.Errorf("judge verdict has no label")
	}
	clog.FromContext(ctx).With("label", verdict.Label).Debug("scored example")
	return verdict, nil
}

// ScoreExample evaluates one example and returns just the verdict label.
func (s *Scorer) ScoreExample(ctx context.Context, instruction string, ex labeling.Example) (string, error) {
	verdict, err := s.Judge(ctx, instruction, ex)
	if err != nil {
		return "", err
	}
	return verdict.Label, nil
}

func systemPrompt(instruction string) string {
	return fmt.Sprintf(`You are an evaluation judge. Apply the following instruction to the example you are given.

%s

Respond with a single JSON object matching this schema:

%s`, instruction, verdictSchema)
}

func userPrompt(ex labeling.Example) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Input:\n%s\n\nOutput:\n%s\n", ex.Input, ex.Output)
	if ex.Expectation != "" {
		fmt.Fprintf(&sb, "\nExpectation:\n%s\n", ex.Expectation)
	}
	return sb.String()
}
