/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package optimize

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/judgebuilder/completion"
	"chainguard.dev/judgebuilder/judges/alignment"
	"chainguard.dev/judgebuilder/judges/labeling"
	"chainguard.dev/judgebuilder/result"
	"github.com/chainguard-dev/clog"
)

// ClientFactory builds a completion client for a model name. Factories are
// invoked per run so model overrides never leak between requests.
type ClientFactory func(ctx context.Context, model string) (completion.Client, error)

// rewrite is the optimizer model's response shape.
type rewrite struct {
	InstructionText string `json:"instruction_text"`
}

// PromptOptimizer implements alignment.Optimizer with an LLM rewrite pass.
type PromptOptimizer struct {
	defaultModel string
	clients      ClientFactory
}

// NewPromptOptimizer creates a PromptOptimizer that uses defaultModel when a
// run carries no model override.
func NewPromptOptimizer(defaultModel string, clients ClientFactory) *PromptOptimizer {
	return &PromptOptimizer{
		defaultModel: defaultModel,
		clients:      clients,
	}
}

// Optimize implements alignment.Optimizer.
func (p *PromptOptimizer) Optimize(ctx context.Context, req alignment.OptimizeRequest) (alignment.OptimizeResult, error) {
	model := p.defaultModel
	if req.Model != nil && req.Model.Model != "" {
		model = req.Model.Model
	}
	log := clog.FromContext(ctx).With("judge_id", req.JudgeID).With("model", model)

	llm, err := p.clients(ctx, model)
	if err != nil {
		return alignment.OptimizeResult{}, fmt.Errorf("creating optimizer client: %w", err)
	}

	log.InfoContextf(ctx, "optimizing instruction against %d labeled examples", len(req.Examples))
	response, err := llm.Complete(ctx, optimizerSystemPrompt, optimizerUserPrompt(req))
	if err != nil {
		return alignment.OptimizeResult{}, fmt.Errorf("optimizer call: %w", err)
	}
	parsed, err := result.Unmarshal[rewrite](response)
	if err != nil {
		return alignment.OptimizeResult{}, fmt.Errorf("parsing optimizer response: %w", err)
	}
	text := strings.TrimSpace(parsed.InstructionText)
	if text == "" {
		return alignment.OptimizeResult{}, fmt.Errorf("optimizer returned empty instruction text")
	}

	return alignment.OptimizeResult{
		InstructionText: text,
		Metrics: map[string]float64{
			"labeled_examples": float64(len(req.Examples)),
		},
	}, nil
}

const optimizerSystemPrompt = `You optimize the instruction text of an LLM evaluation judge so that, when applied to the examples below, it would reproduce the human reviewers' verdicts.

Preserve the judge's intent and any template variables (such as {{ inputs }} or {{ outputs }}) that appear in the current instruction. Make the criteria explicit enough that the verdicts follow from the instruction alone.

Respond with a single JSON object of the form {"instruction_text": "..."} containing only the rewritten instruction.`

func optimizerUserPrompt(req alignment.OptimizeRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Current instruction:\n%s\n", req.InstructionText)
	for i, ex := range req.Examples {
		fmt.Fprintf(&sb, "\nExample %d:\n%s", i+1, formatExample(ex))
	}
	return sb.String()
}

func formatExample(ex labeling.Example) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Input: %s\nOutput: %s\n", ex.Input, ex.Output)
	if ex.Expectation != "" {
		fmt.Fprintf(&sb, "Expectation: %s\n", ex.Expectation)
	}
	fmt.Fprintf(&sb, "Human verdict: %s\n", ex.HumanLabel)
	return sb.String()
}
