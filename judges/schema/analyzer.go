/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/judgebuilder/completion"
	"chainguard.dev/judgebuilder/judges/labeling"
	"chainguard.dev/judgebuilder/lookupcache"
	"chainguard.dev/judgebuilder/result"
	"github.com/chainguard-dev/clog"
)

// DefaultOptions is the fallback verdict scheme when analysis cannot
// determine one.
var DefaultOptions = []string{"Pass", "Fail"}

const (
	// DefaultTTL keeps an analysis fresh across one labeling session.
	DefaultTTL = 30 * time.Minute

	// maxSampleExamples bounds how many traces are quoted in the prompt.
	maxSampleExamples = 5
)

// analysis is the model's response shape.
type analysis struct {
	Options []string `json:"options"`
}

// Analyzer derives categorical verdict options from instruction text.
type Analyzer struct {
	llm   completion.Client
	cache *lookupcache.Cache[string, []string]
}

// NewAnalyzer creates an Analyzer whose results stay cached for ttl. A
// non-positive ttl uses DefaultTTL.
func NewAnalyzer(llm completion.Client, ttl time.Duration) *Analyzer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Analyzer{
		llm:   llm,
		cache: lookupcache.New[string, []string](ttl, 64),
	}
}

// CategoricalOptions returns the verdict labels the instruction text calls
// for, cached per judge and instruction revision.
func (a *Analyzer) CategoricalOptions(ctx context.Context, judgeID, instruction string, examples []labeling.Example) ([]string, error) {
	return a.cache.GetOrCompute(ctx, cacheKey(judgeID, instruction), func(ctx context.Context) ([]string, error) {
		return a.analyze(ctx, instruction, examples), nil
	})
}

// ForceRefresh recomputes the analysis regardless of cache freshness.
func (a *Analyzer) ForceRefresh(ctx context.Context, judgeID, instruction string, examples []labeling.Example) ([]string, error) {
	return a.cache.ForceRefresh(ctx, cacheKey(judgeID, instruction), func(ctx context.Context) ([]string, error) {
		return a.analyze(ctx, instruction, examples), nil
	})
}

// analyze always returns a usable option set. Failures fall back to
// DefaultOptions, which the cache then holds like any other result so a
// flaky model is not re-asked on every page load.
func (a *Analyzer) analyze(ctx context.Context, instruction string, examples []labeling.Example) []string {
	log := clog.FromContext(ctx)
	response, err := a.llm.Complete(ctx, analysisSystemPrompt, analysisUserPrompt(instruction, examples))
	if err != nil {
		log.Warnf("schema analysis failed, using default options: %v", err)
		return DefaultOptions
	}
	parsed, err := result.Unmarshal[analysis](response)
	if err != nil {
		log.Warnf("unparseable schema analysis, using default options: %v", err)
		return DefaultOptions
	}
	options := dedupe(parsed.Options)
	if len(options) < 2 {
		log.Warnf("schema analysis produced %d options, using defaults", len(options))
		return DefaultOptions
	}
	return options
}

func cacheKey(judgeID, instruction string) string {
	sum := sha256.Sum256([]byte(instruction))
	return judgeID + ":" + hex.EncodeToString(sum[:])[:8]
}

func dedupe(options []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" || seen[strings.ToLower(o)] {
			continue
		}
		seen[strings.ToLower(o)] = true
		out = append(out, o)
	}
	return out
}

const analysisSystemPrompt = `You analyze LLM judge instructions to determine the categorical verdict labels the judge should emit.

Respond with a single JSON object of the form {"options": ["...", "..."]} listing each distinct verdict label the instruction calls for, in the order a reviewer would expect to see them. If the instruction implies a simple pass/fail check, return {"options": ["Pass", "Fail"]}.`

func analysisUserPrompt(instruction string, examples []labeling.Example) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Judge instruction:\n%s\n", instruction)
	if len(examples) > maxSampleExamples {
		examples = examples[:maxSampleExamples]
	}
	for i, ex := range examples {
		fmt.Fprintf(&sb, "\nSample trace %d:\nInput: %s\nOutput: %s\n", i+1, ex.Input, ex.Output)
	}
	return sb.String()
}
