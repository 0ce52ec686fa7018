/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package completion

import (
	"context"
	"fmt"
	"strings"
)

// Client produces one completion for a system/user prompt pair.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config carries provider credentials and generation settings.
type Config struct {
	// ProjectID and Region locate the Vertex AI project used for Claude
	// and Gemini models.
	ProjectID string
	Region    string

	// OpenAIAPIKey authenticates gpt-* models.
	OpenAIAPIKey string

	// MaxTokens caps the completion length. Zero means 8192.
	MaxTokens int64

	// Temperature defaults to 0.1 when unset for consistent verdicts.
	Temperature *float64
}

func (c Config) maxTokens() int64 {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 8192
}

func (c Config) temperature() float64 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return 0.1
}

// New creates a Client for the given model name.
func New(ctx context.Context, model string, cfg Config) (Client, error) {
	modelLower := strings.ToLower(model)
	switch {
	case strings.HasPrefix(modelLower, "claude-"):
		return newClaude(ctx, model, cfg)
	case strings.HasPrefix(modelLower, "gemini-"):
		return newGoogle(ctx, model, cfg)
	case strings.HasPrefix(modelLower, "gpt-"):
		return newOpenAI(model, cfg)
	default:
		return nil, fmt.Errorf("unsupported model: %s (expected claude-*, gemini-* or gpt-*)", model)
	}
}
