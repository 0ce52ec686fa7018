/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/vertex"
)

// claude implements Client using Claude via Vertex AI.
type claude struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

func newClaude(ctx context.Context, model string, cfg Config) (Client, error) {
	client := anthropic.NewClient(
		vertex.WithGoogleAuth(ctx, cfg.Region, cfg.ProjectID),
	)
	return &claude{
		client:      client,
		model:       model,
		maxTokens:   cfg.maxTokens(),
		temperature: cfg.temperature(),
	}, nil
}

// Complete implements Client.
func (c *claude) Complete(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(user),
			},
		}},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude completion: %w", err)
	}

	var sb strings.Builder
	for _, content := range msg.Content {
		if content.Type == "text" {
			sb.WriteString(content.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("claude completion: no text content in response")
	}
	return sb.String(), nil
}
