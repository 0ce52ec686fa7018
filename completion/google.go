/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package completion

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// google implements Client using Google Gemini.
type google struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

func newGoogle(ctx context.Context, model string, cfg Config) (Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Google AI client: %w", err)
	}
	return &google{
		client:      client,
		model:       model,
		maxTokens:   int32(cfg.maxTokens()),
		temperature: float32(cfg.temperature()),
	}, nil
}

// Complete implements Client.
func (g *google) Complete(ctx context.Context, system, user string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), config)
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini completion: no candidates in response")
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini completion: no text content in response")
	}
	return sb.String(), nil
}
