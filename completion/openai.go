/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// oai implements Client using the OpenAI API.
type oai struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

func newOpenAI(model string, cfg Config) (Client, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("OpenAI API key is required for gpt-* models")
	}
	return &oai{
		client:      openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		model:       model,
		maxTokens:   cfg.maxTokens(),
		temperature: cfg.temperature(),
	}, nil
}

// Complete implements Client.
func (o *oai) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(o.maxTokens),
		Temperature:         openai.Float(o.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
