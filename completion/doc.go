/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package completion provides a minimal single-shot text completion client
// over multiple model providers.
//
// The model name selects the provider implementation:
//   - Models starting with "claude-" use Anthropic's SDK via Vertex AI
//   - Models starting with "gemini-" use Google's Generative AI SDK
//   - Models starting with "gpt-" use the OpenAI API
//
// Judge scoring, schema analysis, and instruction optimization all speak
// through this one interface, so any of them can target any provider a
// serving endpoint exposes.
package completion
