/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema infers the categorical verdict options a judge's
// instruction text implies, for rendering label pickers and validating
// human feedback.
//
// Inference asks a model to read the instruction plus a sample of traces,
// which is slow and costly, so results are cached per judge and instruction
// for long enough to outlive a labeling session. When inference fails or
// produces nothing usable, analysis falls back to the binary Pass/Fail
// scheme rather than erroring; a verdict picker with defaults beats a
// broken labeling page.
package schema
