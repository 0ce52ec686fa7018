/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package optimize rewrites judge instruction text to better agree with
// human-labeled examples.
//
// The optimizer presents the current instruction together with every labeled
// example to a model and asks for a rewritten instruction that would have
// produced the human verdicts. The model is chosen per run: an explicit
// override on the request wins, otherwise the configured default is used,
// so two concurrent runs can target different optimizer backends without
// sharing any mutable configuration.
package optimize
