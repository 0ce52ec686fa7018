/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package labeling stores the human-labeled examples that drive judge
// alignment. Each example pairs a model interaction with an optional human
// verdict; only labeled examples count toward alignment eligibility.
package labeling
