/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judgeexec runs a judge's instruction text against individual
// examples and parses the verdicts.
//
// The instruction text becomes the system prompt, the example becomes the
// user prompt, and the model is asked for a JSON verdict matching a schema
// derived from the Verdict type. Comparison and ad hoc judge testing both
// go through the same Scorer so a version behaves identically in either
// path.
package judgeexec
