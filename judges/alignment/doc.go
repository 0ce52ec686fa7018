/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package alignment drives judge instruction optimization against human
// feedback.
//
// An alignment run takes a judge's current instruction text and its labeled
// examples, submits them to an instruction optimizer, and on success appends
// the rewritten instruction as the judge's next version. Runs are serialized
// per judge: at most one may be in flight for a given judge ID at a time.
//
// # Timeout semantics
//
// The optimizer can take minutes, longer than any sensible transport
// deadline. Once submitted, a run cannot be cancelled, so the runner never
// abandons one: when the caller's deadline expires first, Run returns a job
// snapshot in StatusUnknownTimeout together with ErrTimeoutIndeterminate,
// while the run continues in the background and records its real outcome
// when the optimizer returns. The new version, if any, appears out of band;
// callers resolve the indeterminate state by polling the version store (see
// the poller subpackage) rather than by resubmitting.
//
// StatusUnknownTimeout is therefore a caller-observed state only. The
// runner's own job record stays RUNNING until the background completion
// lands, which is also what holds the per-judge guard and keeps a second
// Run from starting while the first is still alive server-side.
package alignment
