/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package poller implements bounded exponential-backoff polling for results
// that materialize out of band, such as a new judge version appearing after
// an alignment run outlives its transport deadline.
//
// Unlike a retry loop for flaky calls, the delay schedule here is part of
// the caller-visible contract: a poll with base delay B and N attempts
// probes immediately, then waits B, 2B, 4B, ... between the remaining
// attempts, giving a deterministic worst-case wall time. There is no jitter.
package poller
