/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package alignment

import (
	"context"
	"errors"
	"maps"
	"time"

	"chainguard.dev/judgebuilder/judges/labeling"
	"chainguard.dev/judgebuilder/judges/versionstore"
)

var (
	// ErrAlreadyRunning is returned when an alignment run is requested for
	// a judge that already has one in flight.
	ErrAlreadyRunning = errors.New("alignment already running for judge")

	// ErrInsufficientData is returned when a judge has too few labeled
	// examples to align against.
	ErrInsufficientData = errors.New("insufficient labeled examples")

	// ErrOptimizerFailure wraps an error returned by the optimizer itself.
	ErrOptimizerFailure = errors.New("optimizer failure")

	// ErrTimeoutIndeterminate is returned when the transport deadline
	// expired before the optimizer responded. The run may still succeed
	// server-side; the outcome must be resolved by polling, not retried.
	ErrTimeoutIndeterminate = errors.New("alignment outcome indeterminate: transport deadline exceeded")

	// ErrNoJob is returned when no alignment has been requested for a judge.
	ErrNoJob = errors.New("no alignment job for judge")
)

// Status is the lifecycle state of an alignment job.
type Status string

const (
	StatusRunning        Status = "RUNNING"
	StatusSucceeded      Status = "SUCCEEDED"
	StatusFailed         Status = "FAILED"
	StatusUnknownTimeout Status = "UNKNOWN_TIMEOUT"
)

// Job describes one alignment attempt for a judge.
type Job struct {
	JudgeID            string             `json:"judge_id"`
	RequestedAt        time.Time          `json:"requested_at"`
	Status             Status             `json:"status"`
	PriorVersion       int                `json:"prior_version"`
	ResultingVersion   int                `json:"resulting_version,omitempty"`
	ImprovementMetrics map[string]float64 `json:"improvement_metrics,omitempty"`
	Error              string             `json:"error,omitempty"`
}

func (j Job) clone() Job {
	j.ImprovementMetrics = maps.Clone(j.ImprovementMetrics)
	return j
}

// ExampleStore supplies the human-labeled examples an alignment run
// optimizes against.
type ExampleStore interface {
	LabeledExamples(ctx context.Context, judgeID string) ([]labeling.Example, error)
}

// OptimizeRequest carries everything the optimizer needs for one run.
type OptimizeRequest struct {
	JudgeID         string
	InstructionText string
	Examples        []labeling.Example
	Model           *versionstore.ModelConfig
}

// OptimizeResult is a successful optimizer response.
type OptimizeResult struct {
	InstructionText string
	Metrics         map[string]float64
}

// Optimizer rewrites instruction text to better match labeled examples. It
// may take minutes and cannot be cancelled once the work is submitted.
type Optimizer interface {
	Optimize(ctx context.Context, req OptimizeRequest) (OptimizeResult, error)
}
