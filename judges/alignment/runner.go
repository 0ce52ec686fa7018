/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package alignment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chainguard.dev/judgebuilder/judges/versionstore"
	"github.com/chainguard-dev/clog"
)

const (
	// DefaultTransportDeadline is how long Run waits for the optimizer
	// before reporting an indeterminate timeout.
	DefaultTransportDeadline = 55 * time.Second

	// DefaultMinLabeledExamples is the floor below which alignment refuses
	// to run. Optimizing against a handful of labels overfits badly.
	DefaultMinLabeledExamples = 10
)

// Option configures a Runner.
type Option func(*Runner)

// WithTransportDeadline overrides how long Run waits before returning an
// indeterminate timeout.
func WithTransportDeadline(d time.Duration) Option {
	return func(r *Runner) {
		r.deadline = d
	}
}

// WithMinLabeledExamples overrides the labeled-example floor.
func WithMinLabeledExamples(n int) Option {
	return func(r *Runner) {
		r.minLabeled = n
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// Runner executes alignment jobs, at most one in flight per judge.
type Runner struct {
	store      *versionstore.Store
	examples   ExampleStore
	optimizer  Optimizer
	deadline   time.Duration
	minLabeled int
	now        func() time.Time

	mu   sync.Mutex
	jobs map[string]*Job
}

// NewRunner creates a Runner backed by the given store, example source, and
// optimizer.
func NewRunner(store *versionstore.Store, examples ExampleStore, optimizer Optimizer, opts ...Option) *Runner {
	r := &Runner{
		store:      store,
		examples:   examples,
		optimizer:  optimizer,
		deadline:   DefaultTransportDeadline,
		minLabeled: DefaultMinLabeledExamples,
		now:        time.Now,
		jobs:       map[string]*Job{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives one alignment attempt for the judge and reports its outcome.
//
// On success the returned job is SUCCEEDED and its ResultingVersion has been
// appended to the version store. On an optimizer error the job is FAILED and
// the error wraps ErrOptimizerFailure. If the transport deadline expires
// first, Run returns a caller-side UNKNOWN_TIMEOUT snapshot along with
// ErrTimeoutIndeterminate while the run keeps going in the background; its
// real outcome is recorded when the optimizer eventually returns.
func (r *Runner) Run(ctx context.Context, judgeID string, model *versionstore.ModelConfig) (Job, error) {
	log := clog.FromContext(ctx).With("judge_id", judgeID)

	cur, err := r.store.Current(ctx, judgeID)
	if err != nil {
		return Job{}, err
	}
	examples, err := r.examples.LabeledExamples(ctx, judgeID)
	if err != nil {
		return Job{}, fmt.Errorf("fetching labeled examples: %w", err)
	}
	if len(examples) < r.minLabeled {
		return Job{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(examples), r.minLabeled)
	}

	job, err := r.acquire(judgeID, cur.Version)
	if err != nil {
		return Job{}, err
	}
	log.InfoContextf(ctx, "starting alignment from version %d with %d labeled examples", cur.Version, len(examples))

	// The optimizer is not cancellable once submitted, so the background
	// call must outlive both the transport deadline and the caller's
	// context. The completion path below records the outcome and releases
	// the per-judge guard whenever the call does return.
	bg := context.WithoutCancel(ctx)
	done := make(chan Job, 1)
	go func() {
		done <- r.complete(bg, judgeID, model, OptimizeRequest{
			JudgeID:         judgeID,
			InstructionText: cur.InstructionText,
			Examples:        examples,
			Model:           model,
		})
	}()

	timer := time.NewTimer(r.deadline)
	defer timer.Stop()
	select {
	case final := <-done:
		if final.Status == StatusFailed {
			return final, fmt.Errorf("%w: %s", ErrOptimizerFailure, final.Error)
		}
		return final, nil
	case <-timer.C:
	case <-ctx.Done():
	}

	// Caller-observed timeout. The stored job stays RUNNING until the
	// background completion lands.
	log.InfoContext(ctx, "transport deadline exceeded, alignment continues server-side")
	snapshot := job.clone()
	snapshot.Status = StatusUnknownTimeout
	return snapshot, ErrTimeoutIndeterminate
}

// Job returns a snapshot of the most recent alignment job for the judge.
func (r *Runner) Job(judgeID string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[judgeID]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNoJob, judgeID)
	}
	return job.clone(), nil
}

// acquire installs a RUNNING job record for the judge, enforcing the
// at-most-one-running guard.
func (r *Runner) acquire(judgeID string, priorVersion int) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.jobs[judgeID]; ok && existing.Status == StatusRunning {
		return Job{}, fmt.Errorf("%w: %s", ErrAlreadyRunning, judgeID)
	}
	job := &Job{
		JudgeID:      judgeID,
		RequestedAt:  r.now().UTC(),
		Status:       StatusRunning,
		PriorVersion: priorVersion,
	}
	r.jobs[judgeID] = job
	return job.clone(), nil
}

// complete runs the optimizer call to its end, appends the new version on
// success, and finalizes the job record. It returns the final job snapshot.
func (r *Runner) complete(ctx context.Context, judgeID string, model *versionstore.ModelConfig, req OptimizeRequest) Job {
	log := clog.FromContext(ctx).With("judge_id", judgeID)

	res, err := r.optimizer.Optimize(ctx, req)
	if err != nil {
		log.ErrorContextf(ctx, "alignment failed: %v", err)
		return r.finalize(judgeID, func(job *Job) {
			job.Status = StatusFailed
			job.Error = err.Error()
		})
	}

	v, err := r.store.Append(ctx, judgeID, res.InstructionText, model)
	if err != nil {
		// The judge exists (Current succeeded above), so this indicates a
		// store invariant violation rather than user error.
		log.ErrorContextf(ctx, "appending aligned version: %v", err)
		return r.finalize(judgeID, func(job *Job) {
			job.Status = StatusFailed
			job.Error = err.Error()
		})
	}

	log.InfoContextf(ctx, "alignment succeeded, created version %d", v.Version)
	return r.finalize(judgeID, func(job *Job) {
		job.Status = StatusSucceeded
		job.ResultingVersion = v.Version
		job.ImprovementMetrics = res.Metrics
	})
}

func (r *Runner) finalize(judgeID string, update func(*Job)) Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[judgeID]
	update(job)
	return job.clone()
}
