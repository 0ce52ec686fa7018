/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package service

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/judgebuilder/judges/alignment"
	"chainguard.dev/judgebuilder/judges/alignment/poller"
	"chainguard.dev/judgebuilder/judges/compare"
	"chainguard.dev/judgebuilder/judges/judgeexec"
	"chainguard.dev/judgebuilder/judges/labeling"
	"chainguard.dev/judgebuilder/judges/schema"
	"chainguard.dev/judgebuilder/judges/versionstore"
	"chainguard.dev/judgebuilder/workspace"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
)

// ErrNotYetAvailable is returned when a comparison is requested before a
// judge has two versions to compare.
var ErrNotYetAvailable = errors.New("comparison not yet available")

// errStillRunning marks a completion probe that found the run in flight.
var errStillRunning = errors.New("alignment still running")

// Service exposes judge building operations to the UI/CLI layer.
type Service struct {
	store     *versionstore.Store
	examples  *labeling.Store
	runner    *alignment.Runner
	evaluator *compare.Evaluator
	analyzer  *schema.Analyzer
	scorer    *judgeexec.Scorer
	directory *workspace.CachedDirectory

	alignPoll   poller.Config
	comparePoll poller.Config
}

// Config wires a Service.
type Config struct {
	Store     *versionstore.Store
	Examples  *labeling.Store
	Runner    *alignment.Runner
	Evaluator *compare.Evaluator
	Analyzer  *schema.Analyzer
	Scorer    *judgeexec.Scorer
	Directory *workspace.CachedDirectory

	// AlignPoll resolves indeterminate alignment timeouts.
	AlignPoll poller.Config

	// ComparePoll waits for comparison data while a run is in flight.
	ComparePoll poller.Config
}

// New creates a Service.
func New(cfg Config) *Service {
	return &Service{
		store:       cfg.Store,
		examples:    cfg.Examples,
		runner:      cfg.Runner,
		evaluator:   cfg.Evaluator,
		analyzer:    cfg.Analyzer,
		scorer:      cfg.Scorer,
		directory:   cfg.Directory,
		alignPoll:   cfg.AlignPoll,
		comparePoll: cfg.ComparePoll,
	}
}

// CreateJudge registers a new judge with a generated ID and its version 1
// instruction text.
func (s *Service) CreateJudge(ctx context.Context, name, instruction string) (versionstore.Version, error) {
	judgeID := uuid.NewString()
	v, err := s.store.CreateInitial(ctx, judgeID, name, instruction)
	if err != nil {
		return versionstore.Version{}, err
	}
	clog.FromContext(ctx).With("judge_id", judgeID).Infof("created judge %q", name)
	return v, nil
}

// Judges lists all judges.
func (s *Service) Judges(ctx context.Context) []versionstore.Judge {
	return s.store.Judges(ctx)
}

// Versions returns a judge's full version history.
func (s *Service) Versions(ctx context.Context, judgeID string) ([]versionstore.Version, error) {
	return s.store.History(ctx, judgeID)
}

// AddExamples stores examples for a judge and reports labeling progress.
func (s *Service) AddExamples(ctx context.Context, judgeID string, examples []labeling.Example) (labeling.Progress, error) {
	if _, err := s.store.Current(ctx, judgeID); err != nil {
		return labeling.Progress{}, err
	}
	s.examples.Add(ctx, judgeID, examples...)
	return s.examples.Progress(ctx, judgeID), nil
}

// Align runs one alignment attempt for the judge. When the run outlives its
// transport deadline, Align falls back to polling for the out-of-band
// completion; if polling also gives up the caller gets the last known job
// snapshot along with poller.ErrExhausted, meaning "may have completed,
// refresh to check", never a definitive failure.
func (s *Service) Align(ctx context.Context, judgeID string, model *versionstore.ModelConfig) (alignment.Job, error) {
	job, err := s.runner.Run(ctx, judgeID, model)
	switch {
	case err == nil:
		alignmentRuns.WithLabelValues("succeeded").Inc()
		return job, nil
	case errors.Is(err, alignment.ErrTimeoutIndeterminate):
		alignmentRuns.WithLabelValues("indeterminate").Inc()
		return s.awaitCompletion(ctx, judgeID)
	case errors.Is(err, alignment.ErrOptimizerFailure):
		alignmentRuns.WithLabelValues("failed").Inc()
		return job, err
	default:
		alignmentRuns.WithLabelValues("rejected").Inc()
		return job, err
	}
}

// awaitCompletion polls the runner's job record until the background run
// lands or the attempt budget is spent.
func (s *Service) awaitCompletion(ctx context.Context, judgeID string) (alignment.Job, error) {
	job, err := poller.Poll(ctx, s.alignPoll, "alignment_completion",
		func(err error) bool { return errors.Is(err, errStillRunning) },
		func(context.Context) (alignment.Job, error) {
			job, err := s.runner.Job(judgeID)
			if err != nil {
				return alignment.Job{}, err
			}
			switch job.Status {
			case alignment.StatusSucceeded:
				return job, nil
			case alignment.StatusFailed:
				return job, fmt.Errorf("%w: %s", alignment.ErrOptimizerFailure, job.Error)
			default:
				return alignment.Job{}, errStillRunning
			}
		})
	switch {
	case err == nil:
		pollResolutions.WithLabelValues("alignment_completion", "resolved").Inc()
		alignmentRuns.WithLabelValues("succeeded").Inc()
		return job, nil
	case errors.Is(err, poller.ErrExhausted):
		pollResolutions.WithLabelValues("alignment_completion", "exhausted").Inc()
		// Hand back the last snapshot so the caller can show what is
		// known; the error carries the "refresh to check" condition.
		if snap, jerr := s.runner.Job(judgeID); jerr == nil {
			snap.Status = alignment.StatusUnknownTimeout
			return snap, err
		}
		return alignment.Job{}, err
	case errors.Is(err, alignment.ErrOptimizerFailure):
		pollResolutions.WithLabelValues("alignment_completion", "resolved").Inc()
		alignmentRuns.WithLabelValues("failed").Inc()
		if snap, jerr := s.runner.Job(judgeID); jerr == nil {
			return snap, err
		}
		return alignment.Job{}, err
	default:
		return alignment.Job{}, err
	}
}

// Comparison returns agreement metrics between the judge's two most recent
// versions. While an alignment run is in flight the read polls briefly so a
// caller landing right after a timeout still gets data once the new version
// appears; otherwise a single probe answers immediately.
func (s *Service) Comparison(ctx context.Context, judgeID string) (compare.Comparison, error) {
	cfg := s.comparePoll
	if job, err := s.runner.Job(judgeID); err != nil || job.Status != alignment.StatusRunning {
		cfg.MaxAttempts = 1
	}

	cmp, err := poller.Poll(ctx, cfg, "comparison_fetch",
		func(err error) bool { return errors.Is(err, ErrNotYetAvailable) },
		func(ctx context.Context) (compare.Comparison, error) {
			cur, err := s.store.Current(ctx, judgeID)
			if err != nil {
				return compare.Comparison{}, err
			}
			if cur.Version < 2 {
				return compare.Comparison{}, fmt.Errorf("%w: judge %s has no aligned version", ErrNotYetAvailable, judgeID)
			}
			return s.evaluator.Compare(ctx, judgeID, cur.Version-1, cur.Version)
		})
	if err != nil {
		if errors.Is(err, poller.ErrExhausted) {
			pollResolutions.WithLabelValues("comparison_fetch", "exhausted").Inc()
			return compare.Comparison{}, fmt.Errorf("%w for judge %s", ErrNotYetAvailable, judgeID)
		}
		return compare.Comparison{}, err
	}
	return cmp, nil
}

// TestJudge scores one ad hoc example under a judge version. Version zero
// means the current version.
func (s *Service) TestJudge(ctx context.Context, judgeID string, version int, ex labeling.Example) (judgeexec.Verdict, error) {
	var v versionstore.Version
	var err error
	if version == 0 {
		v, err = s.store.Current(ctx, judgeID)
	} else {
		v, err = s.store.Get(ctx, judgeID, version)
	}
	if err != nil {
		return judgeexec.Verdict{}, err
	}
	return s.scorer.Judge(ctx, v.InstructionText, ex)
}

// SchemaOptions returns the verdict labels the judge's current instruction
// implies.
func (s *Service) SchemaOptions(ctx context.Context, judgeID string, forceRefresh bool) ([]string, error) {
	cur, err := s.store.Current(ctx, judgeID)
	if err != nil {
		return nil, err
	}
	examples, err := s.examples.Examples(ctx, judgeID)
	if err != nil {
		return nil, err
	}
	if forceRefresh {
		return s.analyzer.ForceRefresh(ctx, judgeID, cur.InstructionText, examples)
	}
	return s.analyzer.CategoricalOptions(ctx, judgeID, cur.InstructionText, examples)
}

// Endpoints lists the workspace's serving endpoints.
func (s *Service) Endpoints(ctx context.Context, forceRefresh bool) ([]workspace.Endpoint, error) {
	return s.directory.List(ctx, forceRefresh)
}
