/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/judgebuilder/judges/labeling"
	"chainguard.dev/judgebuilder/judges/versionstore"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// ErrInsufficientData is returned when too few labeled examples exist to
// compute a meaningful comparison.
var ErrInsufficientData = errors.New("insufficient labeled examples for comparison")

const (
	// DefaultMinExamples is the comparison floor.
	DefaultMinExamples = 10

	// DefaultConcurrency bounds in-flight judge calls per comparison.
	DefaultConcurrency = 4
)

// JudgeClient scores a single example under an instruction text and returns
// the judge's verdict label.
type JudgeClient interface {
	ScoreExample(ctx context.Context, instruction string, ex labeling.Example) (string, error)
}

// ExampleSource supplies labeled examples for a judge.
type ExampleSource interface {
	LabeledExamples(ctx context.Context, judgeID string) ([]labeling.Example, error)
}

// Matrix is a pass/fail confusion matrix against human labels. Human "pass"
// is the positive class.
type Matrix struct {
	TruePositive  int `json:"true_positive"`
	FalseNegative int `json:"false_negative"`
	FalsePositive int `json:"false_positive"`
	TrueNegative  int `json:"true_negative"`
}

// Accuracy is the fraction of examples on the matrix diagonal.
func (m Matrix) Accuracy() float64 {
	total := m.TruePositive + m.FalseNegative + m.FalsePositive + m.TrueNegative
	if total == 0 {
		return 0
	}
	return float64(m.TruePositive+m.TrueNegative) / float64(total)
}

// VersionAgreement aggregates one version's agreement with human labels.
type VersionAgreement struct {
	Version         int     `json:"version"`
	Agreements      int     `json:"agreements"`
	AgreementRate   float64 `json:"agreement_rate"`
	ConfusionMatrix Matrix  `json:"confusion_matrix"`
}

// Row is the per-example outcome under both versions.
type Row struct {
	Input      string `json:"input"`
	HumanLabel string `json:"human_label"`
	FromLabel  string `json:"from_label"`
	ToLabel    string `json:"to_label"`
	FromAgrees bool   `json:"from_agrees"`
	ToAgrees   bool   `json:"to_agrees"`
}

// Comparison is the full before/after agreement report for two versions.
type Comparison struct {
	JudgeID      string           `json:"judge_id"`
	From         VersionAgreement `json:"from_version"`
	To           VersionAgreement `json:"to_version"`
	Delta        float64          `json:"delta"`
	TotalSamples int              `json:"total_samples"`
	Rows         []Row            `json:"rows,omitempty"`
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMinExamples overrides the labeled-example floor.
func WithMinExamples(n int) Option {
	return func(e *Evaluator) {
		e.minExamples = n
	}
}

// WithConcurrency overrides the judge-call concurrency limit.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		e.concurrency = n
	}
}

// Evaluator scores labeled examples under two instruction versions and
// aggregates agreement metrics.
type Evaluator struct {
	store       *versionstore.Store
	examples    ExampleSource
	judge       JudgeClient
	minExamples int
	concurrency int
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(store *versionstore.Store, examples ExampleSource, judge JudgeClient, opts ...Option) *Evaluator {
	e := &Evaluator{
		store:       store,
		examples:    examples,
		judge:       judge,
		minExamples: DefaultMinExamples,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare scores the judge's labeled examples under both versions'
// instructions and returns agreement metrics plus the delta.
func (e *Evaluator) Compare(ctx context.Context, judgeID string, fromVersion, toVersion int) (Comparison, error) {
	from, err := e.store.Get(ctx, judgeID, fromVersion)
	if err != nil {
		return Comparison{}, err
	}
	to, err := e.store.Get(ctx, judgeID, toVersion)
	if err != nil {
		return Comparison{}, err
	}

	examples, err := e.examples.LabeledExamples(ctx, judgeID)
	if err != nil {
		return Comparison{}, fmt.Errorf("fetching labeled examples: %w", err)
	}
	if len(examples) < e.minExamples {
		return Comparison{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(examples), e.minExamples)
	}
	clog.FromContext(ctx).With("judge_id", judgeID).InfoContextf(ctx,
		"comparing v%d against v%d over %d examples", fromVersion, toVersion, len(examples))

	rows := make([]Row, len(examples))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)
	for i, ex := range examples {
		eg.Go(func() error {
			fromLabel, err := e.judge.ScoreExample(gctx, from.InstructionText, ex)
			if err != nil {
				return fmt.Errorf("scoring example %d under v%d: %w", i, fromVersion, err)
			}
			toLabel, err := e.judge.ScoreExample(gctx, to.InstructionText, ex)
			if err != nil {
				return fmt.Errorf("scoring example %d under v%d: %w", i, toVersion, err)
			}
			rows[i] = Row{
				Input:      ex.Input,
				HumanLabel: ex.HumanLabel,
				FromLabel:  fromLabel,
				ToLabel:    toLabel,
				FromAgrees: agrees(fromLabel, ex.HumanLabel),
				ToAgrees:   agrees(toLabel, ex.HumanLabel),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Comparison{}, err
	}

	cmp := Comparison{
		JudgeID:      judgeID,
		From:         VersionAgreement{Version: fromVersion},
		To:           VersionAgreement{Version: toVersion},
		TotalSamples: len(rows),
		Rows:         rows,
	}
	for _, row := range rows {
		tally(&cmp.From, row.FromLabel, row.HumanLabel, row.FromAgrees)
		tally(&cmp.To, row.ToLabel, row.HumanLabel, row.ToAgrees)
	}
	cmp.From.AgreementRate = rate(cmp.From.Agreements, len(rows))
	cmp.To.AgreementRate = rate(cmp.To.Agreements, len(rows))
	cmp.Delta = cmp.To.AgreementRate - cmp.From.AgreementRate
	return cmp, nil
}

func tally(va *VersionAgreement, judgeLabel, humanLabel string, agreed bool) {
	if agreed {
		va.Agreements++
	}
	humanPass := isPass(humanLabel)
	judgePass := isPass(judgeLabel)
	switch {
	case humanPass && judgePass:
		va.ConfusionMatrix.TruePositive++
	case humanPass && !judgePass:
		va.ConfusionMatrix.FalseNegative++
	case !humanPass && judgePass:
		va.ConfusionMatrix.FalsePositive++
	default:
		va.ConfusionMatrix.TrueNegative++
	}
}

func rate(agreements, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(agreements) / float64(total)
}

// agrees compares verdict labels case-insensitively.
func agrees(judgeLabel, humanLabel string) bool {
	return strings.EqualFold(strings.TrimSpace(judgeLabel), strings.TrimSpace(humanLabel))
}

// isPass normalizes common affirmative verdicts to the positive class.
func isPass(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "pass", "yes", "true":
		return true
	}
	return false
}
