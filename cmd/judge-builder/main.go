/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the judge builder service: judge version management,
// alignment orchestration, and comparison evaluation behind a JSON API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainguard.dev/judgebuilder/completion"
	"chainguard.dev/judgebuilder/judges/alignment"
	"chainguard.dev/judgebuilder/judges/alignment/poller"
	"chainguard.dev/judgebuilder/judges/compare"
	"chainguard.dev/judgebuilder/judges/judgeexec"
	"chainguard.dev/judgebuilder/judges/labeling"
	"chainguard.dev/judgebuilder/judges/optimize"
	"chainguard.dev/judgebuilder/judges/schema"
	"chainguard.dev/judgebuilder/judges/versionstore"
	"chainguard.dev/judgebuilder/service"
	"chainguard.dev/judgebuilder/workspace"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/chainguard-dev/terraform-infra-common/pkg/profiler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	Port        int  `env:"PORT,default=8080"`
	MetricsPort int  `env:"METRICS_PORT,default=2112"`
	EnablePprof bool `env:"ENABLE_PPROF,default=false"`

	// Vertex AI project for claude-* and gemini-* models.
	ProjectID string `env:"GCP_PROJECT_ID"`
	Region    string `env:"GCP_REGION,default=us-east5"`

	// OpenAI credentials for gpt-* models, optional.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	// AlignmentModel drives instruction optimization unless a request
	// overrides it; JudgeModel scores examples.
	AlignmentModel string `env:"ALIGNMENT_MODEL,default=claude-sonnet-4@20250514"`
	JudgeModel     string `env:"JUDGE_MODEL,default=gemini-2.5-flash"`

	MinLabeledExamples int           `env:"MIN_LABELED_EXAMPLES,default=10"`
	OptimizerTimeout   time.Duration `env:"OPTIMIZER_TIMEOUT,default=55s"`

	AlignPollBase        time.Duration `env:"ALIGN_POLL_BASE,default=2s"`
	AlignPollMaxAttempts int           `env:"ALIGN_POLL_MAX_ATTEMPTS,default=7"`

	ComparePollBase        time.Duration `env:"COMPARE_POLL_BASE,default=1s"`
	ComparePollMaxAttempts int           `env:"COMPARE_POLL_MAX_ATTEMPTS,default=5"`

	EndpointsCacheTTL time.Duration `env:"ENDPOINTS_CACHE_TTL,default=5m"`
	SchemaCacheTTL    time.Duration `env:"SCHEMA_CACHE_TTL,default=30m"`

	// Workspace API for serving endpoint listings, optional.
	WorkspaceURL   string `env:"WORKSPACE_URL"`
	WorkspaceToken string `env:"WORKSPACE_TOKEN"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go httpmetrics.ScrapeDiskUsage(ctx)
	profiler.SetupProfiler()
	defer httpmetrics.SetupTracer(ctx)()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	completionCfg := completion.Config{
		ProjectID:    cfg.ProjectID,
		Region:       cfg.Region,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	}
	judgeLLM, err := completion.New(ctx, cfg.JudgeModel, completionCfg)
	if err != nil {
		clog.FatalContextf(ctx, "creating judge model client: %v", err)
	}
	optimizer := optimize.NewPromptOptimizer(cfg.AlignmentModel, func(ctx context.Context, model string) (completion.Client, error) {
		return completion.New(ctx, model, completionCfg)
	})

	store := versionstore.New()
	examples := labeling.NewStore()
	scorer := judgeexec.NewScorer(judgeLLM)
	runner := alignment.NewRunner(store, examples, optimizer,
		alignment.WithTransportDeadline(cfg.OptimizerTimeout),
		alignment.WithMinLabeledExamples(cfg.MinLabeledExamples))
	evaluator := compare.NewEvaluator(store, examples, scorer,
		compare.WithMinExamples(cfg.MinLabeledExamples))

	var directory workspace.Directory = noWorkspace{}
	if cfg.WorkspaceURL != "" {
		directory = workspace.NewHTTPDirectory(cfg.WorkspaceURL, cfg.WorkspaceToken)
	}

	svc := service.New(service.Config{
		Store:     store,
		Examples:  examples,
		Runner:    runner,
		Evaluator: evaluator,
		Analyzer:  schema.NewAnalyzer(judgeLLM, cfg.SchemaCacheTTL),
		Scorer:    scorer,
		Directory: workspace.NewCachedDirectory(directory, cfg.EndpointsCacheTTL),
		AlignPoll: poller.Config{
			BaseDelay:   cfg.AlignPollBase,
			MaxAttempts: cfg.AlignPollMaxAttempts,
		},
		ComparePoll: poller.Config{
			BaseDelay:   cfg.ComparePollBase,
			MaxAttempts: cfg.ComparePollMaxAttempts,
		},
	})

	go serveMetrics(ctx, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			clog.Errorf("shutting down server: %v", err)
		}
	}()

	clog.InfoContextf(ctx, "starting judge builder on port %d", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.FatalContextf(ctx, "server failed: %v", err)
	}
}

func serveMetrics(ctx context.Context, cfg config) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if cfg.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.Errorf("metrics server failed: %v", err)
	}
}

// noWorkspace serves deployments without a connected workspace.
type noWorkspace struct{}

func (noWorkspace) ListServingEndpoints(context.Context) ([]workspace.Endpoint, error) {
	return []workspace.Endpoint{}, nil
}
