/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alignmentRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "judgebuilder_alignment_runs_total",
		Help: "Alignment run outcomes as observed by callers.",
	}, []string{"outcome"})

	pollResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "judgebuilder_poll_resolutions_total",
		Help: "How completion polling sequences ended.",
	}, []string{"operation", "outcome"})
)
