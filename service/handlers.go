/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"chainguard.dev/judgebuilder/judges/alignment"
	"chainguard.dev/judgebuilder/judges/alignment/poller"
	"chainguard.dev/judgebuilder/judges/compare"
	"chainguard.dev/judgebuilder/judges/labeling"
	"chainguard.dev/judgebuilder/judges/versionstore"
	"github.com/chainguard-dev/clog"
)

// Handler returns the service's HTTP surface.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /judges", s.handleCreateJudge)
	mux.HandleFunc("GET /judges", s.handleListJudges)
	mux.HandleFunc("GET /judges/{judgeID}/versions", s.handleVersions)
	mux.HandleFunc("POST /judges/{judgeID}/examples", s.handleAddExamples)
	mux.HandleFunc("POST /judges/{judgeID}/align", s.handleAlign)
	mux.HandleFunc("GET /judges/{judgeID}/alignment-comparison", s.handleComparison)
	mux.HandleFunc("POST /judges/{judgeID}/test", s.handleTestJudge)
	mux.HandleFunc("GET /judges/{judgeID}/schema", s.handleSchema)
	mux.HandleFunc("GET /serving-endpoints", s.handleEndpoints)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return logRequests(mux)
}

type createJudgeRequest struct {
	Name            string `json:"name"`
	InstructionText string `json:"instruction_text"`
}

func (s *Service) handleCreateJudge(w http.ResponseWriter, r *http.Request) {
	var req createJudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.InstructionText) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "name and instruction_text are required")
		return
	}
	v, err := s.CreateJudge(r.Context(), req.Name, req.InstructionText)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Service) handleListJudges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Judges(r.Context()))
}

func (s *Service) handleVersions(w http.ResponseWriter, r *http.Request) {
	hist, err := s.Versions(r.Context(), r.PathValue("judgeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

type addExamplesRequest struct {
	Examples []labeling.Example `json:"examples"`
}

func (s *Service) handleAddExamples(w http.ResponseWriter, r *http.Request) {
	var req addExamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Examples) == 0 {
		writeErrorMessage(w, http.StatusBadRequest, "examples are required")
		return
	}
	progress, err := s.AddExamples(r.Context(), r.PathValue("judgeID"), req.Examples)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

type alignRequest struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

func (s *Service) handleAlign(w http.ResponseWriter, r *http.Request) {
	var req alignRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	var model *versionstore.ModelConfig
	if req.Model != "" {
		model = &versionstore.ModelConfig{Model: req.Model, Temperature: req.Temperature}
	}

	job, err := s.Align(r.Context(), r.PathValue("judgeID"), model)
	if err != nil {
		// Exhausted polling is not a failure: hand the caller the last
		// snapshot and tell them to refresh.
		if errors.Is(err, poller.ErrExhausted) {
			writeJSON(w, http.StatusAccepted, job)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Service) handleComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.Comparison(r.Context(), r.PathValue("judgeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

type testJudgeRequest struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Expectation string `json:"expectation,omitempty"`
	Version     int    `json:"version,omitempty"`
}

func (s *Service) handleTestJudge(w http.ResponseWriter, r *http.Request) {
	var req testJudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	verdict, err := s.TestJudge(r.Context(), r.PathValue("judgeID"), req.Version, labeling.Example{
		Input:       req.Input,
		Output:      req.Output,
		Expectation: req.Expectation,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (s *Service) handleSchema(w http.ResponseWriter, r *http.Request) {
	options, err := s.SchemaOptions(r.Context(), r.PathValue("judgeID"), r.URL.Query().Get("force_refresh") == "true")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"options": options})
}

func (s *Service) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := s.Endpoints(r.Context(), r.URL.Query().Get("force_refresh") == "true")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, endpoints)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, versionstore.ErrNotFound),
		errors.Is(err, alignment.ErrNoJob),
		errors.Is(err, ErrNotYetAvailable):
		status = http.StatusNotFound
	case errors.Is(err, versionstore.ErrAlreadyExists),
		errors.Is(err, alignment.ErrAlreadyRunning):
		status = http.StatusConflict
	case errors.Is(err, alignment.ErrInsufficientData),
		errors.Is(err, compare.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, alignment.ErrOptimizerFailure):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		clog.FromContext(r.Context()).Errorf("request failed: %v", err)
	}
	writeErrorMessage(w, status, err.Error())
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		clog.FromContext(r.Context()).
			With("method", r.Method).
			With("path", r.URL.Path).
			With("status", rec.status).
			With("duration", time.Since(start)).
			Info("handled request")
	})
}
