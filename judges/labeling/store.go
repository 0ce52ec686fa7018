/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package labeling

import (
	"context"
	"sync"
)

// Example is one model interaction, optionally annotated with a human
// verdict. An empty HumanLabel means the example is still awaiting review.
type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Expectation string `json:"expectation,omitempty"`
	HumanLabel  string `json:"human_label,omitempty"`
}

// Labeled reports whether a human verdict has been recorded.
func (e Example) Labeled() bool {
	return e.HumanLabel != ""
}

// Progress summarizes labeling completeness for a judge.
type Progress struct {
	Labeled int `json:"labeled"`
	Total   int `json:"total"`
}

// Store holds examples per judge in memory. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	examples map[string][]Example
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{examples: map[string][]Example{}}
}

// Add records examples for a judge, in the order given.
func (s *Store) Add(_ context.Context, judgeID string, examples ...Example) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.examples[judgeID] = append(s.examples[judgeID], examples...)
}

// Examples returns every stored example for a judge.
func (s *Store) Examples(_ context.Context, judgeID string) ([]Example, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Example, len(s.examples[judgeID]))
	copy(out, s.examples[judgeID])
	return out, nil
}

// LabeledExamples returns only the examples carrying a human verdict.
func (s *Store) LabeledExamples(_ context.Context, judgeID string) ([]Example, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Example
	for _, e := range s.examples[judgeID] {
		if e.Labeled() {
			out = append(out, e)
		}
	}
	return out, nil
}

// Progress reports how many of a judge's examples are labeled.
func (s *Store) Progress(_ context.Context, judgeID string) Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := Progress{Total: len(s.examples[judgeID])}
	for _, e := range s.examples[judgeID] {
		if e.Labeled() {
			p.Labeled++
		}
	}
	return p
}
