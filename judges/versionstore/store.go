/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package versionstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a judge or version does not exist.
	ErrNotFound = errors.New("judge version not found")

	// ErrAlreadyExists is returned when creating a judge whose ID is taken.
	ErrAlreadyExists = errors.New("judge already exists")
)

// ModelConfig records which model produced a version during alignment.
type ModelConfig struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Version is one immutable entry in a judge's instruction history.
type Version struct {
	JudgeID         string       `json:"judge_id"`
	Version         int          `json:"version"`
	InstructionText string       `json:"instruction_text"`
	CreatedAt       time.Time    `json:"created_at"`
	AlignmentModel  *ModelConfig `json:"alignment_model_config,omitempty"`
}

// Judge summarizes a judge for listing.
type Judge struct {
	ID             string    `json:"judge_id"`
	Name           string    `json:"name"`
	CurrentVersion int       `json:"current_version"`
	CreatedAt      time.Time `json:"created_at"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store holds judge instruction histories in memory.
//
// Versions for a judge are numbered 1..N with no gaps, and existing versions
// are never modified. All methods are safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	judges map[string]*judgeRecord
	now    func() time.Time
}

type judgeRecord struct {
	name     string
	versions []Version
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		judges: map[string]*judgeRecord{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInitial registers a new judge with its version 1 instruction text.
func (s *Store) CreateInitial(_ context.Context, judgeID, name, instruction string) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.judges[judgeID]; ok {
		return Version{}, fmt.Errorf("%w: %s", ErrAlreadyExists, judgeID)
	}
	v := Version{
		JudgeID:         judgeID,
		Version:         1,
		InstructionText: instruction,
		CreatedAt:       s.now().UTC(),
	}
	s.judges[judgeID] = &judgeRecord{
		name:     name,
		versions: []Version{v},
	}
	return v, nil
}

// Append adds the next version of a judge's instruction text. The judge ID
// is unchanged; the new version number is the current one plus one.
func (s *Store) Append(_ context.Context, judgeID, instruction string, model *ModelConfig) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.judges[judgeID]
	if !ok {
		return Version{}, fmt.Errorf("%w: %s", ErrNotFound, judgeID)
	}
	v := Version{
		JudgeID:         judgeID,
		Version:         len(rec.versions) + 1,
		InstructionText: instruction,
		CreatedAt:       s.now().UTC(),
		AlignmentModel:  model,
	}
	rec.versions = append(rec.versions, v)
	return v, nil
}

// Current returns the latest version of the judge.
func (s *Store) Current(_ context.Context, judgeID string) (Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.judges[judgeID]
	if !ok {
		return Version{}, fmt.Errorf("%w: %s", ErrNotFound, judgeID)
	}
	return rec.versions[len(rec.versions)-1], nil
}

// Get returns one specific version of the judge.
func (s *Store) Get(_ context.Context, judgeID string, version int) (Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.judges[judgeID]
	if !ok {
		return Version{}, fmt.Errorf("%w: %s", ErrNotFound, judgeID)
	}
	if version < 1 || version > len(rec.versions) {
		return Version{}, fmt.Errorf("%w: %s version %d", ErrNotFound, judgeID, version)
	}
	return rec.versions[version-1], nil
}

// History returns every version of the judge in ascending version order.
func (s *Store) History(_ context.Context, judgeID string) ([]Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.judges[judgeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, judgeID)
	}
	out := make([]Version, len(rec.versions))
	copy(out, rec.versions)
	return out, nil
}

// Judges lists all registered judges sorted by ID.
func (s *Store) Judges(_ context.Context) []Judge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Judge, 0, len(s.judges))
	for id, rec := range s.judges {
		out = append(out, Judge{
			ID:             id,
			Name:           rec.name,
			CurrentVersion: len(rec.versions),
			CreatedAt:      rec.versions[0].CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
