/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package versionstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestCreateInitial(t *testing.T) {
	t.Parallel()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	got, err := s.CreateInitial(ctx, "j1", "toxicity", "Rate the response for toxicity.")
	if err != nil {
		t.Fatalf("CreateInitial() error = %v", err)
	}
	want := Version{
		JudgeID:         "j1",
		Version:         1,
		InstructionText: "Rate the response for toxicity.",
		CreatedAt:       fixed,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateInitial() mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.CreateInitial(ctx, "j1", "toxicity", "again"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("CreateInitial() duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestAppendIsGaplessAndMonotonic(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if _, err := s.CreateInitial(ctx, "j1", "quality", "v1 text"); err != nil {
		t.Fatalf("CreateInitial() error = %v", err)
	}
	for i := 2; i <= 5; i++ {
		v, err := s.Append(ctx, "j1", fmt.Sprintf("v%d text", i), &ModelConfig{Model: "claude-sonnet-4"})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if v.Version != i {
			t.Fatalf("Append() version = %d, want %d", v.Version, i)
		}
		if v.JudgeID != "j1" {
			t.Fatalf("Append() judge ID = %q, want j1", v.JudgeID)
		}
	}

	cur, err := s.Current(ctx, "j1")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if cur.Version != 5 || cur.InstructionText != "v5 text" {
		t.Errorf("Current() = v%d %q, want v5 %q", cur.Version, cur.InstructionText, "v5 text")
	}
}

func TestAppendUnknownJudge(t *testing.T) {
	t.Parallel()
	s := New()
	if _, err := s.Append(context.Background(), "nope", "text", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Append() error = %v, want ErrNotFound", err)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if _, err := s.CreateInitial(ctx, "j1", "quality", "first"); err != nil {
		t.Fatalf("CreateInitial() error = %v", err)
	}
	if _, err := s.Append(ctx, "j1", "second", nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	v, err := s.Get(ctx, "j1", 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v.InstructionText != "first" {
		t.Errorf("Get(1) text = %q, want %q", v.InstructionText, "first")
	}

	for _, bad := range []int{0, -1, 3} {
		if _, err := s.Get(ctx, "j1", bad); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%d) error = %v, want ErrNotFound", bad, err)
		}
	}
	if _, err := s.Get(ctx, "other", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() for unknown judge error = %v, want ErrNotFound", err)
	}
}

func TestHistoryOrderAndIsolation(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if _, err := s.CreateInitial(ctx, "j1", "quality", "one"); err != nil {
		t.Fatalf("CreateInitial() error = %v", err)
	}
	if _, err := s.Append(ctx, "j1", "two", nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := s.Append(ctx, "j1", "three", nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	hist, err := s.History(ctx, "j1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	for i, v := range hist {
		if v.Version != i+1 {
			t.Errorf("History()[%d].Version = %d, want %d", i, v.Version, i+1)
		}
	}

	// Mutating the returned slice must not affect the store.
	hist[0].InstructionText = "clobbered"
	v, err := s.Get(ctx, "j1", 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v.InstructionText != "one" {
		t.Errorf("Get(1) text = %q after caller mutation, want %q", v.InstructionText, "one")
	}
}

func TestConcurrentAppends(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if _, err := s.CreateInitial(ctx, "j1", "quality", "seed"); err != nil {
		t.Fatalf("CreateInitial() error = %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Append(ctx, "j1", "appended", nil); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}()
	}
	wg.Wait()

	hist, err := s.History(ctx, "j1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(hist) != n+1 {
		t.Fatalf("History() length = %d, want %d", len(hist), n+1)
	}
	for i, v := range hist {
		if v.Version != i+1 {
			t.Errorf("History()[%d].Version = %d, want %d", i, v.Version, i+1)
		}
	}
}

func TestJudges(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		if _, err := s.CreateInitial(ctx, id, id+" judge", "text"); err != nil {
			t.Fatalf("CreateInitial(%s) error = %v", id, err)
		}
	}
	if _, err := s.Append(ctx, "mid", "text v2", nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	judges := s.Judges(ctx)
	var ids []string
	for _, j := range judges {
		ids = append(ids, j.ID)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, ids); diff != "" {
		t.Errorf("Judges() order mismatch (-want +got):\n%s", diff)
	}
	if judges[1].CurrentVersion != 2 {
		t.Errorf("Judges()[mid].CurrentVersion = %d, want 2", judges[1].CurrentVersion)
	}
}
