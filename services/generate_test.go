package services

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateUnique_FirstFree(t *testing.T) {
	got, err := GenerateUnique(
		func() string { return "alpha" },
		func(string) (bool, error) { return false, nil },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alpha" {
		t.Fatalf("expected alpha, got %q", got)
	}
}

func TestGenerateUnique_RetriesUntilFree(t *testing.T) {
	calls := 0
	got, err := GenerateUnique(
		func() string { calls++; return "candidate" },
		func(string) (bool, error) { return calls < 4, nil },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "candidate" || calls != 4 {
		t.Fatalf("expected success on attempt 4, got %q after %d calls", got, calls)
	}
}

func TestGenerateUnique_Exhausts(t *testing.T) {
	calls := 0
	_, err := GenerateUnique(
		func() string { calls++; return "taken" },
		func(string) (bool, error) { return true, nil },
	)
	if !errors.Is(err, ErrGenerationExhausted) {
		t.Fatalf("expected ErrGenerationExhausted, got %v", err)
	}
	if calls != generationAttempts {
		t.Fatalf("expected %d attempts, got %d", generationAttempts, calls)
	}
}

func TestGenerateUnique_PropagatesCheckError(t *testing.T) {
	boom := errors.New("db down")
	_, err := GenerateUnique(
		func() string { return "x" },
		func(string) (bool, error) { return false, boom },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected check error, got %v", err)
	}
}

func TestRandomUsername_Shape(t *testing.T) {
	for i := 0; i < 20; i++ {
		name := randomUsername()
		parts := strings.Split(name, " ")
		if len(parts) != 2 {
			t.Fatalf("expected two words, got %q", name)
		}
	}
}
