package services

import (
	"testing"

	"github.com/walkitapp/walkit/models"
)

func newProg() *Progression {
	return NewProgression(testConfig())
}

func TestProgression_Threshold(t *testing.T) {
	prog := newProg()

	cases := []struct {
		level int
		want  int
	}{
		{1, 120},
		{2, 140},
		{5, 200},
	}
	for _, tc := range cases {
		if got := prog.Threshold(tc.level); got != tc.want {
			t.Fatalf("Threshold(%d) = %d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestProgression_LevelUp(t *testing.T) {
	prog := newProg()
	user := &models.User{Level: 1}

	prog.ApplyAuraDelta(user, 119)
	if user.Level != 1 {
		t.Fatalf("expected level 1 at aura 119, got %d", user.Level)
	}

	prog.ApplyAuraDelta(user, 1)
	if user.Level != 2 {
		t.Fatalf("expected level 2 at aura 120, got %d", user.Level)
	}
}

func TestProgression_MultiLevelJump(t *testing.T) {
	prog := newProg()
	user := &models.User{Level: 1}

	prog.ApplyAuraDelta(user, 500)
	if user.Aura != 500 {
		t.Fatalf("expected aura 500, got %d", user.Aura)
	}
	// Settled: below the exit threshold of the landed level, at or above
	// the one beneath it.
	if user.Aura >= prog.Threshold(user.Level) {
		t.Fatalf("level %d not settled for aura %d", user.Level, user.Aura)
	}
	if user.Level > 1 && user.Aura < prog.Threshold(user.Level-1) {
		t.Fatalf("level %d overshoots aura %d", user.Level, user.Aura)
	}
}

func TestProgression_LevelDown(t *testing.T) {
	prog := newProg()
	user := &models.User{Level: 1}

	prog.ApplyAuraDelta(user, 150)
	if user.Level != 2 {
		t.Fatalf("expected level 2 at aura 150, got %d", user.Level)
	}

	prog.ApplyAuraDelta(user, -40)
	if user.Level != 1 {
		t.Fatalf("expected level 1 at aura 110, got %d", user.Level)
	}
	if user.Aura != 110 {
		t.Fatalf("expected aura 110, got %d", user.Aura)
	}
}

func TestProgression_NeverBelowLevelOne(t *testing.T) {
	prog := newProg()
	user := &models.User{Level: 1}

	prog.ApplyAuraDelta(user, -500)
	if user.Level != 1 {
		t.Fatalf("expected level floor 1, got %d", user.Level)
	}
	if user.Aura != 0 {
		t.Fatalf("expected aura floor 0, got %d", user.Aura)
	}
}

func TestProgression_ZeroDeltaIdempotent(t *testing.T) {
	prog := newProg()
	user := &models.User{Aura: 250, Level: 1}

	prog.ApplyAuraDelta(user, 0)
	level, aura := user.Level, user.Aura

	prog.ApplyAuraDelta(user, 0)
	if user.Level != level || user.Aura != aura {
		t.Fatalf("zero delta changed state: level %d->%d aura %d->%d", level, user.Level, aura, user.Aura)
	}
}

func TestProgression_MonotonicForRisingAura(t *testing.T) {
	prog := newProg()
	user := &models.User{Level: 1}

	prev := user.Level
	for i := 0; i < 50; i++ {
		prog.ApplyAuraDelta(user, 25)
		if user.Level < prev {
			t.Fatalf("level dropped from %d to %d while aura only rose", prev, user.Level)
		}
		prev = user.Level
	}
}
