package spatial

import (
	"testing"

	"github.com/arquebus/battlegrid/internal/platform/errors"
)

func TestStartTurnResetsBudget(t *testing.T) {
	p := &Participant{ID: "p1", MovementSpeed: 25, MovementRemaining: 5, HasDashed: true}
	StartTurn(p)
	if p.MovementRemaining != 25 {
		t.Fatalf("remaining = %v, want 25", p.MovementRemaining)
	}
	if p.HasDashed {
		t.Fatal("dash flag should reset at turn start")
	}
}

func TestStartTurnDefaultsSpeed(t *testing.T) {
	p := &Participant{ID: "p1"}
	StartTurn(p)
	if p.MovementSpeed != DefaultSpeedFeet || p.MovementRemaining != DefaultSpeedFeet {
		t.Fatalf("expected default 30 ft, got speed=%v remaining=%v", p.MovementSpeed, p.MovementRemaining)
	}
}

func TestDashDoublesMovementOncePerTurn(t *testing.T) {
	p := &Participant{ID: "p1", MovementSpeed: 30}
	StartTurn(p)
	if err := Dash(p); err != nil {
		t.Fatalf("first dash failed: %v", err)
	}
	if p.MovementRemaining != 60 {
		t.Fatalf("remaining after dash = %v, want 60", p.MovementRemaining)
	}

	err := Dash(p)
	if errors.CodeOf(err) != errors.CodeDashAlreadyUsed {
		t.Fatalf("second dash error = %v, want dash-already-used", err)
	}
	if p.MovementRemaining != 60 {
		t.Fatalf("second dash changed the budget: %v", p.MovementRemaining)
	}

	StartTurn(p)
	if p.HasDashed || p.MovementRemaining != 30 {
		t.Fatalf("new turn should allow dashing again: dashed=%v remaining=%v", p.HasDashed, p.MovementRemaining)
	}
}
