package spatial

import (
	"strings"
	"testing"

	"github.com/arquebus/battlegrid/internal/platform/errors"
)

func newTestManager() *Manager {
	state := NewCombatState(testBounds())
	state.AddParticipant(&Participant{ID: "hero", Position: &Position{X: 0, Y: 0}, Size: SizeMedium, MovementSpeed: 30, HP: 10})
	state.AddParticipant(&Participant{ID: "goblin", Position: &Position{X: 10, Y: 10}, Size: SizeSmall, MovementSpeed: 30, HP: 7, IsEnemy: true})
	m := NewManager(state)
	if err := m.StartTurn("hero"); err != nil {
		panic(err)
	}
	return m
}

func TestValidateAndExecuteMove(t *testing.T) {
	m := newTestManager()

	result := m.ValidateMove("hero", Position{X: 3, Y: 0})
	if !result.Valid {
		t.Fatalf("move should be valid: %s", result.Error)
	}
	if result.CostFeet != 15 {
		t.Fatalf("cost = %v ft, want 15", result.CostFeet)
	}
	if len(result.Path) != 4 {
		t.Fatalf("path length = %d, want 4", len(result.Path))
	}

	if err := m.ExecuteMove("hero", Position{X: 3, Y: 0}, result.CostFeet); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	remaining, err := m.RemainingMovement("hero")
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining != 15 {
		t.Fatalf("remaining = %v ft, want 15", remaining)
	}
	hero := m.State().Participant("hero")
	if hero.Position.X != 3 || hero.Position.Y != 0 {
		t.Fatalf("position not committed: %+v", hero.Position)
	}
}

func TestValidateMoveUnknownParticipant(t *testing.T) {
	m := newTestManager()
	result := m.ValidateMove("nobody", Position{X: 1, Y: 1})
	if result.Valid || result.ErrorCode != string(errors.CodeParticipantNotFound) {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestValidateMoveOutOfBounds(t *testing.T) {
	m := newTestManager()
	result := m.ValidateMove("hero", Position{X: 25, Y: 0})
	if result.Valid || result.ErrorCode != string(errors.CodeOutOfBounds) {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.Contains(result.Error, "destination") {
		t.Fatalf("bounds error should name the destination: %q", result.Error)
	}
}

func TestValidateMoveCollision(t *testing.T) {
	m := newTestManager()
	result := m.ValidateMove("hero", Position{X: 10, Y: 10})
	if result.Valid || result.ErrorCode != string(errors.CodeCollision) {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestValidateMoveIgnoresDefeatedBlockers(t *testing.T) {
	m := newTestManager()
	goblin := m.State().Participant("goblin")
	goblin.Position = &Position{X: 3, Y: 3}
	goblin.HP = 0
	result := m.ValidateMove("hero", Position{X: 3, Y: 3})
	if !result.Valid {
		t.Fatalf("defeated creatures must not block: %s", result.Error)
	}
	if result.CostFeet != 22.5 {
		t.Fatalf("3 diagonal squares should cost 22.5 ft, got %v", result.CostFeet)
	}
}

func TestValidateMoveNoPath(t *testing.T) {
	m := newTestManager()
	// Wall the hero into the corner.
	for _, tile := range []Tile{TileAt(1, 0), TileAt(1, 1), TileAt(0, 1)} {
		m.State().Terrain.Obstacles.Add(tile)
	}
	result := m.ValidateMove("hero", Position{X: 5, Y: 5})
	if result.Valid || result.ErrorCode != string(errors.CodeNoPath) {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestValidateMoveInsufficientMovement(t *testing.T) {
	m := newTestManager()
	result := m.ValidateMove("hero", Position{X: 10, Y: 0})
	if result.Valid || result.ErrorCode != string(errors.CodeInsufficientMovement) {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.Contains(result.Error, "50") || !strings.Contains(result.Error, "30") {
		t.Fatalf("message should carry cost and remaining: %q", result.Error)
	}

	// A dash buys enough budget for the same move.
	if _, err := m.Dash("hero"); err != nil {
		t.Fatalf("dash: %v", err)
	}
	result = m.ValidateMove("hero", Position{X: 10, Y: 0})
	if !result.Valid || result.CostFeet != 50 {
		t.Fatalf("post-dash move should be valid at 50 ft: %+v", result)
	}
}

func TestValidateMoveFirstPlacementSkipsCollision(t *testing.T) {
	m := newTestManager()
	m.State().AddParticipant(&Participant{ID: "late", Size: SizeMedium, MovementSpeed: 30, HP: 9})

	// Free pre-combat placement: even a tile under the goblin validates.
	result := m.ValidateMove("late", Position{X: 10, Y: 10})
	if !result.Valid {
		t.Fatalf("first placement should skip collision: %s", result.Error)
	}
	if len(result.Path) != 1 || result.CostFeet != 0 {
		t.Fatalf("first placement should be a free single-tile path: %+v", result)
	}
}

func TestSetPositionValidatesCollision(t *testing.T) {
	m := newTestManager()
	m.State().AddParticipant(&Participant{ID: "late", Size: SizeMedium, MovementSpeed: 30, HP: 9})

	err := m.SetPosition("late", Position{X: 10, Y: 10})
	if errors.CodeOf(err) != errors.CodeCollision {
		t.Fatalf("expected collision, got %v", err)
	}
	err = m.SetPosition("late", Position{X: 30, Y: 0})
	if errors.CodeOf(err) != errors.CodeOutOfBounds {
		t.Fatalf("expected bounds error, got %v", err)
	}
	if err := m.SetPosition("late", Position{X: 4, Y: 4}); err != nil {
		t.Fatalf("legal placement failed: %v", err)
	}
	late := m.State().Participant("late")
	if late.Position == nil || late.Position.X != 4 {
		t.Fatalf("placement not committed: %+v", late.Position)
	}
}

func TestDashThroughManager(t *testing.T) {
	m := newTestManager()
	remaining, err := m.Dash("hero")
	if err != nil || remaining != 60 {
		t.Fatalf("dash = %v ft, %v; want 60 ft", remaining, err)
	}
	remaining, err = m.Dash("hero")
	if errors.CodeOf(err) != errors.CodeDashAlreadyUsed {
		t.Fatalf("second dash error = %v", err)
	}
	if remaining != 60 {
		t.Fatalf("failed dash changed the budget: %v", remaining)
	}
}

func TestOpportunityAttackDetection(t *testing.T) {
	m := newTestManager()
	// Adjacent enemy threatens the hero's starting tile.
	goblin := m.State().Participant("goblin")
	goblin.Position = &Position{X: 1, Y: 1}

	result := m.ValidateMove("hero", Position{X: 3, Y: 0})
	if !result.Valid {
		t.Fatalf("move should be valid: %s", result.Error)
	}
	if !result.TriggersOpportunityAttacks {
		t.Fatal("leaving an enemy's reach should provoke")
	}

	// Shuffling inside reach does not provoke.
	result = m.ValidateMove("hero", Position{X: 0, Y: 1})
	if !result.Valid || result.TriggersOpportunityAttacks {
		t.Fatalf("staying in reach should not provoke: %+v", result)
	}

	// Defeated enemies threaten nothing.
	goblin.HP = 0
	result = m.ValidateMove("hero", Position{X: 3, Y: 0})
	if !result.Valid || result.TriggersOpportunityAttacks {
		t.Fatalf("dead enemies should not provoke: %+v", result)
	}
}

func TestExecuteMoveClampsBudget(t *testing.T) {
	m := newTestManager()
	if err := m.ExecuteMove("hero", Position{X: 1, Y: 0}, 45); err != nil {
		t.Fatalf("execute: %v", err)
	}
	remaining, _ := m.RemainingMovement("hero")
	if remaining != 0 {
		t.Fatalf("budget must never go negative, got %v", remaining)
	}
}
