package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arquebus/battlegrid/internal/platform/errors"
	"github.com/arquebus/battlegrid/internal/spatial"
	"github.com/arquebus/battlegrid/internal/storage/sqlite"
)

func newTestRegistry(t *testing.T) (*Registry, *sqlite.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := sqlite.Open(filepath.Join(dir, "encounters.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewRegistry(store, dir), store, dir
}

func addTestParticipants(t *testing.T, reg *Registry, encounterID string) {
	t.Helper()
	ctx := context.Background()
	hero := spatial.Participant{ID: "hero", Size: spatial.SizeMedium, HP: 24, MovementSpeed: 30}
	heroPos := spatial.Position{X: 0, Y: 0}
	hero.Position = &heroPos
	if err := reg.AddParticipant(ctx, encounterID, hero); err != nil {
		t.Fatalf("add hero: %v", err)
	}
	goblin := spatial.Participant{ID: "goblin", Size: spatial.SizeSmall, HP: 7, MovementSpeed: 30, IsEnemy: true}
	goblinPos := spatial.Position{X: 10, Y: 10}
	goblin.Position = &goblinPos
	if err := reg.AddParticipant(ctx, encounterID, goblin); err != nil {
		t.Fatalf("add goblin: %v", err)
	}
}

func TestRegistryEncounterLifecycle(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	info, err := reg.CreateEncounter(ctx, "skirmish", spatial.GridBounds{MaxX: 19, MaxY: 19})
	if err != nil {
		t.Fatalf("CreateEncounter() error = %v", err)
	}
	if info.ID == "" || info.Name != "skirmish" {
		t.Fatalf("info = %+v", info)
	}
	addTestParticipants(t, reg, info.ID)

	if err := reg.AddParticipant(ctx, info.ID, spatial.Participant{ID: "hero", HP: 1}); err == nil {
		t.Errorf("duplicate participant id should be rejected")
	}

	remaining, err := reg.StartTurn(ctx, info.ID, "hero")
	if err != nil || remaining != 30 {
		t.Fatalf("StartTurn() = %v, %v; want 30 ft", remaining, err)
	}

	validation, err := reg.ValidateMove(ctx, info.ID, "hero", spatial.Position{X: 3, Y: 0})
	if err != nil {
		t.Fatalf("ValidateMove() error = %v", err)
	}
	if !validation.Valid || validation.CostFeet != 15 {
		t.Fatalf("validation = %+v, want valid 15 ft", validation)
	}

	validation, remaining, err = reg.Move(ctx, info.ID, "hero", spatial.Position{X: 3, Y: 0})
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !validation.Valid || remaining != 15 {
		t.Fatalf("Move() = %+v remaining %v, want valid with 15 ft left", validation, remaining)
	}

	remaining, err = reg.Dash(ctx, info.ID, "hero")
	if err != nil || remaining != 45 {
		t.Fatalf("Dash() = %v, %v; want 45 ft", remaining, err)
	}
}

func TestRegistryMoveRejectionKeepsState(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	info, err := reg.CreateEncounter(ctx, "", spatial.GridBounds{MaxX: 19, MaxY: 19})
	if err != nil {
		t.Fatalf("CreateEncounter() error = %v", err)
	}
	addTestParticipants(t, reg, info.ID)
	if _, err := reg.StartTurn(ctx, info.ID, "hero"); err != nil {
		t.Fatalf("StartTurn() error = %v", err)
	}

	validation, remaining, err := reg.Move(ctx, info.ID, "hero", spatial.Position{X: 19, Y: 19})
	if err != nil {
		t.Fatalf("Move() error = %v; rule failures are in-band", err)
	}
	if validation.Valid {
		t.Fatalf("move of 95+ ft on a 30 ft budget should be invalid")
	}
	if validation.ErrorCode != string(errors.CodeInsufficientMovement) {
		t.Errorf("ErrorCode = %q", validation.ErrorCode)
	}
	if remaining != 30 {
		t.Errorf("remaining = %v after rejected move, want untouched 30", remaining)
	}
}

func TestRegistrySaveAndLoadRoundTrip(t *testing.T) {
	reg, store, _ := newTestRegistry(t)
	ctx := context.Background()

	info, err := reg.CreateEncounter(ctx, "skirmish", spatial.GridBounds{MaxX: 19, MaxY: 19})
	if err != nil {
		t.Fatalf("CreateEncounter() error = %v", err)
	}
	addTestParticipants(t, reg, info.ID)
	if _, err := reg.StartTurn(ctx, info.ID, "hero"); err != nil {
		t.Fatalf("StartTurn() error = %v", err)
	}
	if _, _, err := reg.Move(ctx, info.ID, "hero", spatial.Position{X: 3, Y: 0}); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if err := reg.SaveEncounter(ctx, info.ID); err != nil {
		t.Fatalf("SaveEncounter() error = %v", err)
	}

	// A fresh registry sharing the store simulates a process restart.
	restored := NewRegistry(store, "")
	loaded, err := restored.LoadEncounter(ctx, info.ID)
	if err != nil {
		t.Fatalf("LoadEncounter() error = %v", err)
	}
	if loaded.Name != "skirmish" || loaded.ParticipantCount != 2 {
		t.Fatalf("loaded = %+v", loaded)
	}
	remaining, err := restored.RemainingMovement(ctx, info.ID, "hero")
	if err != nil || remaining != 15 {
		t.Errorf("RemainingMovement() = %v, %v; want persisted 15 ft", remaining, err)
	}
	// The hero's saved position still occupies (3,0).
	err = restored.PlaceParticipant(ctx, info.ID, "goblin", spatial.Position{X: 3, Y: 0})
	if errors.CodeOf(err) != errors.CodeCollision {
		t.Errorf("placing onto the hero's saved tile: error = %v, want collision", err)
	}

	entries, err := restored.ListEncounters(ctx)
	if err != nil || len(entries) != 1 || entries[0].EncounterID != info.ID {
		t.Errorf("ListEncounters() = %+v, %v", entries, err)
	}
}

func TestRegistryLoadUnknownEncounter(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	_, err := reg.LoadEncounter(context.Background(), "enc-missing")
	if errors.CodeOf(err) != errors.CodeEncounterNotFound {
		t.Fatalf("LoadEncounter() error = %v, want encounter-not-found", err)
	}
	_, err = reg.StartTurn(context.Background(), "enc-missing", "hero")
	if errors.CodeOf(err) != errors.CodeEncounterNotFound {
		t.Fatalf("StartTurn() error = %v, want encounter-not-found", err)
	}
}

func TestRegistryScenarioEncounter(t *testing.T) {
	reg, _, dir := newTestRegistry(t)
	ctx := context.Background()

	script := `
return {
  name = "Bridge Ambush",
  bounds = { min_x = 0, max_x = 19, min_y = 0, max_y = 19 },
  obstacles = { {5, 5} },
  participants = {
    { id = "hero", x = 0, y = 0, hp = 24 },
    { id = "ogre", x = 10, y = 10, size = "large", hp = 59, enemy = true },
  },
}
`
	if err := os.WriteFile(filepath.Join(dir, "bridge.lua"), []byte(script), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	info, err := reg.CreateEncounterFromScenario(ctx, "bridge.lua")
	if err != nil {
		t.Fatalf("CreateEncounterFromScenario() error = %v", err)
	}
	if info.Name != "Bridge Ambush" || info.ParticipantCount != 2 {
		t.Fatalf("info = %+v", info)
	}

	result, err := reg.CircleTargets(ctx, info.ID, spatial.Position{X: 10, Y: 10}, 5, nil)
	if err != nil {
		t.Fatalf("CircleTargets() error = %v", err)
	}
	found := false
	for _, id := range result.AffectedParticipants {
		if id == "ogre" {
			found = true
		}
	}
	if !found {
		t.Errorf("ogre missing from circle at its own position: %+v", result)
	}
}

func TestRegistryScenarioRejectsPathTraversal(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	for _, name := range []string{"../secrets.lua", "maps/bridge.lua", "..", "."} {
		if _, err := reg.CreateEncounterFromScenario(context.Background(), name); errors.CodeOf(err) != errors.CodeScenarioInvalid {
			t.Errorf("scenario %q: error = %v, want scenario-invalid", name, err)
		}
	}
}

func TestRegistryRejectsInvalidBounds(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.CreateEncounter(ctx, "", spatial.GridBounds{MinX: 5, MaxX: 0, MaxY: 9})
	if errors.CodeOf(err) != errors.CodeInvalidBounds {
		t.Fatalf("inverted x bounds: error = %v, want invalid-bounds", err)
	}
	z := 3
	_, err = reg.CreateEncounter(ctx, "", spatial.GridBounds{MaxX: 9, MaxY: 9, MinZ: &z})
	if errors.CodeOf(err) != errors.CodeInvalidBounds {
		t.Fatalf("half-open z bounds: error = %v, want invalid-bounds", err)
	}
}
