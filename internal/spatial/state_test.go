package spatial

import (
	"encoding/json"
	"reflect"
	"testing"
)

func testBounds() GridBounds {
	return GridBounds{MinX: 0, MaxX: 19, MinY: 0, MaxY: 19}
}

func TestBuildObstaclesSkipsDefeatedAndExcluded(t *testing.T) {
	state := NewCombatState(testBounds())
	state.AddParticipant(&Participant{ID: "hero", Position: &Position{X: 1, Y: 1}, Size: SizeMedium, HP: 10})
	state.AddParticipant(&Participant{ID: "ogre", Position: &Position{X: 4, Y: 4}, Size: SizeLarge, HP: 20})
	state.AddParticipant(&Participant{ID: "corpse", Position: &Position{X: 8, Y: 8}, Size: SizeMedium, HP: 0})
	state.AddParticipant(&Participant{ID: "unplaced", Size: SizeMedium, HP: 5})
	state.Terrain.Obstacles.Add(TileAt(0, 9))

	blocked := state.BuildObstacles("hero")
	if blocked.Has(TileAt(1, 1)) {
		t.Fatal("excluded participant should not block")
	}
	if blocked.Has(TileAt(8, 8)) {
		t.Fatal("defeated creatures never block movement")
	}
	for _, tile := range []Tile{TileAt(4, 4), TileAt(5, 4), TileAt(4, 5), TileAt(5, 5)} {
		if !blocked.Has(tile) {
			t.Fatalf("large footprint tile %s missing from obstacles", tile.Key())
		}
	}
	if !blocked.Has(TileAt(0, 9)) {
		t.Fatal("static terrain obstacle missing")
	}
}

func TestIsBlockedChecksWholeFootprint(t *testing.T) {
	obstacles := NewTileSet(TileAt(5, 5))
	if IsBlocked(Position{X: 5, Y: 5}, SizeMedium, obstacles) != true {
		t.Fatal("anchor overlap should block")
	}
	// Anchor is clear but the far corner of the 2x2 footprint overlaps.
	if !IsBlocked(Position{X: 4, Y: 4}, SizeLarge, obstacles) {
		t.Fatal("footprint overlap beyond the anchor should block")
	}
	if IsBlocked(Position{X: 3, Y: 3}, SizeMedium, obstacles) {
		t.Fatal("clear tile reported as blocked")
	}
}

func TestCombatStateJSONRoundTrip(t *testing.T) {
	state := NewCombatState(testBounds())
	state.AddParticipant(&Participant{
		ID:                "hero",
		Position:          &Position{X: 2, Y: 3},
		Size:              SizeMedium,
		MovementSpeed:     30,
		MovementRemaining: 15,
		HP:                12,
	})
	state.Terrain.Obstacles.Add(TileAt(5, 5))
	state.Terrain.Obstacles.Add(TileAt(6, 5))
	state.Terrain.DifficultTerrain.Add(TileAt(1, 0))

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var parsed CombatState
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(parsed.Terrain.Obstacles.Keys(), []string{"5,5", "6,5"}) {
		t.Fatalf("obstacle keys = %v", parsed.Terrain.Obstacles.Keys())
	}
	if !reflect.DeepEqual(parsed.Terrain.DifficultTerrain.Keys(), []string{"1,0"}) {
		t.Fatalf("difficult keys = %v", parsed.Terrain.DifficultTerrain.Keys())
	}
	hero := parsed.Participant("hero")
	if hero == nil || hero.Position == nil || hero.Position.X != 2 || hero.Position.Y != 3 {
		t.Fatalf("participant did not survive round trip: %+v", hero)
	}
	if hero.MovementRemaining != 15 {
		t.Fatalf("movement remaining = %v, want 15", hero.MovementRemaining)
	}
}
