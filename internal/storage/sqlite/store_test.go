package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/arquebus/battlegrid/internal/spatial"
	"github.com/arquebus/battlegrid/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "encounters.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord() storage.EncounterRecord {
	state := spatial.NewCombatState(spatial.GridBounds{MinX: 0, MaxX: 19, MinY: 0, MaxY: 19})
	state.Terrain.Obstacles.Add(spatial.TileAt(5, 5))
	state.Terrain.Obstacles.Add(spatial.TileAt(-2, 7))
	state.Terrain.DifficultTerrain.Add(spatial.TileAt(6, 5))
	z := 10
	state.Participants = []*spatial.Participant{
		{
			ID:                "hero",
			Position:          &spatial.Position{X: 0, Y: 0, Z: &z},
			Size:              spatial.SizeMedium,
			MovementSpeed:     30,
			MovementRemaining: 15,
			HasDashed:         true,
			HP:                24,
		},
		{
			ID:            "ogre",
			Size:          spatial.SizeLarge,
			MovementSpeed: 40,
			HP:            59,
			IsEnemy:       true,
		},
	}
	return storage.EncounterRecord{
		ID:        "enc-1",
		Name:      "Bridge Ambush",
		State:     state,
		CreatedAt: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, time.March, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestSaveAndGetEncounter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	record := testRecord()

	if err := store.SaveEncounter(ctx, record); err != nil {
		t.Fatalf("SaveEncounter() error = %v", err)
	}
	loaded, err := store.GetEncounter(ctx, "enc-1")
	if err != nil {
		t.Fatalf("GetEncounter() error = %v", err)
	}

	if loaded.Name != "Bridge Ambush" {
		t.Errorf("Name = %q, want %q", loaded.Name, "Bridge Ambush")
	}
	if !loaded.CreatedAt.Equal(record.CreatedAt) || !loaded.UpdatedAt.Equal(record.UpdatedAt) {
		t.Errorf("timestamps = %v / %v, want %v / %v",
			loaded.CreatedAt, loaded.UpdatedAt, record.CreatedAt, record.UpdatedAt)
	}
	if loaded.State.Bounds != record.State.Bounds {
		t.Errorf("Bounds = %+v, want %+v", loaded.State.Bounds, record.State.Bounds)
	}

	if got := len(loaded.State.Participants); got != 2 {
		t.Fatalf("len(Participants) = %d, want 2", got)
	}
	hero := loaded.State.Participants[0]
	if hero.ID != "hero" {
		t.Fatalf("Participants[0].ID = %q, want hero; insertion order must survive", hero.ID)
	}
	if !hero.Placed() || hero.Position.X != 0 || hero.Position.Y != 0 {
		t.Errorf("hero position = %+v, want (0,0)", hero.Position)
	}
	if hero.Position.Z == nil || *hero.Position.Z != 10 {
		t.Errorf("hero z = %v, want 10", hero.Position.Z)
	}
	if !hero.HasDashed || hero.MovementRemaining != 15 {
		t.Errorf("hero movement state = dashed %v remaining %v, want true / 15",
			hero.HasDashed, hero.MovementRemaining)
	}
	ogre := loaded.State.Participants[1]
	if ogre.Placed() {
		t.Errorf("ogre should remain unplaced, got position %+v", ogre.Position)
	}
	if ogre.Size != spatial.SizeLarge || !ogre.IsEnemy {
		t.Errorf("ogre = size %q enemy %v, want large / true", ogre.Size, ogre.IsEnemy)
	}

	wantObstacles := []string{"-2,7", "5,5"}
	if got := loaded.State.Terrain.Obstacles.Keys(); len(got) != 2 || got[0] != wantObstacles[0] || got[1] != wantObstacles[1] {
		t.Errorf("Obstacles = %v, want %v", got, wantObstacles)
	}
	if !loaded.State.Terrain.DifficultTerrain.Has(spatial.TileAt(6, 5)) {
		t.Errorf("difficult terrain lost tile 6,5: %v", loaded.State.Terrain.DifficultTerrain.Keys())
	}
}

func TestSaveEncounterReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	record := testRecord()

	if err := store.SaveEncounter(ctx, record); err != nil {
		t.Fatalf("SaveEncounter() error = %v", err)
	}
	record.Name = "Bridge Ambush, round 2"
	record.State.Participants = record.State.Participants[:1]
	record.State.Terrain.Obstacles = spatial.TileSet{}
	if err := store.SaveEncounter(ctx, record); err != nil {
		t.Fatalf("SaveEncounter() resave error = %v", err)
	}

	loaded, err := store.GetEncounter(ctx, "enc-1")
	if err != nil {
		t.Fatalf("GetEncounter() error = %v", err)
	}
	if loaded.Name != "Bridge Ambush, round 2" {
		t.Errorf("Name = %q after resave", loaded.Name)
	}
	if got := len(loaded.State.Participants); got != 1 {
		t.Errorf("len(Participants) = %d after resave, want 1", got)
	}
	if got := len(loaded.State.Terrain.Obstacles); got != 0 {
		t.Errorf("obstacles = %v after resave, want none", loaded.State.Terrain.Obstacles.Keys())
	}
}

func TestGetEncounterNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetEncounter(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetEncounter() error = %v, want ErrNotFound", err)
	}
}

func TestListEncounters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := testRecord()
	newer := testRecord()
	newer.ID = "enc-2"
	newer.Name = "Tower Assault"
	newer.UpdatedAt = older.UpdatedAt.Add(time.Hour)
	for _, record := range []storage.EncounterRecord{older, newer} {
		if err := store.SaveEncounter(ctx, record); err != nil {
			t.Fatalf("SaveEncounter(%s) error = %v", record.ID, err)
		}
	}

	summaries, err := store.ListEncounters(ctx)
	if err != nil {
		t.Fatalf("ListEncounters() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}
	if summaries[0].ID != "enc-2" || summaries[1].ID != "enc-1" {
		t.Errorf("order = [%s %s], want newest first", summaries[0].ID, summaries[1].ID)
	}
	if summaries[0].ParticipantCount != 2 {
		t.Errorf("ParticipantCount = %d, want 2", summaries[0].ParticipantCount)
	}
}

func TestDeleteEncounter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveEncounter(ctx, testRecord()); err != nil {
		t.Fatalf("SaveEncounter() error = %v", err)
	}
	if err := store.DeleteEncounter(ctx, "enc-1"); err != nil {
		t.Fatalf("DeleteEncounter() error = %v", err)
	}
	if _, err := store.GetEncounter(ctx, "enc-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetEncounter() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteEncounter(ctx, "enc-1"); err != nil {
		t.Fatalf("DeleteEncounter() second call error = %v", err)
	}
}
