// Package sqlite provides a SQLite-backed encounter store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/arquebus/battlegrid/internal/platform/storage/sqlitemigrate"
	"github.com/arquebus/battlegrid/internal/spatial"
	"github.com/arquebus/battlegrid/internal/storage"
	"github.com/arquebus/battlegrid/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const (
	terrainKindObstacle  = "obstacle"
	terrainKindDifficult = "difficult"
)

// Store persists encounter spatial state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite encounter store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveEncounter inserts or replaces the full encounter record in one
// transaction.
func (s *Store) SaveEncounter(ctx context.Context, record storage.EncounterRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("encounter id is required")
	}
	if record.State == nil {
		return fmt.Errorf("encounter state is required")
	}

	createdAt := record.CreatedAt.UTC()
	updatedAt := record.UpdatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	bounds := record.State.Bounds
	_, err = tx.ExecContext(ctx,
		`INSERT INTO encounters (id, name, min_x, max_x, min_y, max_y, min_z, max_z, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   min_x = excluded.min_x, max_x = excluded.max_x,
		   min_y = excluded.min_y, max_y = excluded.max_y,
		   min_z = excluded.min_z, max_z = excluded.max_z,
		   updated_at = excluded.updated_at`,
		id, record.Name,
		bounds.MinX, bounds.MaxX, bounds.MinY, bounds.MaxY,
		nullableInt(bounds.MinZ), nullableInt(bounds.MaxZ),
		toMillis(createdAt), toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("save encounter: %w", err)
	}

	for _, table := range []string{"encounter_participants", "encounter_terrain"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE encounter_id = ?", id); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, p := range record.State.Participants {
		var posX, posY, posZ any
		if p.Position != nil {
			posX = p.Position.X
			posY = p.Position.Y
			posZ = nullableInt(p.Position.Z)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO encounter_participants (
			   encounter_id, participant_id, pos_x, pos_y, pos_z,
			   size, movement_speed, movement_remaining, has_dashed, hp, is_enemy, sort_order
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, p.ID, posX, posY, posZ,
			string(p.Size), p.MovementSpeed, p.MovementRemaining,
			boolToInt(p.HasDashed), p.HP, boolToInt(p.IsEnemy), i,
		)
		if err != nil {
			return fmt.Errorf("save participant %s: %w", p.ID, err)
		}
	}

	// Terrain tiles are stored in the canonical "x,y" wire format so a
	// save/load round trip reproduces the sets exactly.
	for kind, set := range map[string]spatial.TileSet{
		terrainKindObstacle:  record.State.Terrain.Obstacles,
		terrainKindDifficult: record.State.Terrain.DifficultTerrain,
	} {
		for _, key := range set.Keys() {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO encounter_terrain (encounter_id, tile_key, kind) VALUES (?, ?, ?)",
				id, key, kind)
			if err != nil {
				return fmt.Errorf("save terrain tile %s: %w", key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// GetEncounter loads one encounter by id.
func (s *Store) GetEncounter(ctx context.Context, id string) (storage.EncounterRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EncounterRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EncounterRecord{}, fmt.Errorf("storage is not configured")
	}

	var (
		record     storage.EncounterRecord
		minZ, maxZ sql.NullInt64
		createdAt  int64
		updatedAt  int64
		state      = spatial.NewCombatState(spatial.GridBounds{})
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, min_x, max_x, min_y, max_y, min_z, max_z, created_at, updated_at
		 FROM encounters WHERE id = ?`, id).
		Scan(&record.ID, &record.Name,
			&state.Bounds.MinX, &state.Bounds.MaxX,
			&state.Bounds.MinY, &state.Bounds.MaxY,
			&minZ, &maxZ, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return storage.EncounterRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.EncounterRecord{}, fmt.Errorf("load encounter: %w", err)
	}
	if minZ.Valid {
		v := int(minZ.Int64)
		state.Bounds.MinZ = &v
	}
	if maxZ.Valid {
		v := int(maxZ.Int64)
		state.Bounds.MaxZ = &v
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)

	if err := s.loadParticipants(ctx, id, state); err != nil {
		return storage.EncounterRecord{}, err
	}
	if err := s.loadTerrain(ctx, id, state); err != nil {
		return storage.EncounterRecord{}, err
	}
	record.State = state
	return record, nil
}

func (s *Store) loadParticipants(ctx context.Context, id string, state *spatial.CombatState) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT participant_id, pos_x, pos_y, pos_z, size, movement_speed,
		        movement_remaining, has_dashed, hp, is_enemy
		 FROM encounter_participants WHERE encounter_id = ? ORDER BY sort_order`, id)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                spatial.Participant
			posX, posY, posZ sql.NullInt64
			size             string
			hasDashed, enemy int
		)
		err := rows.Scan(&p.ID, &posX, &posY, &posZ, &size,
			&p.MovementSpeed, &p.MovementRemaining, &hasDashed, &p.HP, &enemy)
		if err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		p.Size = spatial.Size(size)
		p.HasDashed = hasDashed != 0
		p.IsEnemy = enemy != 0
		if posX.Valid && posY.Valid {
			pos := &spatial.Position{X: int(posX.Int64), Y: int(posY.Int64)}
			if posZ.Valid {
				z := int(posZ.Int64)
				pos.Z = &z
			}
			p.Position = pos
		}
		added := p
		state.Participants = append(state.Participants, &added)
	}
	return rows.Err()
}

func (s *Store) loadTerrain(ctx context.Context, id string, state *spatial.CombatState) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT tile_key, kind FROM encounter_terrain WHERE encounter_id = ?", id)
	if err != nil {
		return fmt.Errorf("load terrain: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, kind string
		if err := rows.Scan(&key, &kind); err != nil {
			return fmt.Errorf("scan terrain: %w", err)
		}
		tile, err := spatial.ParseTileKey(key)
		if err != nil {
			return fmt.Errorf("parse terrain tile: %w", err)
		}
		switch kind {
		case terrainKindObstacle:
			state.Terrain.Obstacles.Add(tile)
		case terrainKindDifficult:
			state.Terrain.DifficultTerrain.Add(tile)
		}
	}
	return rows.Err()
}

// ListEncounters returns summaries ordered by most recent update.
func (s *Store) ListEncounters(ctx context.Context) ([]storage.EncounterSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT e.id, e.name, e.updated_at,
		        (SELECT COUNT(1) FROM encounter_participants p WHERE p.encounter_id = e.id)
		 FROM encounters e ORDER BY e.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	var summaries []storage.EncounterSummary
	for rows.Next() {
		var (
			summary   storage.EncounterSummary
			updatedAt int64
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &updatedAt, &summary.ParticipantCount); err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		summary.UpdatedAt = fromMillis(updatedAt)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// DeleteEncounter removes an encounter and its rows. Unknown ids are a
// no-op.
func (s *Store) DeleteEncounter(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM encounters WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete encounter: %w", err)
	}
	return nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
