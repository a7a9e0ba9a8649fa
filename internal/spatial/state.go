package spatial

// Participant is the spatial extension of a combatant record. The base
// record (initiative, conditions, inventory) lives in the external combat
// engine; this struct carries only what the grid needs.
type Participant struct {
	ID                string    `json:"id"`
	Position          *Position `json:"position,omitempty"`
	Size              Size      `json:"size"`
	MovementSpeed     float64   `json:"movement_speed"`
	MovementRemaining float64   `json:"movement_remaining"`
	HasDashed         bool      `json:"has_dashed"`
	HP                int       `json:"hp"`
	IsEnemy           bool      `json:"is_enemy"`
}

// Placed reports whether the participant has a position on the grid.
func (p *Participant) Placed() bool {
	return p != nil && p.Position != nil
}

// Footprint returns the tiles the participant occupies, or nil when it has
// no position yet.
func (p *Participant) Footprint() TileSet {
	if !p.Placed() {
		return nil
	}
	return OccupiedTiles(*p.Position, p.Size)
}

// Terrain holds the static tile features of an encounter map.
type Terrain struct {
	Obstacles        TileSet `json:"obstacles"`
	DifficultTerrain TileSet `json:"difficult_terrain"`
}

// CombatState is the mutable spatial state of one encounter. It is created
// when the encounter starts, mutated only through a Manager, and handed to
// the persistence layer when the encounter ends.
type CombatState struct {
	Participants []*Participant `json:"participants"`
	Bounds       GridBounds     `json:"grid_bounds"`
	Terrain      Terrain        `json:"terrain"`
}

// NewCombatState creates an empty encounter state over the given bounds.
func NewCombatState(bounds GridBounds) *CombatState {
	return &CombatState{
		Bounds: bounds,
		Terrain: Terrain{
			Obstacles:        TileSet{},
			DifficultTerrain: TileSet{},
		},
	}
}

// Participant returns the participant with the given id, or nil.
func (s *CombatState) Participant(id string) *Participant {
	for _, p := range s.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AddParticipant appends a participant. An existing participant with the
// same id is replaced.
func (s *CombatState) AddParticipant(p *Participant) {
	for i, existing := range s.Participants {
		if existing.ID == p.ID {
			s.Participants[i] = p
			return
		}
	}
	s.Participants = append(s.Participants, p)
}

// BuildObstacles returns the set of tiles blocked for movement: every tile
// occupied by a living participant (excluding excludeID) plus the static
// terrain obstacles. Defeated creatures (hp <= 0) never block.
func (s *CombatState) BuildObstacles(excludeID string) TileSet {
	blocked := TileSet{}
	for _, p := range s.Participants {
		if p.ID == excludeID || p.HP <= 0 || !p.Placed() {
			continue
		}
		blocked.AddAll(p.Footprint())
	}
	blocked.AddAll(s.Terrain.Obstacles)
	return blocked
}

// DifficultTiles returns the difficult-terrain set of the map.
func (s *CombatState) DifficultTiles() TileSet {
	return s.Terrain.DifficultTerrain
}

// IsBlocked reports whether any tile of a footprint of the given size
// anchored at dest is in obstacles.
func IsBlocked(dest Position, size Size, obstacles TileSet) bool {
	side := size.FootprintSide()
	for dx := 0; dx < side; dx++ {
		for dy := 0; dy < side; dy++ {
			if obstacles.Has(TileAt(dest.X+dx, dest.Y+dy)) {
				return true
			}
		}
	}
	return false
}
