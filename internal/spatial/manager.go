package spatial

import (
	stderrors "errors"

	"github.com/arquebus/battlegrid/internal/platform/errors"
	"github.com/arquebus/battlegrid/internal/platform/errors/i18n"
)

// MovementValidation is the result of a move check. Failures are reported
// in-band; nothing here is a Go error because every outcome is recoverable
// by the caller.
type MovementValidation struct {
	Valid                      bool       `json:"valid"`
	ErrorCode                  string     `json:"error_code,omitempty"`
	Error                      string     `json:"error,omitempty"`
	Path                       []Position `json:"path,omitempty"`
	CostFeet                   float64    `json:"cost_feet"`
	TriggersOpportunityAttacks bool       `json:"triggers_opportunity_attacks"`
}

// Manager owns the mutable spatial state of one encounter and exposes all
// grid operations on it. It performs no locking: concurrent requests
// against the same encounter must be serialized by the caller.
type Manager struct {
	state *CombatState
}

// NewManager wraps an encounter state.
func NewManager(state *CombatState) *Manager {
	return &Manager{state: state}
}

// State returns the underlying encounter state, e.g. for persistence when
// the encounter ends.
func (m *Manager) State() *CombatState {
	return m.state
}

// StartTurn resets the participant's movement budget for a new turn.
func (m *Manager) StartTurn(id string) error {
	p := m.state.Participant(id)
	if p == nil {
		return notFound(id)
	}
	StartTurn(p)
	return nil
}

// Dash doubles the participant's movement for the turn. A second dash in
// the same turn fails and leaves the budget unchanged.
func (m *Manager) Dash(id string) (float64, error) {
	p := m.state.Participant(id)
	if p == nil {
		return 0, notFound(id)
	}
	if err := Dash(p); err != nil {
		return p.MovementRemaining, err
	}
	return p.MovementRemaining, nil
}

// RemainingMovement returns the participant's movement budget in feet.
func (m *Manager) RemainingMovement(id string) (float64, error) {
	p := m.state.Participant(id)
	if p == nil {
		return 0, notFound(id)
	}
	return p.MovementRemaining, nil
}

// ValidateMove checks whether the participant can move to destination and
// returns the path and its cost when it can.
//
// A participant that has no position yet is always allowed to move: the
// check returns a single-tile path with zero cost and skips collision
// detection entirely. Placement that must respect collisions goes through
// SetPosition instead.
func (m *Manager) ValidateMove(id string, destination Position) MovementValidation {
	p := m.state.Participant(id)
	if p == nil {
		return failedValidation(notFound(id))
	}

	if err := ValidatePosition(destination, m.state.Bounds, "destination"); err != nil {
		return failedValidation(err)
	}

	if !p.Placed() {
		return MovementValidation{Valid: true, Path: []Position{destination}}
	}

	if err := ValidatePosition(*p.Position, m.state.Bounds, "current position"); err != nil {
		return failedValidation(err)
	}

	obstacles := m.state.BuildObstacles(id)
	difficult := m.state.DifficultTiles()

	if IsBlocked(destination, p.Size, obstacles) {
		return failedValidation(errors.WithMetadata(errors.CodeCollision,
			"destination "+destination.Tile().Key()+" is blocked for a "+string(p.Size)+" creature",
			map[string]string{"tile": destination.Tile().Key(), "size": string(p.Size)}))
	}

	path := FindPath(PathQuery{
		Start:     *p.Position,
		End:       destination,
		Size:      p.Size,
		Obstacles: obstacles,
		Difficult: difficult,
		Bounds:    m.state.Bounds,
		Diagonal:  DiagonalFiveTenFive,
	})
	if path == nil {
		return failedValidation(errors.WithMetadata(errors.CodeNoPath,
			"no path from "+p.Position.Tile().Key()+" to "+destination.Tile().Key(),
			map[string]string{"from": p.Position.Tile().Key(), "to": destination.Tile().Key()}))
	}

	cost := PathCost(path, difficult)
	if cost > p.MovementRemaining {
		return failedValidation(errors.WithMetadata(errors.CodeInsufficientMovement,
			"move costs "+formatFeet(cost)+" ft but only "+formatFeet(p.MovementRemaining)+" ft remain",
			map[string]string{"cost": formatFeet(cost), "remaining": formatFeet(p.MovementRemaining)}))
	}

	return MovementValidation{
		Valid:                      true,
		Path:                       path,
		CostFeet:                   cost,
		TriggersOpportunityAttacks: m.triggersOpportunityAttack(p, path),
	}
}

// ExecuteMove commits a previously validated move: it sets the position to
// destination and deducts costFeet from the movement budget. It does not
// re-validate; callers run ValidateMove first. The budget never goes below
// zero.
func (m *Manager) ExecuteMove(id string, destination Position, costFeet float64) error {
	p := m.state.Participant(id)
	if p == nil {
		return notFound(id)
	}
	pos := destination
	p.Position = &pos
	p.MovementRemaining -= costFeet
	if p.MovementRemaining < 0 {
		p.MovementRemaining = 0
	}
	return nil
}

// SetPosition places a token, validating bounds and collision before
// committing.
func (m *Manager) SetPosition(id string, position Position) error {
	p := m.state.Participant(id)
	if p == nil {
		return notFound(id)
	}
	if err := ValidatePosition(position, m.state.Bounds, "initial position"); err != nil {
		return err
	}
	obstacles := m.state.BuildObstacles(id)
	if IsBlocked(position, p.Size, obstacles) {
		return errors.WithMetadata(errors.CodeCollision,
			"initial position "+position.Tile().Key()+" is blocked for a "+string(p.Size)+" creature",
			map[string]string{"tile": position.Tile().Key(), "size": string(p.Size)})
	}
	pos := position
	p.Position = &pos
	return nil
}

// CircleTargets selects tiles and participants inside a circular area.
func (m *Manager) CircleTargets(center Position, radiusFeet float64, excludeIDs []string) AoEResult {
	return m.state.CircleTargets(center, radiusFeet, excludeIDs)
}

// ConeTargets selects tiles and participants inside a cone.
func (m *Manager) ConeTargets(origin, direction Position, lengthFeet, angleDegrees float64, excludeIDs []string) (AoEResult, error) {
	return m.state.ConeTargets(origin, direction, lengthFeet, angleDegrees, excludeIDs)
}

// LineTargets selects tiles and participants along a line.
func (m *Manager) LineTargets(start, end Position, excludeIDs []string) AoEResult {
	return m.state.LineTargets(start, end, excludeIDs)
}

// HasLineOfSight reports whether static terrain interrupts the line
// between two positions.
func (m *Manager) HasLineOfSight(from, to Position) bool {
	return m.state.HasLineOfSight(from, to)
}

// triggersOpportunityAttack reports whether the path leaves the 5 ft reach
// of any living opposing participant: stepping from a threatened tile to
// an unthreatened one provokes.
func (m *Manager) triggersOpportunityAttack(mover *Participant, path []Position) bool {
	if len(path) < 2 {
		return false
	}
	for _, other := range m.state.Participants {
		if other.ID == mover.ID || other.HP <= 0 || !other.Placed() {
			continue
		}
		if other.IsEnemy == mover.IsEnemy {
			continue
		}
		reach := expandByOne(other.Footprint())
		for i := 0; i < len(path)-1; i++ {
			from := OccupiedTiles(path[i], mover.Size)
			to := OccupiedTiles(path[i+1], mover.Size)
			if from.Intersects(reach) && !to.Intersects(reach) {
				return true
			}
		}
	}
	return false
}

// expandByOne grows a tile set by one tile in every direction (Chebyshev),
// i.e. the melee reach envelope of a footprint.
func expandByOne(tiles TileSet) TileSet {
	expanded := make(TileSet, len(tiles)*3)
	for t := range tiles {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				expanded.Add(TileAt(t.X()+dx, t.Y()+dy))
			}
		}
	}
	return expanded
}

func notFound(id string) error {
	return errors.WithMetadata(errors.CodeParticipantNotFound,
		"participant "+id+" is not in this encounter",
		map[string]string{"id": id})
}

// failedValidation flattens a domain error into the in-band result shape,
// rendering the user-facing message from the catalog.
func failedValidation(err error) MovementValidation {
	code := errors.CodeOf(err)
	var domainErr *errors.Error
	if code == errors.CodeUnknown || !stderrors.As(err, &domainErr) {
		return MovementValidation{ErrorCode: string(errors.CodeUnknown), Error: err.Error()}
	}
	return MovementValidation{
		ErrorCode: string(code),
		Error:     i18n.GetCatalog("").Format(string(code), domainErr.Metadata),
	}
}
