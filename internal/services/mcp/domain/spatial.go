package domain

// TurnStartInput represents the MCP tool input for beginning a
// participant's turn.
type TurnStartInput struct {
	EncounterID   string `json:"encounter_id" jsonschema:"encounter identifier"`
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
}

// TurnStartResult represents the MCP tool output for beginning a turn.
type TurnStartResult struct {
	ParticipantID string  `json:"participant_id" jsonschema:"participant identifier"`
	MovementFeet  float64 `json:"movement_feet" jsonschema:"movement budget for the new turn in feet"`
}

// DashInput represents the MCP tool input for the dash action.
type DashInput struct {
	EncounterID   string `json:"encounter_id" jsonschema:"encounter identifier"`
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
}

// DashResult represents the MCP tool output for the dash action.
type DashResult struct {
	ParticipantID string  `json:"participant_id" jsonschema:"participant identifier"`
	MovementFeet  float64 `json:"movement_feet" jsonschema:"movement budget after dashing in feet"`
}

// MovementRemainingInput represents the MCP tool input for querying the
// movement budget.
type MovementRemainingInput struct {
	EncounterID   string `json:"encounter_id" jsonschema:"encounter identifier"`
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
}

// MovementRemainingResult represents the MCP tool output for querying
// the movement budget.
type MovementRemainingResult struct {
	ParticipantID string  `json:"participant_id" jsonschema:"participant identifier"`
	MovementFeet  float64 `json:"movement_feet" jsonschema:"movement remaining this turn in feet"`
}

// MoveValidateInput represents the MCP tool input for checking a move
// without committing it.
type MoveValidateInput struct {
	EncounterID   string        `json:"encounter_id" jsonschema:"encounter identifier"`
	ParticipantID string        `json:"participant_id" jsonschema:"participant identifier"`
	Destination   PositionInput `json:"destination" jsonschema:"destination anchor position"`
}

// MoveValidateResult represents the MCP tool output for a move check.
// Rule failures (blocked, no path, not enough movement) are reported
// in-band so the game master can narrate them.
type MoveValidateResult struct {
	Valid                      bool             `json:"valid" jsonschema:"whether the move is legal"`
	ErrorCode                  string           `json:"error_code,omitempty" jsonschema:"machine-readable failure code when the move is illegal"`
	Error                      string           `json:"error,omitempty" jsonschema:"human-readable failure reason"`
	Path                       []PositionResult `json:"path,omitempty" jsonschema:"tile-by-tile path, start and destination included"`
	CostFeet                   float64          `json:"cost_feet" jsonschema:"movement cost of the path in feet"`
	TriggersOpportunityAttacks bool             `json:"triggers_opportunity_attacks" jsonschema:"whether the path leaves an opposing participant's reach"`
}

// MoveInput represents the MCP tool input for validating and committing
// a move in one call.
type MoveInput struct {
	EncounterID   string        `json:"encounter_id" jsonschema:"encounter identifier"`
	ParticipantID string        `json:"participant_id" jsonschema:"participant identifier"`
	Destination   PositionInput `json:"destination" jsonschema:"destination anchor position"`
}

// MoveResult represents the MCP tool output for a committed move.
type MoveResult struct {
	Validation    MoveValidateResult `json:"validation" jsonschema:"the validation outcome; the move is only committed when valid"`
	MovementFeet  float64            `json:"movement_feet" jsonschema:"movement remaining after the move in feet"`
	ParticipantID string             `json:"participant_id" jsonschema:"participant identifier"`
}

// AoECircleInput represents the MCP tool input for a circular area of
// effect.
type AoECircleInput struct {
	EncounterID string        `json:"encounter_id" jsonschema:"encounter identifier"`
	Center      PositionInput `json:"center" jsonschema:"center of the circle"`
	RadiusFeet  float64       `json:"radius_feet" jsonschema:"radius in feet (5 ft per tile)"`
	ExcludeIDs  []string      `json:"exclude_ids,omitempty" jsonschema:"participant ids to leave out of the result, e.g. the caster"`
}

// AoEConeInput represents the MCP tool input for a cone area of effect.
type AoEConeInput struct {
	EncounterID  string        `json:"encounter_id" jsonschema:"encounter identifier"`
	Origin       PositionInput `json:"origin" jsonschema:"cone apex; never part of the area"`
	Direction    PositionInput `json:"direction" jsonschema:"any position the cone points toward; must differ from origin"`
	LengthFeet   float64       `json:"length_feet" jsonschema:"cone length in feet"`
	AngleDegrees float64       `json:"angle_degrees,omitempty" jsonschema:"full cone angle in degrees; defaults to 90"`
	ExcludeIDs   []string      `json:"exclude_ids,omitempty" jsonschema:"participant ids to leave out of the result"`
}

// AoELineInput represents the MCP tool input for a line area of effect.
type AoELineInput struct {
	EncounterID string        `json:"encounter_id" jsonschema:"encounter identifier"`
	Start       PositionInput `json:"start" jsonschema:"first tile of the line"`
	End         PositionInput `json:"end" jsonschema:"last tile of the line"`
	ExcludeIDs  []string      `json:"exclude_ids,omitempty" jsonschema:"participant ids to leave out of the result"`
}

// AoEResult represents the MCP tool output for any area-of-effect query.
type AoEResult struct {
	AffectedTiles        []string `json:"affected_tiles" jsonschema:"tile keys in x,y form covered by the area"`
	AffectedParticipants []string `json:"affected_participants" jsonschema:"ids of participants whose footprint touches the area"`
}

// LineOfSightInput represents the MCP tool input for a line-of-sight
// check.
type LineOfSightInput struct {
	EncounterID string        `json:"encounter_id" jsonschema:"encounter identifier"`
	From        PositionInput `json:"from" jsonschema:"observer position"`
	To          PositionInput `json:"to" jsonschema:"target position"`
}

// LineOfSightResult represents the MCP tool output for a line-of-sight
// check.
type LineOfSightResult struct {
	HasLineOfSight bool `json:"has_line_of_sight" jsonschema:"whether no obstacle tile interrupts the line; creatures never block sight"`
}
