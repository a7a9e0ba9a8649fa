package domain

// PositionInput is a grid coordinate in tool inputs. Z is optional and
// only meaningful on encounters with vertical bounds.
type PositionInput struct {
	X int  `json:"x" jsonschema:"grid x coordinate"`
	Y int  `json:"y" jsonschema:"grid y coordinate"`
	Z *int `json:"z,omitempty" jsonschema:"optional elevation coordinate"`
}

// PositionResult is a grid coordinate in tool results.
type PositionResult struct {
	X int  `json:"x"`
	Y int  `json:"y"`
	Z *int `json:"z,omitempty"`
}

// BoundsInput describes the playable grid rectangle. All limits are
// inclusive.
type BoundsInput struct {
	MinX int  `json:"min_x" jsonschema:"smallest valid x coordinate"`
	MaxX int  `json:"max_x" jsonschema:"largest valid x coordinate"`
	MinY int  `json:"min_y" jsonschema:"smallest valid y coordinate"`
	MaxY int  `json:"max_y" jsonschema:"largest valid y coordinate"`
	MinZ *int `json:"min_z,omitempty" jsonschema:"optional smallest elevation"`
	MaxZ *int `json:"max_z,omitempty" jsonschema:"optional largest elevation"`
}

// EncounterCreateInput represents the MCP tool input for encounter
// creation. Scenario and bounds are mutually exclusive: a scenario file
// carries its own bounds, terrain, and participants.
type EncounterCreateInput struct {
	Name     string       `json:"name,omitempty" jsonschema:"display name for the encounter"`
	Bounds   *BoundsInput `json:"bounds,omitempty" jsonschema:"grid bounds for an empty encounter"`
	Scenario string       `json:"scenario,omitempty" jsonschema:"scenario file name to seed the encounter from"`
}

// EncounterCreateResult represents the MCP tool output for encounter
// creation.
type EncounterCreateResult struct {
	EncounterID      string `json:"encounter_id" jsonschema:"encounter identifier for subsequent tool calls"`
	Name             string `json:"name" jsonschema:"encounter display name"`
	ParticipantCount int    `json:"participant_count" jsonschema:"number of participants seeded into the encounter"`
}

// EncounterSaveInput represents the MCP tool input for persisting an
// encounter.
type EncounterSaveInput struct {
	EncounterID string `json:"encounter_id" jsonschema:"encounter identifier"`
}

// EncounterSaveResult represents the MCP tool output for persisting an
// encounter.
type EncounterSaveResult struct {
	EncounterID string `json:"encounter_id" jsonschema:"encounter identifier"`
	Saved       bool   `json:"saved" jsonschema:"whether the encounter was written to storage"`
}

// EncounterLoadInput represents the MCP tool input for restoring a saved
// encounter.
type EncounterLoadInput struct {
	EncounterID string `json:"encounter_id" jsonschema:"encounter identifier"`
}

// EncounterLoadResult represents the MCP tool output for restoring a
// saved encounter.
type EncounterLoadResult struct {
	EncounterID      string `json:"encounter_id" jsonschema:"encounter identifier"`
	Name             string `json:"name" jsonschema:"encounter display name"`
	ParticipantCount int    `json:"participant_count" jsonschema:"number of participants in the encounter"`
}

// EncounterListInput represents the MCP tool input for listing saved
// encounters.
type EncounterListInput struct{}

// EncounterListEntry is one saved encounter in a listing.
type EncounterListEntry struct {
	EncounterID      string `json:"encounter_id"`
	Name             string `json:"name"`
	ParticipantCount int    `json:"participant_count"`
	UpdatedAt        string `json:"updated_at"`
}

// EncounterListResult represents the MCP tool output for listing saved
// encounters.
type EncounterListResult struct {
	Encounters []EncounterListEntry `json:"encounters" jsonschema:"saved encounters, most recently updated first"`
}

// ParticipantAddInput represents the MCP tool input for adding a
// participant to an encounter. Position is optional: unplaced
// participants join the grid later via participant_place.
type ParticipantAddInput struct {
	EncounterID   string         `json:"encounter_id" jsonschema:"encounter identifier"`
	ParticipantID string         `json:"participant_id" jsonschema:"unique participant identifier"`
	Size          string         `json:"size,omitempty" jsonschema:"creature size (tiny, small, medium, large, huge, gargantuan); defaults to medium"`
	HP            int            `json:"hp" jsonschema:"current hit points; participants at 0 or below do not block movement"`
	SpeedFeet     float64        `json:"speed_feet,omitempty" jsonschema:"movement speed in feet per turn; defaults to 30"`
	IsEnemy       bool           `json:"is_enemy,omitempty" jsonschema:"whether the participant opposes the player side"`
	Position      *PositionInput `json:"position,omitempty" jsonschema:"optional starting position"`
}

// ParticipantAddResult represents the MCP tool output for adding a
// participant.
type ParticipantAddResult struct {
	EncounterID   string `json:"encounter_id" jsonschema:"encounter identifier"`
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
	Size          string `json:"size" jsonschema:"creature size"`
	Placed        bool   `json:"placed" jsonschema:"whether the participant has a grid position"`
}

// ParticipantPlaceInput represents the MCP tool input for placing a
// token on the grid.
type ParticipantPlaceInput struct {
	EncounterID   string        `json:"encounter_id" jsonschema:"encounter identifier"`
	ParticipantID string        `json:"participant_id" jsonschema:"participant identifier"`
	Position      PositionInput `json:"position" jsonschema:"grid position for the participant's anchor tile"`
}

// ParticipantPlaceResult represents the MCP tool output for placing a
// token.
type ParticipantPlaceResult struct {
	EncounterID   string         `json:"encounter_id" jsonschema:"encounter identifier"`
	ParticipantID string         `json:"participant_id" jsonschema:"participant identifier"`
	Position      PositionResult `json:"position" jsonschema:"committed grid position"`
}
