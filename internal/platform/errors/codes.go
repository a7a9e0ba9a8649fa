// Package errors provides structured error handling for battlegrid services.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Grid/bounds errors
	CodeOutOfBounds         Code = "GRID_OUT_OF_BOUNDS"
	CodeCoordinateNotFinite Code = "GRID_COORDINATE_NOT_FINITE"
	CodeInvalidBounds       Code = "GRID_INVALID_BOUNDS"
	CodeInvalidTileKey      Code = "GRID_INVALID_TILE_KEY"

	// Movement errors
	CodeCollision            Code = "MOVE_DESTINATION_BLOCKED"
	CodeNoPath               Code = "MOVE_NO_PATH"
	CodeInsufficientMovement Code = "MOVE_INSUFFICIENT_MOVEMENT"
	CodeDashAlreadyUsed      Code = "MOVE_DASH_ALREADY_USED"

	// Participant errors
	CodeParticipantNotFound Code = "PARTICIPANT_NOT_FOUND"
	CodeInvalidSize         Code = "PARTICIPANT_INVALID_SIZE"

	// AoE errors
	CodeInvalidAoEShape Code = "AOE_INVALID_SHAPE"

	// Encounter errors
	CodeEncounterNotFound Code = "ENCOUNTER_NOT_FOUND"

	// Scenario errors
	CodeScenarioInvalid Code = "SCENARIO_INVALID"
)
