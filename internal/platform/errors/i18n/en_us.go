package i18n

// enUS holds the en-US message templates, keyed by error code.
var enUS = map[Code]string{
	"UNKNOWN": "Something went wrong. Please try again.",

	"GRID_OUT_OF_BOUNDS":         "The {{.context}} {{.axis}} coordinate {{.value}} is outside the grid ({{.min}} to {{.max}}).",
	"GRID_COORDINATE_NOT_FINITE": "The {{.field}} value must be a finite number.",
	"GRID_INVALID_BOUNDS":        "The grid bounds are invalid: {{.reason}}.",
	"GRID_INVALID_TILE_KEY":      "The tile key {{.key}} is not a valid \"x,y\" pair.",

	"MOVE_DESTINATION_BLOCKED":   "The destination is blocked by another creature or obstacle.",
	"MOVE_NO_PATH":               "No path exists to the destination.",
	"MOVE_INSUFFICIENT_MOVEMENT": "The move costs {{.cost}} ft but only {{.remaining}} ft of movement remain.",
	"MOVE_DASH_ALREADY_USED":     "Dash has already been used this turn.",

	"PARTICIPANT_NOT_FOUND":    "No participant with id {{.id}} is in this encounter.",
	"PARTICIPANT_INVALID_SIZE": "{{.size}} is not a valid creature size.",

	"AOE_INVALID_SHAPE": "The area of effect is invalid: {{.reason}}.",

	"ENCOUNTER_NOT_FOUND": "No encounter with id {{.encounter_id}} is active.",

	"SCENARIO_INVALID": "The scenario script is invalid: {{.reason}}.",
}
