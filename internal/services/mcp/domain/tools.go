package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// EncounterCreateTool defines the MCP tool schema for encounter creation.
func EncounterCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encounter_create",
		Description: "Creates a combat encounter from explicit grid bounds or a scenario file",
	}
}

// EncounterSaveTool defines the MCP tool schema for persisting an encounter.
func EncounterSaveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encounter_save",
		Description: "Writes the encounter's spatial state to storage",
	}
}

// EncounterLoadTool defines the MCP tool schema for restoring an encounter.
func EncounterLoadTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encounter_load",
		Description: "Restores a saved encounter so its tools can be used again",
	}
}

// EncounterListTool defines the MCP tool schema for listing saved encounters.
func EncounterListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "encounter_list",
		Description: "Lists saved encounters, most recently updated first",
	}
}

// ParticipantAddTool defines the MCP tool schema for adding a participant.
func ParticipantAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "participant_add",
		Description: "Adds a creature to the encounter, optionally placing it on the grid",
	}
}

// ParticipantPlaceTool defines the MCP tool schema for placing a token.
func ParticipantPlaceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "participant_place",
		Description: "Places a participant's token, rejecting out-of-bounds or occupied positions",
	}
}

// TurnStartTool defines the MCP tool schema for starting a turn.
func TurnStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "turn_start",
		Description: "Resets a participant's movement budget at the start of its turn",
	}
}

// DashTool defines the MCP tool schema for the dash action.
func DashTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dash",
		Description: "Doubles a participant's movement for the current turn (once per turn)",
	}
}

// MovementRemainingTool defines the MCP tool schema for the budget query.
func MovementRemainingTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "movement_remaining",
		Description: "Reports how many feet of movement a participant has left this turn",
	}
}

// MoveValidateTool defines the MCP tool schema for checking a move.
func MoveValidateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "move_validate",
		Description: "Checks a move for bounds, collision, pathing, and movement cost without committing it",
	}
}

// MoveTool defines the MCP tool schema for committing a move.
func MoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "move",
		Description: "Validates a move and, when legal, commits it and deducts its cost",
	}
}

// AoECircleTool defines the MCP tool schema for circular areas.
func AoECircleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "aoe_circle",
		Description: "Finds tiles and participants inside a circular area of effect",
	}
}

// AoEConeTool defines the MCP tool schema for cone areas.
func AoEConeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "aoe_cone",
		Description: "Finds tiles and participants inside a cone projected from an origin",
	}
}

// AoELineTool defines the MCP tool schema for line areas.
func AoELineTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "aoe_line",
		Description: "Finds tiles and participants along a line between two positions",
	}
}

// LineOfSightTool defines the MCP tool schema for sight checks.
func LineOfSightTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "line_of_sight",
		Description: "Reports whether terrain obstacles interrupt the line between two positions",
	}
}
