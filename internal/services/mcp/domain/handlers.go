package domain

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"

	"github.com/arquebus/battlegrid/internal/platform/errors"
	"github.com/arquebus/battlegrid/internal/platform/errors/i18n"
	"github.com/arquebus/battlegrid/internal/spatial"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Engine is the encounter-facing surface the MCP tools are bound to. The
// service layer implements it over an encounter registry; tests implement
// it with fakes.
type Engine interface {
	CreateEncounter(ctx context.Context, name string, bounds spatial.GridBounds) (EncounterInfo, error)
	CreateEncounterFromScenario(ctx context.Context, scenarioFile string) (EncounterInfo, error)
	SaveEncounter(ctx context.Context, encounterID string) error
	LoadEncounter(ctx context.Context, encounterID string) (EncounterInfo, error)
	ListEncounters(ctx context.Context) ([]EncounterListEntry, error)
	AddParticipant(ctx context.Context, encounterID string, participant spatial.Participant) error
	PlaceParticipant(ctx context.Context, encounterID, participantID string, position spatial.Position) error
	StartTurn(ctx context.Context, encounterID, participantID string) (float64, error)
	Dash(ctx context.Context, encounterID, participantID string) (float64, error)
	RemainingMovement(ctx context.Context, encounterID, participantID string) (float64, error)
	ValidateMove(ctx context.Context, encounterID, participantID string, destination spatial.Position) (spatial.MovementValidation, error)
	Move(ctx context.Context, encounterID, participantID string, destination spatial.Position) (spatial.MovementValidation, float64, error)
	CircleTargets(ctx context.Context, encounterID string, center spatial.Position, radiusFeet float64, excludeIDs []string) (spatial.AoEResult, error)
	ConeTargets(ctx context.Context, encounterID string, origin, direction spatial.Position, lengthFeet, angleDegrees float64, excludeIDs []string) (spatial.AoEResult, error)
	LineTargets(ctx context.Context, encounterID string, start, end spatial.Position, excludeIDs []string) (spatial.AoEResult, error)
	LineOfSight(ctx context.Context, encounterID string, from, to spatial.Position) (bool, error)
}

// EncounterInfo describes an active encounter in Engine responses.
type EncounterInfo struct {
	ID               string
	Name             string
	ParticipantCount int
}

// EncounterCreateHandler executes encounter creation.
func EncounterCreateHandler(engine Engine) mcp.ToolHandlerFor[EncounterCreateInput, EncounterCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EncounterCreateInput) (*mcp.CallToolResult, EncounterCreateResult, error) {
		hasScenario := strings.TrimSpace(input.Scenario) != ""
		if hasScenario == (input.Bounds != nil) {
			return nil, EncounterCreateResult{}, fmt.Errorf("exactly one of bounds or scenario is required")
		}

		var info EncounterInfo
		var err error
		if hasScenario {
			info, err = engine.CreateEncounterFromScenario(ctx, strings.TrimSpace(input.Scenario))
		} else {
			info, err = engine.CreateEncounter(ctx, input.Name, spatial.GridBounds{
				MinX: input.Bounds.MinX, MaxX: input.Bounds.MaxX,
				MinY: input.Bounds.MinY, MaxY: input.Bounds.MaxY,
				MinZ: input.Bounds.MinZ, MaxZ: input.Bounds.MaxZ,
			})
		}
		if err != nil {
			return nil, EncounterCreateResult{}, toolError(err)
		}
		return nil, EncounterCreateResult{
			EncounterID:      info.ID,
			Name:             info.Name,
			ParticipantCount: info.ParticipantCount,
		}, nil
	}
}

// EncounterSaveHandler executes encounter persistence.
func EncounterSaveHandler(engine Engine) mcp.ToolHandlerFor[EncounterSaveInput, EncounterSaveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EncounterSaveInput) (*mcp.CallToolResult, EncounterSaveResult, error) {
		if err := requireField("encounter_id", input.EncounterID); err != nil {
			return nil, EncounterSaveResult{}, toolError(err)
		}
		if err := engine.SaveEncounter(ctx, input.EncounterID); err != nil {
			return nil, EncounterSaveResult{}, toolError(err)
		}
		return nil, EncounterSaveResult{EncounterID: input.EncounterID, Saved: true}, nil
	}
}

// EncounterLoadHandler executes encounter restoration.
func EncounterLoadHandler(engine Engine) mcp.ToolHandlerFor[EncounterLoadInput, EncounterLoadResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EncounterLoadInput) (*mcp.CallToolResult, EncounterLoadResult, error) {
		if err := requireField("encounter_id", input.EncounterID); err != nil {
			return nil, EncounterLoadResult{}, toolError(err)
		}
		info, err := engine.LoadEncounter(ctx, input.EncounterID)
		if err != nil {
			return nil, EncounterLoadResult{}, toolError(err)
		}
		return nil, EncounterLoadResult{
			EncounterID:      info.ID,
			Name:             info.Name,
			ParticipantCount: info.ParticipantCount,
		}, nil
	}
}

// EncounterListHandler executes the saved-encounter listing.
func EncounterListHandler(engine Engine) mcp.ToolHandlerFor[EncounterListInput, EncounterListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EncounterListInput) (*mcp.CallToolResult, EncounterListResult, error) {
		entries, err := engine.ListEncounters(ctx)
		if err != nil {
			return nil, EncounterListResult{}, toolError(err)
		}
		return nil, EncounterListResult{Encounters: entries}, nil
	}
}

// ParticipantAddHandler executes participant creation.
func ParticipantAddHandler(engine Engine) mcp.ToolHandlerFor[ParticipantAddInput, ParticipantAddResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ParticipantAddInput) (*mcp.CallToolResult, ParticipantAddResult, error) {
		if err := requireField("encounter_id", input.EncounterID); err != nil {
			return nil, ParticipantAddResult{}, toolError(err)
		}
		if err := requireField("participant_id", input.ParticipantID); err != nil {
			return nil, ParticipantAddResult{}, toolError(err)
		}
		if err := requireFinite("speed_feet", input.SpeedFeet); err != nil {
			return nil, ParticipantAddResult{}, toolError(err)
		}

		size, err := spatial.ParseSize(input.Size)
		if err != nil {
			return nil, ParticipantAddResult{}, toolError(err)
		}
		speed := input.SpeedFeet
		if speed < 0 {
			return nil, ParticipantAddResult{}, fmt.Errorf("speed_feet must not be negative")
		}
		if speed == 0 {
			speed = spatial.DefaultSpeedFeet
		}
		participant := spatial.Participant{
			ID:            strings.TrimSpace(input.ParticipantID),
			Size:          size,
			HP:            input.HP,
			MovementSpeed: speed,
			IsEnemy:       input.IsEnemy,
		}
		if input.Position != nil {
			pos := toPosition(*input.Position)
			participant.Position = &pos
		}
		if err := engine.AddParticipant(ctx, input.EncounterID, participant); err != nil {
			return nil, ParticipantAddResult{}, toolError(err)
		}
		return nil, ParticipantAddResult{
			EncounterID:   input.EncounterID,
			ParticipantID: participant.ID,
			Size:          string(size),
			Placed:        participant.Position != nil,
		}, nil
	}
}

// ParticipantPlaceHandler executes token placement.
func ParticipantPlaceHandler(engine Engine) mcp.ToolHandlerFor[ParticipantPlaceInput, ParticipantPlaceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ParticipantPlaceInput) (*mcp.CallToolResult, ParticipantPlaceResult, error) {
		if err := requireField("encounter_id", input.EncounterID); err != nil {
			return nil, ParticipantPlaceResult{}, toolError(err)
		}
		if err := requireField("participant_id", input.ParticipantID); err != nil {
			return nil, ParticipantPlaceResult{}, toolError(err)
		}
		position := toPosition(input.Position)
		if err := engine.PlaceParticipant(ctx, input.EncounterID, input.ParticipantID, position); err != nil {
			return nil, ParticipantPlaceResult{}, toolError(err)
		}
		return nil, ParticipantPlaceResult{
			EncounterID:   input.EncounterID,
			ParticipantID: input.ParticipantID,
			Position:      fromPosition(position),
		}, nil
	}
}

// TurnStartHandler executes the turn-start movement reset.
func TurnStartHandler(engine Engine) mcp.ToolHandlerFor[TurnStartInput, TurnStartResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TurnStartInput) (*mcp.CallToolResult, TurnStartResult, error) {
		if err := requireParticipantRef(input.EncounterID, input.ParticipantID); err != nil {
			return nil, TurnStartResult{}, toolError(err)
		}
		remaining, err := engine.StartTurn(ctx, input.EncounterID, input.ParticipantID)
		if err != nil {
			return nil, TurnStartResult{}, toolError(err)
		}
		return nil, TurnStartResult{ParticipantID: input.ParticipantID, MovementFeet: remaining}, nil
	}
}

// DashHandler executes the dash action.
func DashHandler(engine Engine) mcp.ToolHandlerFor[DashInput, DashResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DashInput) (*mcp.CallToolResult, DashResult, error) {
		if err := requireParticipantRef(input.EncounterID, input.ParticipantID); err != nil {
			return nil, DashResult{}, toolError(err)
		}
		remaining, err := engine.Dash(ctx, input.EncounterID, input.ParticipantID)
		if err != nil {
			return nil, DashResult{}, toolError(err)
		}
		return nil, DashResult{ParticipantID: input.ParticipantID, MovementFeet: remaining}, nil
	}
}

// MovementRemainingHandler executes the movement budget query.
func MovementRemainingHandler(engine Engine) mcp.ToolHandlerFor[MovementRemainingInput, MovementRemainingResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MovementRemainingInput) (*mcp.CallToolResult, MovementRemainingResult, error) {
		if err := requireParticipantRef(input.EncounterID, input.ParticipantID); err != nil {
			return nil, MovementRemainingResult{}, toolError(err)
		}
		remaining, err := engine.RemainingMovement(ctx, input.EncounterID, input.ParticipantID)
		if err != nil {
			return nil, MovementRemainingResult{}, toolError(err)
		}
		return nil, MovementRemainingResult{ParticipantID: input.ParticipantID, MovementFeet: remaining}, nil
	}
}

// MoveValidateHandler executes a move check without committing it.
func MoveValidateHandler(engine Engine) mcp.ToolHandlerFor[MoveValidateInput, MoveValidateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MoveValidateInput) (*mcp.CallToolResult, MoveValidateResult, error) {
		if err := requireParticipantRef(input.EncounterID, input.ParticipantID); err != nil {
			return nil, MoveValidateResult{}, toolError(err)
		}
		validation, err := engine.ValidateMove(ctx, input.EncounterID, input.ParticipantID, toPosition(input.Destination))
		if err != nil {
			return nil, MoveValidateResult{}, toolError(err)
		}
		return nil, fromValidation(validation), nil
	}
}

// MoveHandler executes a validated move.
func MoveHandler(engine Engine) mcp.ToolHandlerFor[MoveInput, MoveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MoveInput) (*mcp.CallToolResult, MoveResult, error) {
		if err := requireParticipantRef(input.EncounterID, input.ParticipantID); err != nil {
			return nil, MoveResult{}, toolError(err)
		}
		validation, remaining, err := engine.Move(ctx, input.EncounterID, input.ParticipantID, toPosition(input.Destination))
		if err != nil {
			return nil, MoveResult{}, toolError(err)
		}
		return nil, MoveResult{
			Validation:    fromValidation(validation),
			MovementFeet:  remaining,
			ParticipantID: input.ParticipantID,
		}, nil
	}
}

// AoECircleHandler executes a circular area query.
func AoECircleHandler(engine Engine) mcp.ToolHandlerFor[AoECircleInput, AoEResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AoECircleInput) (*mcp.CallToolResult, AoEResult, error) {
		if err := requireField("encounter_id", input.EncounterID); err != nil {
			return nil, AoEResult{}, toolError(err)
		}
		if err := requireFinite("radius_feet", input.RadiusFeet); err != nil {
			return nil, AoEResult{}, toolError(err)
		}
		result, err := engine.CircleTargets(ctx, input.EncounterID, toPosition(input.Center), input.RadiusFeet, input.ExcludeIDs)
		if err != nil {
			return nil, AoEResult{}, toolError(err)
		}
		return nil, fromAoE(result), nil
	}
}

// AoEConeHandler executes a cone area query.
func AoEConeHandler(engine Engine) mcp.ToolHandlerFor[AoEConeInput, AoEResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AoEConeInput) (*mcp.CallToolResult, AoEResult, error) {
		if err := requireField("encounter_id", input.EncounterID); err != nil {
			return nil, AoEResult{}, toolError(err)
		}
		if err := requireFinite("length_feet", input.LengthFeet); err != nil {
			return nil, AoEResult{}, toolError(err)
		}
		if err := requireFinite("angle_degrees", input.AngleDegrees); err != nil {
			return nil, AoEResult{}, toolError(err)
		}
		angle := input.AngleDegrees
		if angle == 0 {
			angle = 90
		}
		result, err := engine.ConeTargets(ctx, input.EncounterID,
			toPosition(input.Origin), toPosition(input.Direction),
			input.LengthFeet, angle, input.ExcludeIDs)
		if err != nil {
			return nil, AoEResult{}, toolError(err)
		}
		return nil, fromAoE(result), nil
	}
}

// AoELineHandler executes a line area query.
func AoELineHandler(engine Engine) mcp.ToolHandlerFor[AoELineInput, AoEResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AoELineInput) (*mcp.CallToolResult, AoEResult, error) {
		if err := requireField("encounter_id", input.EncounterID); err != nil {
			return nil, AoEResult{}, toolError(err)
		}
		result, err := engine.LineTargets(ctx, input.EncounterID,
			toPosition(input.Start), toPosition(input.End), input.ExcludeIDs)
		if err != nil {
			return nil, AoEResult{}, toolError(err)
		}
		return nil, fromAoE(result), nil
	}
}

// LineOfSightHandler executes a sight check.
func LineOfSightHandler(engine Engine) mcp.ToolHandlerFor[LineOfSightInput, LineOfSightResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LineOfSightInput) (*mcp.CallToolResult, LineOfSightResult, error) {
		if err := requireField("encounter_id", input.EncounterID); err != nil {
			return nil, LineOfSightResult{}, toolError(err)
		}
		clear, err := engine.LineOfSight(ctx, input.EncounterID, toPosition(input.From), toPosition(input.To))
		if err != nil {
			return nil, LineOfSightResult{}, toolError(err)
		}
		return nil, LineOfSightResult{HasLineOfSight: clear}, nil
	}
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func requireParticipantRef(encounterID, participantID string) error {
	if err := requireField("encounter_id", encounterID); err != nil {
		return err
	}
	return requireField("participant_id", participantID)
}

// requireFinite rejects NaN and infinite measurements at the tool
// boundary, before they can poison geometry math.
func requireFinite(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.WithMetadata(errors.CodeCoordinateNotFinite,
			name+" must be a finite number",
			map[string]string{"field": name})
	}
	return nil
}

// toolError rewrites engine errors into the catalog message for that code,
// so the model reads the same text a player-facing surface would show. Plain
// errors pass through unchanged.
func toolError(err error) error {
	var domainErr *errors.Error
	if !stderrors.As(err, &domainErr) {
		return err
	}
	metadata := domainErr.Metadata
	if _, ok := metadata["reason"]; !ok {
		// Templates with a {{.reason}} slot embed the internal message.
		merged := map[string]string{"reason": domainErr.Message}
		for k, v := range metadata {
			merged[k] = v
		}
		metadata = merged
	}
	message := i18n.GetCatalog("").Format(string(domainErr.Code), metadata)
	return &errors.Error{
		Code:     domainErr.Code,
		Message:  string(domainErr.Code) + ": " + message,
		Metadata: domainErr.Metadata,
		Cause:    domainErr.Cause,
	}
}

func toPosition(p PositionInput) spatial.Position {
	return spatial.Position{X: p.X, Y: p.Y, Z: p.Z}
}

func fromPosition(p spatial.Position) PositionResult {
	return PositionResult{X: p.X, Y: p.Y, Z: p.Z}
}

func fromValidation(v spatial.MovementValidation) MoveValidateResult {
	result := MoveValidateResult{
		Valid:                      v.Valid,
		ErrorCode:                  v.ErrorCode,
		Error:                      v.Error,
		CostFeet:                   v.CostFeet,
		TriggersOpportunityAttacks: v.TriggersOpportunityAttacks,
	}
	for _, step := range v.Path {
		result.Path = append(result.Path, fromPosition(step))
	}
	return result
}

func fromAoE(r spatial.AoEResult) AoEResult {
	return AoEResult{
		AffectedTiles:        r.AffectedTiles,
		AffectedParticipants: r.AffectedParticipants,
	}
}
