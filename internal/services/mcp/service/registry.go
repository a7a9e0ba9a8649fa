package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/arquebus/battlegrid/internal/platform/errors"
	"github.com/arquebus/battlegrid/internal/scenario"
	"github.com/arquebus/battlegrid/internal/services/mcp/domain"
	"github.com/arquebus/battlegrid/internal/spatial"
	"github.com/arquebus/battlegrid/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Registry implements domain.Engine over in-memory encounter managers. A
// single mutex serializes all grid operations: managers are not safe for
// concurrent use, and tool call volume is conversational, not hot-path.
type Registry struct {
	mu          sync.Mutex
	store       storage.EncounterStore
	scenarioDir string
	encounters  map[string]*liveEncounter
	tracer      trace.Tracer
}

type liveEncounter struct {
	name      string
	manager   *spatial.Manager
	createdAt time.Time
}

// NewRegistry creates an encounter registry. The store may be nil, which
// disables encounter_save, encounter_load, and encounter_list.
func NewRegistry(store storage.EncounterStore, scenarioDir string) *Registry {
	return &Registry{
		store:       store,
		scenarioDir: scenarioDir,
		encounters:  make(map[string]*liveEncounter),
		tracer:      otel.Tracer("battlegrid/mcp"),
	}
}

func newEncounterID() (string, error) {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("generate encounter id: %w", err)
	}
	return "enc-" + hex.EncodeToString(raw[:]), nil
}

func (r *Registry) encounter(id string) (*liveEncounter, error) {
	enc, ok := r.encounters[strings.TrimSpace(id)]
	if !ok {
		return nil, errors.WithMetadata(errors.CodeEncounterNotFound,
			"encounter "+id+" is not active; create or load it first",
			map[string]string{"encounter_id": id})
	}
	return enc, nil
}

// CreateEncounter starts an empty encounter over the given bounds.
func (r *Registry) CreateEncounter(ctx context.Context, name string, bounds spatial.GridBounds) (domain.EncounterInfo, error) {
	_, span := r.tracer.Start(ctx, "encounter.create")
	defer span.End()

	if err := validateBounds(bounds); err != nil {
		return domain.EncounterInfo{}, err
	}
	id, err := newEncounterID()
	if err != nil {
		return domain.EncounterInfo{}, err
	}
	span.SetAttributes(attribute.String("encounter.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.encounters[id] = &liveEncounter{
		name:      name,
		manager:   spatial.NewManager(spatial.NewCombatState(bounds)),
		createdAt: time.Now().UTC(),
	}
	return domain.EncounterInfo{ID: id, Name: name}, nil
}

// CreateEncounterFromScenario starts an encounter seeded from a Lua
// scenario file. The file name is resolved inside the configured scenario
// directory; path traversal is rejected.
func (r *Registry) CreateEncounterFromScenario(ctx context.Context, scenarioFile string) (domain.EncounterInfo, error) {
	_, span := r.tracer.Start(ctx, "encounter.create_from_scenario",
		trace.WithAttributes(attribute.String("scenario.file", scenarioFile)))
	defer span.End()

	if strings.TrimSpace(r.scenarioDir) == "" {
		return domain.EncounterInfo{}, fmt.Errorf("scenario directory is not configured")
	}
	if filepath.Base(scenarioFile) != scenarioFile || scenarioFile == "." || scenarioFile == ".." {
		return domain.EncounterInfo{}, errors.WithMetadata(errors.CodeScenarioInvalid,
			"scenario must be a plain file name inside the scenario directory",
			map[string]string{"scenario": scenarioFile})
	}

	loaded, err := scenario.Load(filepath.Join(r.scenarioDir, scenarioFile))
	if err != nil {
		return domain.EncounterInfo{}, err
	}
	id, err := newEncounterID()
	if err != nil {
		return domain.EncounterInfo{}, err
	}
	span.SetAttributes(attribute.String("encounter.id", id))

	name := loaded.Name
	if name == "" {
		name = strings.TrimSuffix(scenarioFile, filepath.Ext(scenarioFile))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.encounters[id] = &liveEncounter{
		name:      name,
		manager:   spatial.NewManager(loaded.State),
		createdAt: time.Now().UTC(),
	}
	return domain.EncounterInfo{
		ID:               id,
		Name:             name,
		ParticipantCount: len(loaded.State.Participants),
	}, nil
}

// SaveEncounter writes an active encounter's state to storage.
func (r *Registry) SaveEncounter(ctx context.Context, encounterID string) error {
	ctx, span := r.tracer.Start(ctx, "encounter.save",
		trace.WithAttributes(attribute.String("encounter.id", encounterID)))
	defer span.End()

	if r.store == nil {
		return fmt.Errorf("storage is not configured")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return err
	}
	return r.store.SaveEncounter(ctx, storage.EncounterRecord{
		ID:        strings.TrimSpace(encounterID),
		Name:      enc.name,
		State:     enc.manager.State(),
		CreatedAt: enc.createdAt,
		UpdatedAt: time.Now().UTC(),
	})
}

// LoadEncounter restores a saved encounter into the registry. Loading an
// already-active encounter replaces its in-memory state with the saved
// one.
func (r *Registry) LoadEncounter(ctx context.Context, encounterID string) (domain.EncounterInfo, error) {
	ctx, span := r.tracer.Start(ctx, "encounter.load",
		trace.WithAttributes(attribute.String("encounter.id", encounterID)))
	defer span.End()

	if r.store == nil {
		return domain.EncounterInfo{}, fmt.Errorf("storage is not configured")
	}
	record, err := r.store.GetEncounter(ctx, strings.TrimSpace(encounterID))
	if stderrors.Is(err, storage.ErrNotFound) {
		return domain.EncounterInfo{}, errors.WithMetadata(errors.CodeEncounterNotFound,
			"encounter "+encounterID+" is not in storage",
			map[string]string{"encounter_id": encounterID})
	}
	if err != nil {
		return domain.EncounterInfo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.encounters[record.ID] = &liveEncounter{
		name:      record.Name,
		manager:   spatial.NewManager(record.State),
		createdAt: record.CreatedAt,
	}
	return domain.EncounterInfo{
		ID:               record.ID,
		Name:             record.Name,
		ParticipantCount: len(record.State.Participants),
	}, nil
}

// ListEncounters lists saved encounters.
func (r *Registry) ListEncounters(ctx context.Context) ([]domain.EncounterListEntry, error) {
	if r.store == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	summaries, err := r.store.ListEncounters(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.EncounterListEntry, 0, len(summaries))
	for _, summary := range summaries {
		entries = append(entries, domain.EncounterListEntry{
			EncounterID:      summary.ID,
			Name:             summary.Name,
			ParticipantCount: summary.ParticipantCount,
			UpdatedAt:        summary.UpdatedAt.Format(time.RFC3339),
		})
	}
	return entries, nil
}

// AddParticipant adds a creature to an active encounter. When the
// participant arrives with a position the placement is validated like
// participant_place; on failure the participant is not added.
func (r *Registry) AddParticipant(ctx context.Context, encounterID string, participant spatial.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return err
	}
	state := enc.manager.State()
	if state.Participant(participant.ID) != nil {
		return fmt.Errorf("participant %q already exists in encounter %s", participant.ID, encounterID)
	}

	position := participant.Position
	participant.Position = nil
	added := participant
	state.Participants = append(state.Participants, &added)
	if position == nil {
		return nil
	}
	if err := enc.manager.SetPosition(added.ID, *position); err != nil {
		state.Participants = state.Participants[:len(state.Participants)-1]
		return err
	}
	return nil
}

// PlaceParticipant places a token, validating bounds and collision.
func (r *Registry) PlaceParticipant(ctx context.Context, encounterID, participantID string, position spatial.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return err
	}
	return enc.manager.SetPosition(participantID, position)
}

// StartTurn resets the participant's movement budget and reports it.
func (r *Registry) StartTurn(ctx context.Context, encounterID, participantID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return 0, err
	}
	if err := enc.manager.StartTurn(participantID); err != nil {
		return 0, err
	}
	return enc.manager.RemainingMovement(participantID)
}

// Dash doubles the participant's movement for the turn.
func (r *Registry) Dash(ctx context.Context, encounterID, participantID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return 0, err
	}
	return enc.manager.Dash(participantID)
}

// RemainingMovement reports the participant's movement budget in feet.
func (r *Registry) RemainingMovement(ctx context.Context, encounterID, participantID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return 0, err
	}
	return enc.manager.RemainingMovement(participantID)
}

// ValidateMove checks a move without committing it.
func (r *Registry) ValidateMove(ctx context.Context, encounterID, participantID string, destination spatial.Position) (spatial.MovementValidation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return spatial.MovementValidation{}, err
	}
	return enc.manager.ValidateMove(participantID, destination), nil
}

// Move validates and, when legal, commits a move in one step. Validation
// and commit happen under the same lock so no other tool call can change
// the grid in between.
func (r *Registry) Move(ctx context.Context, encounterID, participantID string, destination spatial.Position) (spatial.MovementValidation, float64, error) {
	_, span := r.tracer.Start(ctx, "encounter.move", trace.WithAttributes(
		attribute.String("encounter.id", encounterID),
		attribute.String("participant.id", participantID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return spatial.MovementValidation{}, 0, err
	}

	validation := enc.manager.ValidateMove(participantID, destination)
	if !validation.Valid {
		remaining, err := enc.manager.RemainingMovement(participantID)
		if err != nil {
			remaining = 0
		}
		return validation, remaining, nil
	}
	if err := enc.manager.ExecuteMove(participantID, destination, validation.CostFeet); err != nil {
		return spatial.MovementValidation{}, 0, err
	}
	remaining, err := enc.manager.RemainingMovement(participantID)
	if err != nil {
		return spatial.MovementValidation{}, 0, err
	}
	span.SetAttributes(attribute.Float64("move.cost_feet", validation.CostFeet))
	return validation, remaining, nil
}

// CircleTargets selects tiles and participants inside a circle.
func (r *Registry) CircleTargets(ctx context.Context, encounterID string, center spatial.Position, radiusFeet float64, excludeIDs []string) (spatial.AoEResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return spatial.AoEResult{}, err
	}
	return enc.manager.CircleTargets(center, radiusFeet, excludeIDs), nil
}

// ConeTargets selects tiles and participants inside a cone.
func (r *Registry) ConeTargets(ctx context.Context, encounterID string, origin, direction spatial.Position, lengthFeet, angleDegrees float64, excludeIDs []string) (spatial.AoEResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return spatial.AoEResult{}, err
	}
	return enc.manager.ConeTargets(origin, direction, lengthFeet, angleDegrees, excludeIDs)
}

// LineTargets selects tiles and participants along a line.
func (r *Registry) LineTargets(ctx context.Context, encounterID string, start, end spatial.Position, excludeIDs []string) (spatial.AoEResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return spatial.AoEResult{}, err
	}
	return enc.manager.LineTargets(start, end, excludeIDs), nil
}

// LineOfSight reports whether terrain blocks the line between positions.
func (r *Registry) LineOfSight(ctx context.Context, encounterID string, from, to spatial.Position) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc, err := r.encounter(encounterID)
	if err != nil {
		return false, err
	}
	return enc.manager.HasLineOfSight(from, to), nil
}

func validateBounds(bounds spatial.GridBounds) error {
	if bounds.MaxX < bounds.MinX || bounds.MaxY < bounds.MinY {
		return errors.WithMetadata(errors.CodeInvalidBounds,
			"grid bounds are inverted: max must not be below min",
			map[string]string{
				"min_x": fmt.Sprint(bounds.MinX), "max_x": fmt.Sprint(bounds.MaxX),
				"min_y": fmt.Sprint(bounds.MinY), "max_y": fmt.Sprint(bounds.MaxY),
			})
	}
	if (bounds.MinZ == nil) != (bounds.MaxZ == nil) {
		return errors.New(errors.CodeInvalidBounds,
			"grid bounds must set both min_z and max_z or neither")
	}
	if bounds.MinZ != nil && *bounds.MaxZ < *bounds.MinZ {
		return errors.New(errors.CodeInvalidBounds,
			"grid bounds are inverted: max_z must not be below min_z")
	}
	return nil
}
